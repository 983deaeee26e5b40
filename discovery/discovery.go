// Package discovery tracks peer presence on the local network. Presence is
// announced over UDP broadcast on a fixed interval; absence is detected by
// silence, not by leave messages. Nothing here persists across restarts.
package discovery

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/wfunc/rpsls/logger"
)

// announcement is the datagram peers broadcast on the discovery port.
type announcement struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	HTTPPort int    `json:"http_port"`
}

const announcementType = "discovery"

type Peer struct {
	Username string    `json:"username"`
	Address  string    `json:"address"`
	LastSeen time.Time `json:"-"`
}

// Service owns the peer registry plus the announce and listen loops.
// Registry methods are safe without the loops running, which is how the
// tests drive them.
type Service struct {
	username string
	httpPort int
	port     int
	interval time.Duration
	ttl      time.Duration

	mu    sync.RWMutex
	peers map[string]Peer // keyed by peer address

	wake      chan struct{}
	closeChan chan struct{}
	closeOnce sync.Once
}

func NewService(username string, httpPort, broadcastPort int, interval, ttl time.Duration) *Service {
	return &Service{
		username:  username,
		httpPort:  httpPort,
		port:      broadcastPort,
		interval:  interval,
		ttl:       ttl,
		peers:     make(map[string]Peer),
		wake:      make(chan struct{}, 1),
		closeChan: make(chan struct{}),
	}
}

// Start launches the announce and listen loops. The loops run until Close
// and are never blocked by room locks.
func (s *Service) Start() error {
	listenConn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: s.port})
	if err != nil {
		return fmt.Errorf("discovery listen on port %d: %w", s.port, err)
	}

	sendConn, err := net.DialUDP("udp4", nil, &net.UDPAddr{
		IP:   net.IPv4bcast,
		Port: s.port,
	})
	if err != nil {
		listenConn.Close()
		return fmt.Errorf("discovery broadcast socket: %w", err)
	}

	go s.listenLoop(listenConn)
	go s.announceLoop(sendConn)

	logger.Log.Infof("Discovery started on udp port %d (interval %v, ttl %v)", s.port, s.interval, s.ttl)
	return nil
}

// ScanNow triggers an immediate announce instead of waiting for the next
// interval tick.
func (s *Service) ScanNow() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
}

func (s *Service) announceLoop(conn *net.UDPConn) {
	defer conn.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.announce(conn)
		case <-s.wake:
			s.announce(conn)
		case <-s.closeChan:
			return
		}
	}
}

func (s *Service) announce(conn *net.UDPConn) {
	msg := announcement{Type: announcementType, Username: s.username, HTTPPort: s.httpPort}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if _, err := conn.Write(data); err != nil {
		logger.Log.Debugf("Discovery broadcast error: %v", err)
	}
}

func (s *Service) listenLoop(conn *net.UDPConn) {
	defer conn.Close()

	buf := make([]byte, 1024)
	for {
		select {
		case <-s.closeChan:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(s.interval))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}

		var msg announcement
		if err := json.Unmarshal(buf[:n], &msg); err != nil || msg.Type != announcementType {
			continue
		}
		if msg.Username == s.username {
			continue // our own broadcast echoed back
		}

		peerAddr := net.JoinHostPort(addr.IP.String(), fmt.Sprintf("%d", msg.HTTPPort))
		s.Observe(msg.Username, peerAddr, time.Now())
	}
}

// Observe upserts a peer with a refreshed last-seen timestamp.
func (s *Service) Observe(username, address string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[address] = Peer{Username: username, Address: address, LastSeen: now}
}

// Peers returns every peer seen within the TTL window and evicts the rest.
func (s *Service) Peers(now time.Time) []Peer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []Peer
	for addr, peer := range s.peers {
		if now.Sub(peer.LastSeen) < s.ttl {
			active = append(active, peer)
		} else {
			delete(s.peers, addr)
		}
	}
	return active
}
