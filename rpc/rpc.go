package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/rpsls/logger"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the
// caller before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// LeaderboardRPC exposes leaderboard queries over net/rpc for tooling on
// the LAN. Methods follow the net/rpc signature rules: exported method,
// exported args, reply pointer, error return.
type LeaderboardRPC struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardRPC(svc *services.LeaderboardService) *LeaderboardRPC {
	return &LeaderboardRPC{leaderboard: svc}
}

type LeaderboardArgs struct {
	Limit int
}

type LeaderboardReply struct {
	Entries []models.LeaderboardEntry
}

func (l *LeaderboardRPC) GetLeaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	entries, err := l.leaderboard.Leaderboard(args.Limit)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}

type PlayerRecordArgs struct {
	Username string
}

type PlayerRecordReply struct {
	Entry models.LeaderboardEntry
}

func (l *LeaderboardRPC) GetPlayerRecord(args *PlayerRecordArgs, reply *PlayerRecordReply) error {
	entry, err := l.leaderboard.PlayerRecord(args.Username)
	if err != nil {
		return err
	}
	reply.Entry = entry
	return nil
}
