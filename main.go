package main

import (
	"net"
	"net/rpc"
	"os"
	"strconv"

	"github.com/wfunc/rpsls/commentary"
	"github.com/wfunc/rpsls/config"
	"github.com/wfunc/rpsls/discovery"
	"github.com/wfunc/rpsls/invite"
	"github.com/wfunc/rpsls/logger"
	"github.com/wfunc/rpsls/monitor"
	"github.com/wfunc/rpsls/persistence"
	"github.com/wfunc/rpsls/remote"
	"github.com/wfunc/rpsls/room"
	rpsls_rpc "github.com/wfunc/rpsls/rpc"
	"github.com/wfunc/rpsls/server"
	"github.com/wfunc/rpsls/services"
	"github.com/wfunc/rpsls/timer"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.Init(cfg.Server.Debug)

	// Leaderboard store
	store, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to open leaderboard store: %v", err)
	}
	defer store.Close()
	logger.Log.Infof("Leaderboard store ready (%s)", cfg.Database.Driver)

	leaderboard := services.NewLeaderboardService(store)

	// Commentary collaborator
	var narrator room.Narrator
	if cfg.Game.CommentaryURL != "" {
		narrator = commentary.NewHTTPGenerator(cfg.Game.CommentaryURL)
	} else {
		narrator = commentary.NewRulesGenerator()
	}

	// Room registry with garbage collection
	rooms := room.NewManager(narrator, leaderboard, cfg.Game.MoveDeadline, cfg.Game.FinishedGrace)
	sched := timer.NewScheduler()
	defer sched.Close()
	rooms.StartGC(sched)

	username := cfg.Server.Username
	if username == "" {
		username, _ = os.Hostname()
	}

	// LAN discovery
	disc := discovery.NewService(username, httpPort(cfg.Server.HTTPAddress),
		cfg.Discovery.Port, cfg.Discovery.Interval, cfg.Discovery.TTL)
	if err := disc.Start(); err != nil {
		logger.Log.Warnf("Discovery unavailable: %v", err)
	}
	defer disc.Close()

	facade := remote.NewFacade(selfAddress(cfg.Server.HTTPAddress), rooms)

	// Metrics
	mon := monitor.NewMonitor("rpsls")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Leaderboard RPC for LAN tooling
	rpcServer, err := rpsls_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	rpc.Register(rpsls_rpc.NewLeaderboardRPC(leaderboard))
	go rpcServer.Start()
	defer rpcServer.Stop()

	// HTTP coordinator surface
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, rooms, invite.NewQueue(),
		disc, leaderboard, facade, mon)

	logger.Log.Infof("Starting coordinator as %s on %s", username, cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openStore(cfg *config.Config) (persistence.Store, error) {
	switch cfg.Database.Driver {
	case "gorm":
		pg := cfg.Database.Postgres
		return persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case "postgres":
		pg := cfg.Database.Postgres
		return persistence.NewPostgresStore(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return persistence.NewSQLiteStore(cfg.Database.SQLitePath)
	}
}

// httpPort extracts the numeric port from a listen address like ":5001".
func httpPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, _ := strconv.Atoi(portStr)
	return port
}

// selfAddress is the LAN-reachable address peers use to reach this
// process. The listen address usually has no host part, so the outbound
// interface's IP fills it in.
func selfAddress(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}
	if host == "" || host == "0.0.0.0" {
		if conn, err := net.Dial("udp4", "255.255.255.255:1"); err == nil {
			host = conn.LocalAddr().(*net.UDPAddr).IP.String()
			conn.Close()
		} else {
			host = "127.0.0.1"
		}
	}
	return net.JoinHostPort(host, port)
}
