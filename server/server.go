package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/discovery"
	"github.com/wfunc/rpsls/invite"
	"github.com/wfunc/rpsls/logger"
	"github.com/wfunc/rpsls/monitor"
	"github.com/wfunc/rpsls/remote"
	"github.com/wfunc/rpsls/room"
	"github.com/wfunc/rpsls/services"
)

// GameServer exposes the coordinator's operation surface over HTTP JSON.
// Guests poll it; peers deliver invites to it; the local UI drives it.
type GameServer struct {
	addr        string
	router      chi.Router
	roomManager *room.Manager
	invites     *invite.Queue
	discovery   *discovery.Service
	leaderboard *services.LeaderboardService
	facade      *remote.Facade
	monitor     *monitor.Monitor
}

func NewGameServer(addr string, rooms *room.Manager, invites *invite.Queue,
	disc *discovery.Service, leaderboard *services.LeaderboardService,
	facade *remote.Facade, mon *monitor.Monitor) *GameServer {

	s := &GameServer{
		addr:        addr,
		roomManager: rooms,
		invites:     invites,
		discovery:   disc,
		leaderboard: leaderboard,
		facade:      facade,
		monitor:     mon,
	}

	r := chi.NewRouter()
	r.Use(s.latencyMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms", s.handleCreateRoom)
		r.Route("/rooms/{roomID}", func(r chi.Router) {
			r.Post("/join", s.handleJoinRoom)
			r.Post("/ready", s.handleToggleReady)
			r.Post("/start", s.handleStartGame)
			r.Post("/move", s.handleSubmitMove)
			r.Post("/emote", s.handleEmote)
			r.Post("/leave", s.handleLeave)
			r.Get("/state", s.handleGetState)
			r.Get("/events", s.handleEvents)
		})

		r.Post("/challenge", s.handleSendChallenge)
		r.Post("/invites", s.handleReceiveInvite)
		r.Get("/invites", s.handleListInvites)
		r.Post("/invites/dismiss", s.handleDismissInvite)

		r.Post("/discovery/start", s.handleStartDiscovery)
		r.Get("/discovery/peers", s.handleListPeers)

		r.Get("/leaderboard", s.handleLeaderboard)
	})
	s.router = r

	return s
}

// Router exposes the handler tree, mainly for tests.
func (s *GameServer) Router() http.Handler {
	return s.router
}

func (s *GameServer) Start() error {
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.router)
}

func (s *GameServer) latencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if s.monitor != nil {
			s.monitor.ObserveRequestLatency(time.Since(start))
		}
	})
}

// --- JSON helpers ---

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuth:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindNetwork:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("malformed request body")
	}
	return nil
}
