package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/invite"
	"github.com/wfunc/rpsls/logger"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/room"
)

type createRoomRequest struct {
	HostUser   string `json:"host_user"`
	MaxPlayers int    `json:"max_players"`
	BestOf     int    `json:"best_of"`
	Password   string `json:"password"`
}

func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.HostUser == "" {
		writeError(w, apperr.Validation("host_user is required"))
		return
	}

	rm, err := s.roomManager.CreateRoom(req.HostUser, s.facade.SelfAddress(), room.Settings{
		MaxPlayers: req.MaxPlayers,
		BestOf:     req.BestOf,
		Password:   req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("User %s created room %s (best of %d, up to %d players)",
		req.HostUser, rm.ID, req.BestOf, req.MaxPlayers)
	if s.monitor != nil {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}
	writeJSON(w, http.StatusCreated, map[string]string{"room_id": rm.ID})
}

type joinRoomRequest struct {
	User     string `json:"user"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

func (s *GameServer) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req joinRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}
	if err := rm.Join(req.User, req.Address, req.Password); err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("User %s joined room %s", req.User, roomID)
	writeJSON(w, http.StatusOK, rm.Snapshot())
}

type userRequest struct {
	User string `json:"user"`
}

func (s *GameServer) handleToggleReady(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}
	if err := rm.ToggleReady(req.User); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm.Snapshot())
}

func (s *GameServer) handleStartGame(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}
	if err := rm.Start(req.User); err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("Room %s started by %s", roomID, req.User)
	writeJSON(w, http.StatusOK, rm.Snapshot())
}

type moveRequest struct {
	User string    `json:"user"`
	Move game.Move `json:"move"`
}

func (s *GameServer) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}

	before := rm.Snapshot()
	if err := rm.SubmitMove(req.User, req.Move); err != nil {
		writeError(w, err)
		return
	}

	if s.monitor != nil {
		s.monitor.IncMovesSubmitted()
		after := rm.Snapshot()
		if after.Round != before.Round || after.State != before.State {
			s.monitor.IncRoundsResolved()
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

type emoteRequest struct {
	User  string `json:"user"`
	Emote string `json:"emote"`
}

func (s *GameServer) handleEmote(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req emoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}
	if err := rm.Emote(req.User, req.Emote); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *GameServer) handleLeave(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}

	empty, err := rm.Leave(req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	if empty {
		s.roomManager.RemoveRoom(roomID)
		if s.monitor != nil {
			s.monitor.SetActiveRooms(s.roomManager.Count())
		}
	}

	logger.Log.Infof("User %s left room %s", req.User, roomID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (s *GameServer) handleGetState(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}
	writeJSON(w, http.StatusOK, rm.Snapshot())
}

func (s *GameServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	rm, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", roomID))
		return
	}

	since, _ := strconv.ParseInt(r.URL.Query().Get("since"), 10, 64)
	evs := rm.EventsSince(since)
	if evs == nil {
		evs = []events.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}

type challengeRequest struct {
	TargetUser    string `json:"target_user"`
	TargetAddress string `json:"target_address"`
	FromUser      string `json:"from_user"`
	RoomID        string `json:"room_id"`
}

// handleSendChallenge delivers a challenge to the target's coordinator.
// The room must already exist locally; the password-required flag rides the
// invite so the target knows to prompt. A missing target address is
// resolved through the discovery registry.
func (s *GameServer) handleSendChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rm, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		writeError(w, apperr.NotFound("room %s not found", req.RoomID))
		return
	}

	if req.TargetAddress == "" {
		for _, peer := range s.discovery.Peers(time.Now()) {
			if peer.Username == req.TargetUser {
				req.TargetAddress = peer.Address
				break
			}
		}
		if req.TargetAddress == "" {
			writeError(w, apperr.NotFound("peer %s not discovered on this network", req.TargetUser))
			return
		}
	}

	inv := invite.Invite{
		RoomID:           req.RoomID,
		FromUser:         req.FromUser,
		FromAddress:      s.facade.SelfAddress(),
		TargetUser:       req.TargetUser,
		PasswordRequired: rm.Snapshot().PasswordProtected,
	}
	if err := s.facade.DeliverInvite(req.TargetAddress, inv); err != nil {
		writeError(w, err)
		return
	}

	logger.Log.Infof("Challenge for room %s sent to %s at %s", req.RoomID, req.TargetUser, req.TargetAddress)
	writeJSON(w, http.StatusOK, map[string]string{"status": "invite_sent"})
}

// handleReceiveInvite is the peer-to-peer endpoint: another coordinator
// enqueues a challenge for one of our local users.
func (s *GameServer) handleReceiveInvite(w http.ResponseWriter, r *http.Request) {
	var inv invite.Invite
	if err := decodeBody(r, &inv); err != nil {
		writeError(w, err)
		return
	}
	if inv.TargetUser == "" || inv.FromUser == "" || inv.RoomID == "" {
		writeError(w, apperr.Validation("target_user, from_user and room_id are required"))
		return
	}

	err := s.invites.Challenge(inv.TargetUser, inv.FromUser, inv.FromAddress, inv.RoomID, inv.PasswordRequired)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invite_received"})
}

func (s *GameServer) handleListInvites(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		writeError(w, apperr.Validation("user query parameter is required"))
		return
	}

	invites := s.invites.List(user)
	if invites == nil {
		invites = []invite.Invite{}
	}
	writeJSON(w, http.StatusOK, invites)
}

type dismissInviteRequest struct {
	RoomID string `json:"room_id"`
	User   string `json:"user"`
}

func (s *GameServer) handleDismissInvite(w http.ResponseWriter, r *http.Request) {
	var req dismissInviteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !s.invites.Consume(req.RoomID, req.User) {
		writeError(w, apperr.NotFound("no pending invite for room %s", req.RoomID))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (s *GameServer) handleStartDiscovery(w http.ResponseWriter, r *http.Request) {
	s.discovery.ScanNow()
	writeJSON(w, http.StatusOK, map[string]string{"status": "scanning"})
}

func (s *GameServer) handleListPeers(w http.ResponseWriter, r *http.Request) {
	peers := s.discovery.Peers(time.Now())
	if s.monitor != nil {
		s.monitor.SetKnownPeers(len(peers))
	}
	writeJSON(w, http.StatusOK, peers)
}

func (s *GameServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.leaderboard.Leaderboard(limit)
	if err != nil {
		writeError(w, apperr.Network(err, "leaderboard store unavailable"))
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
