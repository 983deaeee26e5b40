package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/rpsls/commentary"
	"github.com/wfunc/rpsls/discovery"
	"github.com/wfunc/rpsls/invite"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/persistence"
	"github.com/wfunc/rpsls/remote"
	"github.com/wfunc/rpsls/room"
	"github.com/wfunc/rpsls/server"
	"github.com/wfunc/rpsls/services"
	"github.com/wfunc/rpsls/state"
)

// fakeStore keeps the leaderboard in memory for handler tests.
type fakeStore struct {
	matches []models.MatchResult
	entries []models.LeaderboardEntry
}

func (s *fakeStore) RecordMatch(result models.MatchResult) error {
	s.matches = append(s.matches, result)
	return nil
}

func (s *fakeStore) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	return s.entries, nil
}

func (s *fakeStore) PlayerRecord(username string) (models.LeaderboardEntry, error) {
	for _, e := range s.entries {
		if e.Username == username {
			return e, nil
		}
	}
	return models.LeaderboardEntry{}, persistence.ErrRecordNotFound
}

func (s *fakeStore) Close() error { return nil }

func newTestServer(t *testing.T) (*server.GameServer, *room.Manager, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	leaderboard := services.NewLeaderboardService(store)
	rooms := room.NewManager(commentary.NewRulesGenerator(), leaderboard, 0, time.Minute)
	disc := discovery.NewService("sheldon", 5001, 5050, 2*time.Second, 10*time.Second)
	facade := remote.NewFacade("10.0.0.1:5001", rooms)

	s := server.NewGameServer(":0", rooms, invite.NewQueue(), disc, leaderboard, facade, nil)
	return s, rooms, store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestFullMatchOverHTTP(t *testing.T) {
	s, rooms, _ := newTestServer(t)
	router := s.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", map[string]interface{}{
		"host_user": "sheldon", "max_players": 2, "best_of": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]string
	decode(t, rec, &created)
	roomID := created["room_id"]
	require.NotEmpty(t, roomID)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{
		"user": "leonard", "address": "10.0.0.2:5001",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/ready", map[string]string{"user": "leonard"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/start", map[string]string{"user": "sheldon"})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.RoomSnapshot
	decode(t, rec, &snap)
	assert.Equal(t, state.StateActive, snap.State)
	assert.Equal(t, 1, snap.Round)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/move", map[string]string{
		"user": "sheldon", "move": "Rock",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/move", map[string]string{
		"user": "leonard", "move": "Scissors",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/rooms/"+roomID+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &snap)
	assert.Equal(t, state.StateFinished, snap.State)
	require.NotNil(t, snap.LastEvent)
	assert.Equal(t, "sheldon", snap.LastEvent.GameOver.Winner)

	rm, exists := rooms.GetRoom(roomID)
	require.True(t, exists)
	t.Cleanup(rm.Close)
}

func TestErrorStatusMapping(t *testing.T) {
	s, rooms, _ := newTestServer(t)
	router := s.Router()

	// Unknown room.
	rec := doJSON(t, router, http.MethodGet, "/api/rooms/nope/state", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Malformed body.
	req := httptest.NewRequest(http.MethodPost, "/api/rooms", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Missing host user.
	rec = doJSON(t, router, http.MethodPost, "/api/rooms", map[string]interface{}{"max_players": 2, "best_of": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms", map[string]interface{}{
		"host_user": "sheldon", "max_players": 2, "best_of": 1, "password": "bazinga",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	decode(t, rec, &created)
	roomID := created["room_id"]

	// Wrong password.
	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/join", map[string]string{
		"user": "leonard", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "auth", body["kind"])

	// Moving in the lobby conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/rooms/"+roomID+"/move", map[string]string{
		"user": "sheldon", "move": "Rock",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rm, exists := rooms.GetRoom(roomID)
	require.True(t, exists)
	t.Cleanup(rm.Close)
}

func TestInviteEndpoints(t *testing.T) {
	s, _, _ := newTestServer(t)
	router := s.Router()

	inv := map[string]interface{}{
		"room_id":           "room-42",
		"from_user":         "sheldon",
		"from_address":      "10.0.0.1:5001",
		"target_user":       "leonard",
		"password_required": true,
	}

	rec := doJSON(t, router, http.MethodPost, "/api/invites", inv)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same room and target again is a duplicate.
	rec = doJSON(t, router, http.MethodPost, "/api/invites", inv)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/invites?user=leonard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []invite.Invite
	decode(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, "room-42", pending[0].RoomID)
	assert.True(t, pending[0].PasswordRequired)

	rec = doJSON(t, router, http.MethodGet, "/api/invites", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "user query parameter is required")

	rec = doJSON(t, router, http.MethodPost, "/api/invites/dismiss", map[string]string{
		"room_id": "room-42", "user": "leonard",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/invites/dismiss", map[string]string{
		"room_id": "room-42", "user": "leonard",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/invites?user=leonard", nil)
	decode(t, rec, &pending)
	assert.Empty(t, pending)
}

func TestChallengeDeliveredToPeer(t *testing.T) {
	s, rooms, _ := newTestServer(t)
	router := s.Router()

	// The coordinator doubles as the target peer here; the invite loops
	// back into its own queue.
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	selfAddr := strings.TrimPrefix(ts.URL, "http://")

	rec := doJSON(t, router, http.MethodPost, "/api/rooms", map[string]interface{}{
		"host_user": "sheldon", "max_players": 2, "best_of": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]string
	decode(t, rec, &created)
	roomID := created["room_id"]

	rec = doJSON(t, router, http.MethodPost, "/api/challenge", map[string]string{
		"target_user":    "leonard",
		"target_address": selfAddr,
		"from_user":      "sheldon",
		"room_id":        roomID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/invites?user=leonard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []invite.Invite
	decode(t, rec, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, roomID, pending[0].RoomID)
	assert.Equal(t, "sheldon", pending[0].FromUser)

	// An undiscovered target with no explicit address cannot be reached.
	rec = doJSON(t, router, http.MethodPost, "/api/challenge", map[string]string{
		"target_user": "stuart",
		"from_user":   "sheldon",
		"room_id":     roomID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rm, exists := rooms.GetRoom(roomID)
	require.True(t, exists)
	t.Cleanup(rm.Close)
}

func TestLeaderboardEndpoint(t *testing.T) {
	s, _, store := newTestServer(t)
	store.entries = []models.LeaderboardEntry{
		{Username: "sheldon", Wins: 73, Losses: 2},
		{Username: "leonard", Wins: 10, Losses: 65},
	}

	rec := doJSON(t, s.Router(), http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.LeaderboardEntry
	decode(t, rec, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "sheldon", entries[0].Username)
	assert.Equal(t, 73, entries[0].Wins)
}
