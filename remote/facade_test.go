package remote_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/commentary"
	"github.com/wfunc/rpsls/discovery"
	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/invite"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/remote"
	"github.com/wfunc/rpsls/room"
	"github.com/wfunc/rpsls/server"
	"github.com/wfunc/rpsls/services"
	"github.com/wfunc/rpsls/state"
)

type nopStore struct{}

func (nopStore) RecordMatch(models.MatchResult) error { return nil }
func (nopStore) Leaderboard(int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}
func (nopStore) PlayerRecord(string) (models.LeaderboardEntry, error) {
	return models.LeaderboardEntry{}, nil
}
func (nopStore) Close() error { return nil }

// hostCoordinator spins up a full coordinator behind httptest and returns
// its LAN-style address, the way a guest facade would dial it.
func hostCoordinator(t *testing.T) (addr string, rooms *room.Manager) {
	t.Helper()
	leaderboard := services.NewLeaderboardService(nopStore{})
	rooms = room.NewManager(commentary.NewRulesGenerator(), leaderboard, 0, time.Minute)
	disc := discovery.NewService("sheldon", 5001, 5050, 2*time.Second, 10*time.Second)
	hostFacade := remote.NewFacade("10.0.0.1:5001", rooms)

	s := server.NewGameServer(":0", rooms, invite.NewQueue(), disc, leaderboard, hostFacade, nil)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	return strings.TrimPrefix(ts.URL, "http://"), rooms
}

func hostRoom(t *testing.T, rooms *room.Manager, settings room.Settings) *room.Room {
	t.Helper()
	rm, err := rooms.CreateRoom("sheldon", "10.0.0.1:5001", settings)
	require.NoError(t, err)
	t.Cleanup(rm.Close)
	return rm
}

func TestRemoteMatchThroughFacade(t *testing.T) {
	hostAddr, rooms := hostCoordinator(t)
	rm := hostRoom(t, rooms, room.Settings{MaxPlayers: 2, BestOf: 1})

	guest := remote.NewFacade("10.0.0.2:5001", nil)
	ctx := context.Background()

	snap, err := guest.JoinRoom(ctx, hostAddr, rm.ID, "leonard", "")
	require.NoError(t, err)
	assert.Equal(t, state.StateLobby, snap.State)
	assert.Len(t, snap.Players, 2)

	_, err = guest.ToggleReady(ctx, hostAddr, rm.ID, "leonard")
	require.NoError(t, err)

	// The host starts locally; the guest plays over the wire.
	require.NoError(t, rm.Start("sheldon"))
	require.NoError(t, rm.SubmitMove("sheldon", game.Paper))
	require.NoError(t, guest.SubmitMove(ctx, hostAddr, rm.ID, "leonard", game.Rock))

	snap, err = guest.GetState(ctx, hostAddr, rm.ID)
	require.NoError(t, err)
	assert.Equal(t, state.StateFinished, snap.State)
	require.NotNil(t, snap.LastEvent)
	assert.Equal(t, "sheldon", snap.LastEvent.GameOver.Winner)

	evs, err := guest.EventsSince(ctx, hostAddr, rm.ID, 0)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, events.TypeGameStart, evs[0].Type)
	assert.Equal(t, events.TypeGameOver, evs[1].Type)
}

func TestRemoteErrorKindsSurvive(t *testing.T) {
	hostAddr, rooms := hostCoordinator(t)
	rm := hostRoom(t, rooms, room.Settings{MaxPlayers: 2, BestOf: 1, Password: "bazinga"})

	guest := remote.NewFacade("10.0.0.2:5001", nil)
	ctx := context.Background()

	_, err := guest.JoinRoom(ctx, hostAddr, rm.ID, "leonard", "wrong")
	require.Error(t, err)
	assert.True(t, apperr.IsAuth(err), "auth kind must survive the wire")

	_, err = guest.GetState(ctx, hostAddr, "no-such-room")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUnreachableHostIsNetworkError(t *testing.T) {
	guest := remote.NewFacade("10.0.0.2:5001", nil)

	_, err := guest.GetState(context.Background(), "127.0.0.1:1", "room-1")
	require.Error(t, err)
	assert.True(t, apperr.IsNetwork(err))
}

func TestLocalDispatchSkipsHTTP(t *testing.T) {
	leaderboard := services.NewLeaderboardService(nopStore{})
	rooms := room.NewManager(commentary.NewRulesGenerator(), leaderboard, 0, time.Minute)
	facade := remote.NewFacade("10.0.0.1:5001", rooms)

	rm := hostRoom(t, rooms, room.Settings{MaxPlayers: 2, BestOf: 1})
	ctx := context.Background()

	// Empty host address and our own address both resolve locally.
	snap, err := facade.GetState(ctx, "", rm.ID)
	require.NoError(t, err)
	assert.Equal(t, rm.ID, snap.RoomID)

	snap, err = facade.JoinRoom(ctx, "10.0.0.1:5001", rm.ID, "leonard", "")
	require.NoError(t, err)
	assert.Len(t, snap.Players, 2)

	// Leaving empties the lobby when the host goes; the registry entry is
	// removed on the way out.
	require.NoError(t, facade.LeaveRoom(ctx, "", rm.ID, "leonard"))
	require.NoError(t, facade.LeaveRoom(ctx, "", rm.ID, "sheldon"))
	_, exists := rooms.GetRoom(rm.ID)
	assert.False(t, exists)
}
