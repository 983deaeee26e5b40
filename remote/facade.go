// Package remote is the access facade for room-scoped calls. Its single
// job is choosing "local registry" versus "owning host's address": the
// host of a room mutates it directly, everyone else goes over HTTP to the
// host. No caching, no retries; each call is one request.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wfunc/rpsls/apperr"
	"github.com/wfunc/rpsls/events"
	"github.com/wfunc/rpsls/game"
	"github.com/wfunc/rpsls/invite"
	"github.com/wfunc/rpsls/models"
	"github.com/wfunc/rpsls/room"
)

type Facade struct {
	selfAddr string
	rooms    *room.Manager
	client   *http.Client
}

func NewFacade(selfAddr string, rooms *room.Manager) *Facade {
	return &Facade{
		selfAddr: selfAddr,
		rooms:    rooms,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// SelfAddress is this process's reachable HTTP address, handed to peers in
// invites and join requests.
func (f *Facade) SelfAddress() string {
	return f.selfAddr
}

func (f *Facade) isLocal(hostAddr string) bool {
	return hostAddr == "" || hostAddr == f.selfAddr
}

func (f *Facade) localRoom(roomID string) (*room.Room, error) {
	rm, exists := f.rooms.GetRoom(roomID)
	if !exists {
		return nil, apperr.NotFound("room %s not found", roomID)
	}
	return rm, nil
}

// --- Room-scoped operations ---

func (f *Facade) JoinRoom(ctx context.Context, hostAddr, roomID, user, password string) (models.RoomSnapshot, error) {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return models.RoomSnapshot{}, err
		}
		if err := rm.Join(user, f.selfAddr, password); err != nil {
			return models.RoomSnapshot{}, err
		}
		return rm.Snapshot(), nil
	}

	var snap models.RoomSnapshot
	err := f.postJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/join", map[string]string{
		"user":     user,
		"address":  f.selfAddr,
		"password": password,
	}, &snap)
	return snap, err
}

func (f *Facade) ToggleReady(ctx context.Context, hostAddr, roomID, user string) (models.RoomSnapshot, error) {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return models.RoomSnapshot{}, err
		}
		if err := rm.ToggleReady(user); err != nil {
			return models.RoomSnapshot{}, err
		}
		return rm.Snapshot(), nil
	}

	var snap models.RoomSnapshot
	err := f.postJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/ready", map[string]string{"user": user}, &snap)
	return snap, err
}

func (f *Facade) StartGame(ctx context.Context, hostAddr, roomID, user string) (models.RoomSnapshot, error) {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return models.RoomSnapshot{}, err
		}
		if err := rm.Start(user); err != nil {
			return models.RoomSnapshot{}, err
		}
		return rm.Snapshot(), nil
	}

	var snap models.RoomSnapshot
	err := f.postJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/start", map[string]string{"user": user}, &snap)
	return snap, err
}

// SubmitMove is not idempotent: a NetworkError here leaves the caller
// unsure whether the host recorded the move. Callers must re-query state
// before assuming it was accepted.
func (f *Facade) SubmitMove(ctx context.Context, hostAddr, roomID, user string, move game.Move) error {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return err
		}
		return rm.SubmitMove(user, move)
	}

	return f.postJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/move", map[string]string{
		"user": user,
		"move": move.String(),
	}, nil)
}

func (f *Facade) SendEmote(ctx context.Context, hostAddr, roomID, user, emote string) error {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return err
		}
		return rm.Emote(user, emote)
	}

	return f.postJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/emote", map[string]string{
		"user":  user,
		"emote": emote,
	}, nil)
}

func (f *Facade) LeaveRoom(ctx context.Context, hostAddr, roomID, user string) error {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return err
		}
		empty, err := rm.Leave(user)
		if err != nil {
			return err
		}
		if empty {
			f.rooms.RemoveRoom(roomID)
		}
		return nil
	}

	return f.postJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/leave", map[string]string{"user": user}, nil)
}

func (f *Facade) GetState(ctx context.Context, hostAddr, roomID string) (models.RoomSnapshot, error) {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return models.RoomSnapshot{}, err
		}
		return rm.Snapshot(), nil
	}

	var snap models.RoomSnapshot
	err := f.getJSON(ctx, hostAddr, "/api/rooms/"+roomID+"/state", &snap)
	return snap, err
}

func (f *Facade) EventsSince(ctx context.Context, hostAddr, roomID string, watermark int64) ([]events.Event, error) {
	if f.isLocal(hostAddr) {
		rm, err := f.localRoom(roomID)
		if err != nil {
			return nil, err
		}
		return rm.EventsSince(watermark), nil
	}

	var evs []events.Event
	err := f.getJSON(ctx, hostAddr, fmt.Sprintf("/api/rooms/%s/events?since=%d", roomID, watermark), &evs)
	return evs, err
}

// DeliverInvite hands a challenge to the target user's coordinator.
func (f *Facade) DeliverInvite(targetAddr string, inv invite.Invite) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.postJSON(ctx, targetAddr, "/api/invites", inv, nil)
}

// --- HTTP plumbing ---

func (f *Facade) postJSON(ctx context.Context, addr, path string, body, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := "http://" + addr + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return f.do(req, out)
}

func (f *Facade) getJSON(ctx context.Context, addr, path string, out interface{}) error {
	url := "http://" + addr + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return f.do(req, out)
}

func (f *Facade) do(req *http.Request, out interface{}) error {
	resp, err := f.client.Do(req)
	if err != nil {
		return apperr.Network(err, "host %s unreachable", req.URL.Host)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeRemoteError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeRemoteError reconstructs the host's taxonomy error so guests see
// the same Kind the host raised.
func decodeRemoteError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
		return apperr.Network(nil, "host returned status %d", resp.StatusCode)
	}

	switch body.Kind {
	case apperr.KindValidation.String():
		return apperr.Validation("%s", body.Error)
	case apperr.KindAuth.String():
		return apperr.Auth("%s", body.Error)
	case apperr.KindConflict.String():
		return apperr.Conflict("%s", body.Error)
	case apperr.KindNotFound.String():
		return apperr.NotFound("%s", body.Error)
	default:
		return apperr.Network(nil, "%s", body.Error)
	}
}
