// Package invite queues pending challenges per target user. Invites are
// FIFO per target and deduplicated by (room, target); they live until the
// join attempt they back either succeeds or is abandoned.
package invite

import (
	"sync"
	"time"

	"github.com/wfunc/rpsls/apperr"
)

type Invite struct {
	RoomID           string    `json:"room_id"`
	FromUser         string    `json:"from_user"`
	FromAddress      string    `json:"from_address"`
	TargetUser       string    `json:"target_user"`
	PasswordRequired bool      `json:"password_required"`
	CreatedAt        time.Time `json:"created_at"`
}

type Queue struct {
	mu     sync.Mutex
	byUser map[string][]Invite
}

func NewQueue() *Queue {
	return &Queue{
		byUser: make(map[string][]Invite),
	}
}

// Challenge enqueues an invite for the target. A resend for the same
// (room, target) pair collapses into the existing entry and reports
// Conflict so the sender knows the challenge is already pending.
func (q *Queue) Challenge(targetUser, fromUser, fromAddress, roomID string, passwordRequired bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, inv := range q.byUser[targetUser] {
		if inv.RoomID == roomID {
			return apperr.Conflict("challenge for room %s already pending for %s", roomID, targetUser)
		}
	}

	q.byUser[targetUser] = append(q.byUser[targetUser], Invite{
		RoomID:           roomID,
		FromUser:         fromUser,
		FromAddress:      fromAddress,
		TargetUser:       targetUser,
		PasswordRequired: passwordRequired,
		CreatedAt:        time.Now(),
	})
	return nil
}

// List snapshots the target's pending invites without consuming them.
func (q *Queue) List(forUser string) []Invite {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.byUser[forUser]
	out := make([]Invite, len(pending))
	copy(out, pending)
	return out
}

// Consume removes the invite for (room, user). Called exactly once, when
// the join attempt succeeds or the user dismisses the challenge.
func (q *Queue) Consume(roomID, forUser string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.byUser[forUser]
	for i, inv := range pending {
		if inv.RoomID == roomID {
			q.byUser[forUser] = append(pending[:i:i], pending[i+1:]...)
			if len(q.byUser[forUser]) == 0 {
				delete(q.byUser, forUser)
			}
			return true
		}
	}
	return false
}
