package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

// Subscriber is one live connection in a board group.
type Subscriber interface {
	ID() string
	// Deliver queues a frame without blocking and reports whether it was taken.
	Deliver(frame []byte) bool
}

// Authorizer answers the board membership question.
type Authorizer interface {
	GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error)
	IsBoardMember(ctx context.Context, userID, boardID uuid.UUID) (bool, error)
}

// Admission proves that a user passed the membership check for a board.
// Only Admit can produce a usable value.
type Admission struct {
	boardID uuid.UUID
	userID  uuid.UUID
	valid   bool
}

func (a Admission) BoardID() uuid.UUID { return a.boardID }
func (a Admission) UserID() uuid.UUID  { return a.userID }

// Admit checks that user may follow boardID. Missing and archived boards are
// reported as not found, non-members as forbidden.
func Admit(ctx context.Context, authz Authorizer, boardID uuid.UUID, user *model.User) (Admission, error) {
	if user == nil {
		return Admission{}, goerr.Wrap(apperr.ErrForbidden, "anonymous connection")
	}
	board, err := authz.GetBoard(ctx, boardID)
	if err != nil {
		return Admission{}, err
	}
	if board.Archived {
		return Admission{}, goerr.Wrap(apperr.ErrNotFound, "board is archived", goerr.V("board_id", boardID))
	}
	ok, err := authz.IsBoardMember(ctx, user.ID, boardID)
	if err != nil {
		return Admission{}, err
	}
	if !ok {
		return Admission{}, goerr.Wrap(apperr.ErrForbidden, "user is not a board member",
			goerr.V("board_id", boardID), goerr.V("user_id", user.ID))
	}
	return Admission{boardID: boardID, userID: user.ID, valid: true}, nil
}

// Registry maps boards to their live subscribers. It lives for the process
// and starts empty.
type Registry struct {
	mu     sync.RWMutex
	groups map[uuid.UUID]map[string]Subscriber
}

func NewRegistry() *Registry {
	return &Registry{groups: make(map[uuid.UUID]map[string]Subscriber)}
}

func (r *Registry) Join(adm Admission, sub Subscriber) error {
	if !adm.valid {
		return goerr.Wrap(apperr.ErrForbidden, "connection was not admitted", goerr.V("conn_id", sub.ID()))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[adm.boardID]
	if !ok {
		group = make(map[string]Subscriber)
		r.groups[adm.boardID] = group
	}
	group[sub.ID()] = sub
	return nil
}

func (r *Registry) Leave(boardID uuid.UUID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group, ok := r.groups[boardID]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(r.groups, boardID)
	}
}

// Members returns a snapshot; callers iterate it without holding the lock.
func (r *Registry) Members(boardID uuid.UUID) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group := r.groups[boardID]
	out := make([]Subscriber, 0, len(group))
	for _, sub := range group {
		out = append(out, sub)
	}
	return out
}

func (r *Registry) Count(boardID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[boardID])
}
