// Package memory is an in-process repository.Store. Transactions buffer their
// writes in an overlay and publish them on commit, so other readers only ever
// see committed state; container locks serialize ordering changes the same way
// row locks do in PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Tx    = (*tx)(nil)
)

type pair struct {
	a, b uuid.UUID
}

type Store struct {
	mu sync.RWMutex

	users       map[uuid.UUID]model.User
	boards      map[uuid.UUID]model.Board
	members     map[pair]model.BoardMember
	lists       map[uuid.UUID]model.List
	cards       map[uuid.UUID]model.Card
	cardMembers map[pair]model.CardMember
	comments    map[uuid.UUID]model.Comment
	checklists  map[uuid.UUID]model.Checklist
	items       map[uuid.UUID]model.ChecklistItem
	activities  []model.Activity

	locks *keyedLocks
	view
}

func New() *Store {
	s := &Store{
		users:       make(map[uuid.UUID]model.User),
		boards:      make(map[uuid.UUID]model.Board),
		members:     make(map[pair]model.BoardMember),
		lists:       make(map[uuid.UUID]model.List),
		cards:       make(map[uuid.UUID]model.Card),
		cardMembers: make(map[pair]model.CardMember),
		comments:    make(map[uuid.UUID]model.Comment),
		checklists:  make(map[uuid.UUID]model.Checklist),
		items:       make(map[uuid.UUID]model.ChecklistItem),
		locks:       newKeyedLocks(),
	}
	// Reads outside a transaction go through an overlay that stays empty.
	s.view = view{s: s, st: newState()}
	return s
}

func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(apperr.ErrTransientStore, "failed to begin transaction",
			goerr.V("cause", err.Error()))
	}
	return &tx{
		view: view{s: s, st: newState()},
		held: make(map[uuid.UUID]struct{}),
	}, nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return goerr.Wrap(apperr.ErrValidation, "username already taken",
				goerr.V("username", user.Username))
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[user.ID]
	if !ok {
		return goerr.Wrap(apperr.ErrNotFound, "user not found", goerr.V("user_id", user.ID))
	}
	cur.FullName = user.FullName
	cur.Phone = user.Phone
	s.users[user.ID] = cur
	return nil
}

// state is the write buffer of one transaction.
type state struct {
	users       *overlay[uuid.UUID, model.User]
	boards      *overlay[uuid.UUID, model.Board]
	members     *overlay[pair, model.BoardMember]
	lists       *overlay[uuid.UUID, model.List]
	cards       *overlay[uuid.UUID, model.Card]
	cardMembers *overlay[pair, model.CardMember]
	comments    *overlay[uuid.UUID, model.Comment]
	checklists  *overlay[uuid.UUID, model.Checklist]
	items       *overlay[uuid.UUID, model.ChecklistItem]
	activities  []model.Activity
	// boards whose activity history goes away with them
	purged map[uuid.UUID]struct{}
}

func newState() *state {
	return &state{
		users:       newOverlay[uuid.UUID, model.User](),
		boards:      newOverlay[uuid.UUID, model.Board](),
		members:     newOverlay[pair, model.BoardMember](),
		lists:       newOverlay[uuid.UUID, model.List](),
		cards:       newOverlay[uuid.UUID, model.Card](),
		cardMembers: newOverlay[pair, model.CardMember](),
		comments:    newOverlay[uuid.UUID, model.Comment](),
		checklists:  newOverlay[uuid.UUID, model.Checklist](),
		items:       newOverlay[uuid.UUID, model.ChecklistItem](),
		purged:      make(map[uuid.UUID]struct{}),
	}
}

type tx struct {
	view
	held map[uuid.UUID]struct{}
	done bool
}

func (t *tx) Commit() error {
	if t.done {
		return goerr.New("transaction already finished")
	}
	t.done = true
	defer t.releaseAll()

	s, st := t.s, t.st
	s.mu.Lock()
	defer s.mu.Unlock()

	st.users.apply(s.users)
	st.boards.apply(s.boards)
	st.members.apply(s.members)
	st.lists.apply(s.lists)
	st.cards.apply(s.cards)
	st.cardMembers.apply(s.cardMembers)
	st.comments.apply(s.comments)
	st.checklists.apply(s.checklists)
	st.items.apply(s.items)

	if len(st.purged) > 0 {
		kept := s.activities[:0]
		for _, a := range s.activities {
			if _, gone := st.purged[a.BoardID]; !gone {
				kept = append(kept, a)
			}
		}
		s.activities = kept
	}
	s.activities = append(s.activities, st.activities...)
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.releaseAll()
	return nil
}

func (t *tx) releaseAll() {
	for id := range t.held {
		t.s.locks.release(id)
	}
	t.held = nil
}

func (t *tx) lock(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	if err := t.s.locks.acquire(ctx, id); err != nil {
		return err
	}
	t.held[id] = struct{}{}
	return nil
}
