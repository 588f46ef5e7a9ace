package container_test

import (
	"context"
	"sync"
	"testing"

	"taskboard/internal/activity"
	"taskboard/internal/container"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
	"taskboard/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type published struct {
	boardID uuid.UUID
	event   realtime.Event
	// committed reports whether the entity named by the payload id was
	// visible outside any transaction when the event went out.
	committed bool
}

// recordingPublisher captures events and checks them against committed state.
type recordingPublisher struct {
	mu     sync.Mutex
	store  *memory.Store
	events []published
}

func (p *recordingPublisher) Publish(ctx context.Context, boardID uuid.UUID, ev realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{boardID: boardID, event: ev, committed: p.visible(ctx, ev)})
}

func (p *recordingPublisher) visible(ctx context.Context, ev realtime.Event) bool {
	payload, ok := ev.Payload.(map[string]any)
	if !ok {
		return true
	}
	raw, ok := payload["id"].(string)
	if !ok {
		return true
	}
	id := uuid.MustParse(raw)
	switch ev.Kind {
	case realtime.KindListCreated:
		_, err := p.store.GetList(ctx, id)
		return err == nil
	case realtime.KindCardCreated, realtime.KindCardAdded:
		_, err := p.store.GetCard(ctx, id)
		return err == nil
	case realtime.KindCardDeleted:
		_, err := p.store.GetCard(ctx, id)
		return err != nil
	}
	return true
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.event.Kind
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type fixture struct {
	repo     *memory.Store
	pub      *recordingPublisher
	store    *container.Store
	owner    *model.User
	member   *model.User
	stranger *model.User
	board    *model.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, func(repo *memory.Store) repository.Store { return repo })
}

// newFixtureOn runs the container store on top of whatever wrap returns.
func newFixtureOn(t *testing.T, wrap func(*memory.Store) repository.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()
	logger, _ := test.NewNullLogger()
	pub := &recordingPublisher{store: repo}
	f := &fixture{
		repo:     repo,
		pub:      pub,
		store:    container.NewStore(wrap(repo), activity.NewRecorder(), pub, logger),
		owner:    &model.User{Username: "owner"},
		member:   &model.User{Username: "member"},
		stranger: &model.User{Username: "stranger"},
	}
	for _, u := range []*model.User{f.owner, f.member, f.stranger} {
		require.NoError(t, repo.CreateUser(ctx, u))
	}

	board, err := f.store.CreateBoard(ctx, f.owner.ID, container.BoardInput{Title: "Roadmap"})
	require.NoError(t, err)
	_, err = f.store.AddMember(ctx, f.owner.ID, board.ID, "member")
	require.NoError(t, err)
	f.board = board
	pub.reset()
	return f
}

func (f *fixture) lists(t *testing.T, titles ...string) []*model.List {
	t.Helper()
	out := make([]*model.List, len(titles))
	for i, title := range titles {
		l, err := f.store.CreateList(context.Background(), f.owner.ID, f.board.ID, title)
		require.NoError(t, err)
		out[i] = l
	}
	return out
}

func (f *fixture) cards(t *testing.T, listID uuid.UUID, titles ...string) []*model.Card {
	t.Helper()
	out := make([]*model.Card, len(titles))
	for i, title := range titles {
		c, err := f.store.CreateCard(context.Background(), f.owner.ID, listID, container.CardInput{Title: title})
		require.NoError(t, err)
		out[i] = c
	}
	return out
}

func (f *fixture) activityCount(t *testing.T) int {
	t.Helper()
	got, err := f.repo.ActivitiesByBoard(context.Background(), f.board.ID, 10_000)
	require.NoError(t, err)
	return len(got)
}

// cardOrder returns the active card ids of a list with their positions
// checked to be dense.
func cardOrder(t *testing.T, repo *memory.Store, listID uuid.UUID) []uuid.UUID {
	t.Helper()
	cards, err := repo.CardsByList(context.Background(), listID, false)
	require.NoError(t, err)
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		require.Equal(t, i, c.Position, "card %s", c.Title)
		out[i] = c.ID
	}
	return out
}

func listOrder(t *testing.T, repo *memory.Store, boardID uuid.UUID) []uuid.UUID {
	t.Helper()
	lists, err := repo.ListsByBoard(context.Background(), boardID, false)
	require.NoError(t, err)
	out := make([]uuid.UUID, len(lists))
	for i, l := range lists {
		require.Equal(t, i, l.Position, "list %s", l.Title)
		out[i] = l.ID
	}
	return out
}

func idsOf[T any](items []*T, id func(*T) uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func listID(l *model.List) uuid.UUID { return l.ID }
func cardID(c *model.Card) uuid.UUID { return c.ID }

func intPtr(v int) *int { return &v }
