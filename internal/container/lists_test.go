package container_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"taskboard/internal/apperr"
	"taskboard/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateList_AppendsAtEnd(t *testing.T) {
	f := newFixture(t)

	lists := f.lists(t, "Todo", "Doing", "Done")

	for i, l := range lists {
		assert.Equal(t, i, l.Position)
	}
	assert.Equal(t, idsOf(lists, listID), listOrder(t, f.repo, f.board.ID))
	assert.Equal(t, []string{realtime.KindListCreated, realtime.KindListCreated, realtime.KindListCreated}, f.pub.kinds())
}

func TestCreateList_RejectsBlankTitleAndStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CreateList(ctx, f.owner.ID, f.board.ID, "   ")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = f.store.CreateList(ctx, f.stranger.ID, f.board.ID, "Todo")
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.store.CreateList(ctx, f.member.ID, uuid.New(), "Todo")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	assert.Empty(t, f.pub.kinds())
}

func TestReorderLists_AppliesPermutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B", "C")
	before := f.activityCount(t)
	f.pub.reset()

	got, err := f.store.ReorderLists(ctx, f.member.ID, f.board.ID, []uuid.UUID{l[2].ID, l[0].ID, l[1].ID})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{l[2].ID, l[0].ID, l[1].ID}, listOrder(t, f.repo, f.board.ID))
	assert.Equal(t, before+1, f.activityCount(t))
	assert.Equal(t, []string{realtime.KindListsReordered}, f.pub.kinds())
}

func TestReorderLists_InvalidOrderingChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B", "C")
	before := f.activityCount(t)
	f.pub.reset()

	cases := map[string][]uuid.UUID{
		"missing":   {l[1].ID, l[0].ID},
		"duplicate": {l[1].ID, l[1].ID, l[0].ID, l[2].ID},
		"foreign":   {l[1].ID, l[0].ID, uuid.New()},
	}
	for name, ordered := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.store.ReorderLists(ctx, f.owner.ID, f.board.ID, ordered)

			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrInvalidOrdering))
			assert.Equal(t, idsOf(l, listID), listOrder(t, f.repo, f.board.ID))
		})
	}
	assert.Equal(t, before, f.activityCount(t))
	assert.Empty(t, f.pub.kinds())
}

func TestArchiveList_CompactsActiveSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B", "C")

	require.NoError(t, f.store.ArchiveList(ctx, f.member.ID, l[1].ID))

	assert.Equal(t, []uuid.UUID{l[0].ID, l[2].ID}, listOrder(t, f.repo, f.board.ID))
	archived, err := f.repo.GetList(ctx, l[1].ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, 1, archived.Position)

	_, err = f.store.UpdateList(ctx, f.member.ID, l[1].ID, "again")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteList_RemovesCardsAndCompacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B")
	c := f.cards(t, l[0].ID, "one", "two")

	require.NoError(t, f.store.DeleteList(ctx, f.owner.ID, l[0].ID))

	assert.Equal(t, []uuid.UUID{l[1].ID}, listOrder(t, f.repo, f.board.ID))
	_, err := f.repo.GetCard(ctx, c[0].ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestReorderLists_ConcurrentCallsSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B", "C", "D", "E")
	ids := idsOf(l, listID)
	before := f.activityCount(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		perm := append([]uuid.UUID(nil), ids...)
		rand.New(rand.NewSource(int64(i))).Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.store.ReorderLists(ctx, f.member.ID, f.board.ID, perm)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, ids, listOrder(t, f.repo, f.board.ID))
	assert.Equal(t, before+workers, f.activityCount(t))
}
