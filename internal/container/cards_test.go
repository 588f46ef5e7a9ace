package container_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/apperr"
	"taskboard/internal/container"
	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveCard_AcrossLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B")
	a := f.cards(t, l[0].ID, "a0", "a1", "a2")
	b := f.cards(t, l[1].ID, "b0", "b1")
	before := f.activityCount(t)
	f.pub.reset()

	moved, err := f.store.MoveCard(ctx, f.member.ID, a[1].ID, container.MoveInput{
		DestinationListID: &l[1].ID,
		Position:          intPtr(1),
	})

	require.NoError(t, err)
	assert.Equal(t, l[1].ID, moved.ListID)
	assert.Equal(t, 1, moved.Position)
	assert.Equal(t, []uuid.UUID{a[0].ID, a[2].ID}, cardOrder(t, f.repo, l[0].ID))
	assert.Equal(t, []uuid.UUID{b[0].ID, a[1].ID, b[1].ID}, cardOrder(t, f.repo, l[1].ID))
	assert.Equal(t, before+1, f.activityCount(t))
	assert.Equal(t, []string{realtime.KindCardRemoved, realtime.KindCardAdded}, f.pub.kinds())

	acts, err := f.store.Activities(ctx, f.member.ID, f.board.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ActivityMove, acts[0].Kind)
	assert.Equal(t, `member moved card "a1" from "A" to "B"`, acts[0].Description)
}

func TestMoveCard_WithinListDefaultsToTop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A")
	c := f.cards(t, l[0].ID, "c0", "c1", "c2")
	f.pub.reset()

	moved, err := f.store.MoveCard(ctx, f.owner.ID, c[2].ID, container.MoveInput{})

	require.NoError(t, err)
	assert.Equal(t, 0, moved.Position)
	assert.Equal(t, []uuid.UUID{c[2].ID, c[0].ID, c[1].ID}, cardOrder(t, f.repo, l[0].ID))
	assert.Equal(t, []string{realtime.KindCardMoved}, f.pub.kinds())
}

func TestMoveCard_ClampsPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B")
	a := f.cards(t, l[0].ID, "a0")
	b := f.cards(t, l[1].ID, "b0", "b1")

	moved, err := f.store.MoveCard(ctx, f.owner.ID, a[0].ID, container.MoveInput{
		DestinationListID: &l[1].ID,
		Position:          intPtr(42),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, moved.Position)
	assert.Empty(t, cardOrder(t, f.repo, l[0].ID))
	assert.Equal(t, []uuid.UUID{b[0].ID, b[1].ID, a[0].ID}, cardOrder(t, f.repo, l[1].ID))
}

func TestMoveCard_ToForeignBoardRequiresMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A")
	c := f.cards(t, l[0].ID, "c0")

	other, err := f.store.CreateBoard(ctx, f.stranger.ID, container.BoardInput{Title: "Private"})
	require.NoError(t, err)
	foreign, err := f.store.CreateList(ctx, f.stranger.ID, other.ID, "Inbox")
	require.NoError(t, err)
	before := f.activityCount(t)
	f.pub.reset()

	_, err = f.store.MoveCard(ctx, f.member.ID, c[0].ID, container.MoveInput{DestinationListID: &foreign.ID})

	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	assert.Equal(t, []uuid.UUID{c[0].ID}, cardOrder(t, f.repo, l[0].ID))
	assert.Equal(t, before, f.activityCount(t))
	assert.Empty(t, f.pub.kinds())
}

func TestMoveCard_AcrossBoardsNotifiesBoth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A")
	c := f.cards(t, l[0].ID, "c0")
	other, err := f.store.CreateBoard(ctx, f.owner.ID, container.BoardInput{Title: "Next"})
	require.NoError(t, err)
	target, err := f.store.CreateList(ctx, f.owner.ID, other.ID, "Inbox")
	require.NoError(t, err)
	f.pub.reset()

	_, err = f.store.MoveCard(ctx, f.owner.ID, c[0].ID, container.MoveInput{DestinationListID: &target.ID})

	require.NoError(t, err)
	require.Len(t, f.pub.events, 2)
	assert.Equal(t, f.board.ID, f.pub.events[0].boardID)
	assert.Equal(t, other.ID, f.pub.events[1].boardID)
}

func TestArchiveCard_KeepsPositionAndCompactsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A")
	c := f.cards(t, l[0].ID, "c0", "c1", "c2")

	require.NoError(t, f.store.ArchiveCard(ctx, f.member.ID, c[0].ID))

	assert.Equal(t, []uuid.UUID{c[1].ID, c[2].ID}, cardOrder(t, f.repo, l[0].ID))
	archived, err := f.repo.GetCard(ctx, c[0].ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, 0, archived.Position)

	_, err = f.store.MoveCard(ctx, f.member.ID, c[0].ID, container.MoveInput{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteCard_PublishesAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A")
	c := f.cards(t, l[0].ID, "c0", "c1")
	f.pub.reset()

	require.NoError(t, f.store.DeleteCard(ctx, f.member.ID, c[0].ID))

	assert.Equal(t, []uuid.UUID{c[1].ID}, cardOrder(t, f.repo, l[0].ID))
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.KindCardDeleted, f.pub.events[0].event.Kind)
	assert.True(t, f.pub.events[0].committed)
}

func TestCreateCard_PublishesCommittedCard(t *testing.T) {
	f := newFixture(t)
	l := f.lists(t, "A")
	f.pub.reset()

	f.cards(t, l[0].ID, "c0")

	require.Len(t, f.pub.events, 1)
	assert.True(t, f.pub.events[0].committed)
	assert.Equal(t, "owner", f.pub.events[0].event.ActorUsername)
}

func TestReorderCards_DenseAfterMixedSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A", "B")
	c := f.cards(t, l[0].ID, "c0", "c1", "c2", "c3")

	_, err := f.store.ReorderCards(ctx, f.owner.ID, l[0].ID, []uuid.UUID{c[3].ID, c[2].ID, c[1].ID, c[0].ID})
	require.NoError(t, err)
	require.NoError(t, f.store.ArchiveCard(ctx, f.owner.ID, c[2].ID))
	_, err = f.store.MoveCard(ctx, f.owner.ID, c[3].ID, container.MoveInput{DestinationListID: &l[1].ID})
	require.NoError(t, err)
	extra := f.cards(t, l[0].ID, "c4")

	assert.Equal(t, []uuid.UUID{c[1].ID, c[0].ID, extra[0].ID}, cardOrder(t, f.repo, l[0].ID))
	assert.Equal(t, []uuid.UUID{c[3].ID}, cardOrder(t, f.repo, l[1].ID))

	_, err = f.store.ReorderCards(ctx, f.owner.ID, l[0].ID, []uuid.UUID{c[0].ID, c[1].ID})
	assert.True(t, errors.Is(err, apperr.ErrInvalidOrdering))
}

func TestUpdateCard_MembersMustBelongToBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.lists(t, "A")
	c := f.cards(t, l[0].ID, "c0")

	strangers := []uuid.UUID{f.stranger.ID}
	_, err := f.store.UpdateCard(ctx, f.owner.ID, c[0].ID, container.CardPatch{MemberIDs: &strangers})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	title := "renamed"
	labels := []string{"bug"}
	members := []uuid.UUID{f.member.ID, f.member.ID}
	got, err := f.store.UpdateCard(ctx, f.owner.ID, c[0].ID, container.CardPatch{
		Title:     &title,
		Labels:    &labels,
		MemberIDs: &members,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, 0, got.Position)

	view, err := f.store.Card(ctx, f.member.ID, c[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.member.ID}, view.MemberIDs)
	assert.Equal(t, []string{"bug"}, []string(view.Labels))
}
