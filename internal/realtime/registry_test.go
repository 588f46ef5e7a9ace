package realtime_test

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ZeroAdmissionIsRejected(t *testing.T) {
	registry := realtime.NewRegistry()
	sub := newFakeSub(1)

	err := registry.Join(realtime.Admission{}, sub)

	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	assert.Zero(t, registry.Count(uuid.Nil))
}

func TestAdmit_MembersAndOwnerPass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, user := range []*model.User{f.owner, f.member} {
		adm, err := realtime.Admit(ctx, f.store, f.board.ID, user)
		require.NoError(t, err, user.Username)
		assert.Equal(t, f.board.ID, adm.BoardID())
		assert.Equal(t, user.ID, adm.UserID())
	}
}

func TestAdmit_StrangerAndUnknownBoardFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := realtime.Admit(ctx, f.store, f.board.ID, f.stranger)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = realtime.Admit(ctx, f.store, uuid.New(), f.owner)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = realtime.Admit(ctx, f.store, f.board.ID, nil)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestRegistry_JoinLeaveAndSnapshot(t *testing.T) {
	// Arrange
	f := newFixture(t)
	registry := realtime.NewRegistry()
	adm, err := realtime.Admit(context.Background(), f.store, f.board.ID, f.member)
	require.NoError(t, err)
	a, b := newFakeSub(1), newFakeSub(1)

	// Act
	require.NoError(t, registry.Join(adm, a))
	require.NoError(t, registry.Join(adm, b))
	snapshot := registry.Members(f.board.ID)
	registry.Leave(f.board.ID, a.ID())

	// Assert
	assert.Len(t, snapshot, 2)
	assert.Equal(t, 1, registry.Count(f.board.ID))
	registry.Leave(f.board.ID, b.ID())
	registry.Leave(f.board.ID, b.ID())
	assert.Zero(t, registry.Count(f.board.ID))
	assert.Empty(t, registry.Members(f.board.ID))
}
