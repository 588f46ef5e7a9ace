package realtime_test

import (
	"context"
	"testing"

	"taskboard/internal/model"
	"taskboard/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fakeSub struct {
	id     string
	frames chan []byte
}

func newFakeSub(buffer int) *fakeSub {
	return &fakeSub{id: uuid.NewString(), frames: make(chan []byte, buffer)}
}

func (f *fakeSub) ID() string { return f.id }

func (f *fakeSub) Deliver(frame []byte) bool {
	select {
	case f.frames <- frame:
		return true
	default:
		return false
	}
}

func nullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

type fixture struct {
	store    *memory.Store
	owner    *model.User
	member   *model.User
	stranger *model.User
	board    model.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	f := &fixture{store: store}
	f.owner = &model.User{Username: "owner"}
	f.member = &model.User{Username: "member"}
	f.stranger = &model.User{Username: "stranger"}
	for _, u := range []*model.User{f.owner, f.member, f.stranger} {
		require.NoError(t, store.CreateUser(ctx, u))
	}

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	f.board = model.Board{Title: "Sprint", OwnerID: f.owner.ID}
	require.NoError(t, tx.CreateBoard(ctx, &f.board))
	require.NoError(t, tx.AddBoardMember(ctx, f.board.ID, f.member.ID))
	require.NoError(t, tx.Commit())
	return f
}
