package position_test

import (
	"errors"
	"testing"

	"taskboard/internal/apperr"
	"taskboard/internal/position"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func order(assignments []position.Assignment) []uuid.UUID {
	out := make([]uuid.UUID, len(assignments))
	for _, a := range assignments {
		out[a.Position] = a.ID
	}
	return out
}

func TestAppend(t *testing.T) {
	assert.Equal(t, 0, position.Append(nil))
	assert.Equal(t, 3, position.Append([]int{0, 2, 1}))
	assert.Equal(t, 8, position.Append([]int{7}))
}

func TestReorder_AssignsDensePositionsInGivenOrder(t *testing.T) {
	current := ids(3)
	ordered := []uuid.UUID{current[2], current[0], current[1]}

	got, err := position.Reorder(current, ordered)

	require.NoError(t, err)
	assert.Equal(t, []position.Assignment{
		{ID: current[2], Position: 0},
		{ID: current[0], Position: 1},
		{ID: current[1], Position: 2},
	}, got)
}

func TestReorder_RejectsMismatchedSets(t *testing.T) {
	current := ids(3)
	foreign := uuid.New()

	cases := []struct {
		name    string
		ordered []uuid.UUID
		reason  apperr.OrderingReason
		id      uuid.UUID
	}{
		{"missing", []uuid.UUID{current[0], current[1]}, apperr.ReasonMissingID, current[2]},
		{"duplicate", []uuid.UUID{current[0], current[0], current[1], current[2]}, apperr.ReasonDuplicateID, current[0]},
		{"foreign", []uuid.UUID{current[0], current[1], foreign}, apperr.ReasonForeignID, foreign},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := position.Reorder(current, tc.ordered)

			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrInvalidOrdering))
			var oe *apperr.OrderingError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, tc.reason, oe.Reason)
			assert.Equal(t, tc.id, oe.ID)
		})
	}
}

func TestMove_AcrossContainers(t *testing.T) {
	a := ids(3)
	b := ids(2)

	src, dst, err := position.Move(a, b, a[1], 1)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a[0], a[2]}, order(src))
	assert.Equal(t, []uuid.UUID{b[0], a[1], b[1]}, order(dst))
}

func TestMove_ClampsIndex(t *testing.T) {
	a := ids(2)
	b := ids(2)

	_, dst, err := position.Move(a, b, a[0], 99)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b[0], b[1], a[0]}, order(dst))

	_, dst, err = position.Move(a, b, a[0], -4)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a[0], b[0], b[1]}, order(dst))
}

func TestMove_IntoEmptyContainer(t *testing.T) {
	a := ids(1)

	src, dst, err := position.Move(a, nil, a[0], 5)

	require.NoError(t, err)
	assert.Empty(t, src)
	assert.Equal(t, []position.Assignment{{ID: a[0], Position: 0}}, dst)
}

func TestMove_ItemNotInSource(t *testing.T) {
	_, _, err := position.Move(ids(2), ids(2), uuid.New(), 0)

	assert.True(t, errors.Is(err, apperr.ErrInvalidOrdering))
	assert.Equal(t, apperr.ReasonMissingID, apperr.Reason(err))
}

func TestInsert_WithinContainer(t *testing.T) {
	s := ids(4)

	got, err := position.Insert(s, s[0], 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{s[1], s[2], s[0], s[3]}, order(got))

	got, err = position.Insert(s, s[3], 100)
	require.NoError(t, err)
	assert.Equal(t, s, order(got))

	_, err = position.Insert(s, uuid.New(), 0)
	assert.True(t, errors.Is(err, apperr.ErrInvalidOrdering))
}

func TestChanged_SkipsUntouchedPositions(t *testing.T) {
	s := ids(3)
	current := map[uuid.UUID]int{s[0]: 0, s[1]: 2, s[2]: 1}

	got := position.Changed(position.Compact(s), current)

	assert.Equal(t, []position.Assignment{{ID: s[1], Position: 1}, {ID: s[2], Position: 2}}, got)
}
