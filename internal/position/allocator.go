// Package position computes positions for ordered siblings inside a container
// (lists on a board, cards in a list). Every function is pure: callers pass the
// sibling ids in their current order and persist the returned assignments.
package position

import (
	"github.com/google/uuid"

	"taskboard/internal/apperr"
)

// Assignment is the position an entity must have after a mutation.
type Assignment struct {
	ID       uuid.UUID
	Position int
}

// Append returns the position for a new last sibling.
func Append(positions []int) int {
	if len(positions) == 0 {
		return 0
	}
	max := positions[0]
	for _, p := range positions[1:] {
		if p > max {
			max = p
		}
	}
	return max + 1
}

// Reorder assigns 0..n-1 following ordered, which must be a permutation of current.
func Reorder(current, ordered []uuid.UUID) ([]Assignment, error) {
	known := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}

	seen := make(map[uuid.UUID]struct{}, len(ordered))
	for _, id := range ordered {
		if _, dup := seen[id]; dup {
			return nil, &apperr.OrderingError{Reason: apperr.ReasonDuplicateID, ID: id}
		}
		if _, ok := known[id]; !ok {
			return nil, &apperr.OrderingError{Reason: apperr.ReasonForeignID, ID: id}
		}
		seen[id] = struct{}{}
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			return nil, &apperr.OrderingError{Reason: apperr.ReasonMissingID, ID: id}
		}
	}

	return Compact(ordered), nil
}

// Compact renumbers siblings densely in their given order.
func Compact(siblings []uuid.UUID) []Assignment {
	out := make([]Assignment, len(siblings))
	for i, id := range siblings {
		out[i] = Assignment{ID: id, Position: i}
	}
	return out
}

// Insert moves item to index inside its own container. The index is clamped
// to [0, n-1].
func Insert(siblings []uuid.UUID, item uuid.UUID, index int) ([]Assignment, error) {
	rest, ok := without(siblings, item)
	if !ok {
		return nil, &apperr.OrderingError{Reason: apperr.ReasonForeignID, ID: item}
	}
	return Compact(insertAt(rest, item, index)), nil
}

// Move takes item out of source and inserts it into target at index, clamped
// to [0, len(target)]. Source keeps the relative order of what remains.
func Move(source, target []uuid.UUID, item uuid.UUID, index int) (src, dst []Assignment, err error) {
	rest, ok := without(source, item)
	if !ok {
		return nil, nil, &apperr.OrderingError{Reason: apperr.ReasonMissingID, ID: item}
	}
	if _, already := without(target, item); already {
		return nil, nil, &apperr.OrderingError{Reason: apperr.ReasonDuplicateID, ID: item}
	}
	return Compact(rest), Compact(insertAt(target, item, index)), nil
}

// Changed filters assignments down to those that differ from current.
func Changed(assignments []Assignment, current map[uuid.UUID]int) []Assignment {
	out := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if p, ok := current[a.ID]; ok && p == a.Position {
			continue
		}
		out = append(out, a)
	}
	return out
}

func without(ids []uuid.UUID, item uuid.UUID) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(ids))
	found := false
	for _, id := range ids {
		if id == item {
			found = true
			continue
		}
		out = append(out, id)
	}
	return out, found
}

func insertAt(ids []uuid.UUID, item uuid.UUID, index int) []uuid.UUID {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]uuid.UUID, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, item)
	return append(out, ids[index:]...)
}
