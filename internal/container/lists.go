package container

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/activity"
	"taskboard/internal/model"
	"taskboard/internal/position"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
)

// CreateList appends a list to the end of the board.
func (s *Store) CreateList(ctx context.Context, actorID, boardID uuid.UUID, title string) (*model.List, error) {
	title, err := requireText("title", title)
	if err != nil {
		return nil, err
	}

	var list *model.List
	err = s.mutate(ctx, "CreateList", actorID, func(ctx context.Context, u *unit) error {
		board, err := activeBoard(ctx, u.tx, u.actor.ID, boardID, memberAccess)
		if err != nil {
			return err
		}
		if board, err = lockBoard(ctx, u.tx, board.ID); err != nil {
			return err
		}
		siblings, err := u.tx.ListsByBoard(ctx, board.ID, false)
		if err != nil {
			return err
		}
		positions := make([]int, len(siblings))
		for i, l := range siblings {
			positions[i] = l.Position
		}

		list = &model.List{
			ID:       uuid.New(),
			BoardID:  board.ID,
			Title:    title,
			Position: position.Append(positions),
		}
		if err := u.tx.CreateList(ctx, list); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindListCreated, listPayload(list))
		return u.record(ctx, s.recorder, board.ID, model.ActivityCreate,
			activity.CreatedList(u.actor.Username, list.Title), listPayload(list))
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) UpdateList(ctx context.Context, actorID, listID uuid.UUID, title string) (*model.List, error) {
	title, err := requireText("title", title)
	if err != nil {
		return nil, err
	}

	var list *model.List
	err = s.mutate(ctx, "UpdateList", actorID, func(ctx context.Context, u *unit) error {
		var board *model.Board
		list, board, err = listInBoard(ctx, u.tx, u.actor.ID, listID, memberAccess, false)
		if err != nil {
			return err
		}
		if board, err = lockBoard(ctx, u.tx, board.ID); err != nil {
			return err
		}
		if list, err = lockList(ctx, u.tx, list.ID); err != nil {
			return err
		}
		list.Title = title
		if err := u.tx.UpdateList(ctx, list); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindListUpdated, listPayload(list))
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.UpdatedList(u.actor.Username, list.Title), listPayload(list))
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ReorderLists sets the board's active lists to exactly the given order. The
// ids must be a permutation of the active lists; otherwise nothing changes.
func (s *Store) ReorderLists(ctx context.Context, actorID, boardID uuid.UUID, ordered []uuid.UUID) ([]model.List, error) {
	var lists []model.List
	err := s.mutate(ctx, "ReorderLists", actorID, func(ctx context.Context, u *unit) error {
		board, err := activeBoard(ctx, u.tx, u.actor.ID, boardID, memberAccess)
		if err != nil {
			return err
		}
		if board, err = lockBoard(ctx, u.tx, board.ID); err != nil {
			return err
		}
		current, err := u.tx.ListsByBoard(ctx, board.ID, false)
		if err != nil {
			return err
		}
		ids, positions := listIDs(current)
		assignments, err := position.Reorder(ids, ordered)
		if err != nil {
			return err
		}
		if err := u.tx.SetListPositions(ctx, position.Changed(assignments, positions)); err != nil {
			return err
		}
		if lists, err = u.tx.ListsByBoard(ctx, board.ID, false); err != nil {
			return err
		}

		payload := map[string]any{"board_id": board.ID.String(), "lists": orderPayload(assignments)}
		u.emit(board.ID, realtime.KindListsReordered, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityMove,
			activity.ReorderedLists(u.actor.Username), map[string]any{"list_ids": stringIDs(ordered)})
	})
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// ArchiveList hides the list. It keeps its stored position; the remaining
// active lists close the gap.
func (s *Store) ArchiveList(ctx context.Context, actorID, listID uuid.UUID) error {
	return s.mutate(ctx, "ArchiveList", actorID, func(ctx context.Context, u *unit) error {
		list, board, err := listInBoard(ctx, u.tx, u.actor.ID, listID, memberAccess, false)
		if err != nil {
			return err
		}
		if board, err = lockBoard(ctx, u.tx, board.ID); err != nil {
			return err
		}
		if list, err = lockList(ctx, u.tx, list.ID); err != nil {
			return err
		}
		if err := u.tx.ArchiveList(ctx, list.ID); err != nil {
			return err
		}
		list.Archived = true
		if err := compactLists(ctx, u.tx, board.ID); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindListArchived, listPayload(list))
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.ArchivedList(u.actor.Username, list.Title), listPayload(list))
	})
}

// DeleteList removes the list and its cards for good.
func (s *Store) DeleteList(ctx context.Context, actorID, listID uuid.UUID) error {
	return s.mutate(ctx, "DeleteList", actorID, func(ctx context.Context, u *unit) error {
		list, board, err := listInBoard(ctx, u.tx, u.actor.ID, listID, memberAccess, true)
		if err != nil {
			return err
		}
		if err := u.tx.LockBoard(ctx, board.ID); err != nil {
			return err
		}
		if err := u.tx.LockLists(ctx, list.ID); err != nil {
			return err
		}
		if err := u.tx.DeleteList(ctx, list.ID); err != nil {
			return err
		}
		if err := compactLists(ctx, u.tx, board.ID); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindListDeleted, listPayload(list))
		return u.record(ctx, s.recorder, board.ID, model.ActivityDelete,
			activity.DeletedList(u.actor.Username, list.Title), listPayload(list))
	})
}

func compactLists(ctx context.Context, tx repository.Tx, boardID uuid.UUID) error {
	remaining, err := tx.ListsByBoard(ctx, boardID, false)
	if err != nil {
		return err
	}
	ids, positions := listIDs(remaining)
	return tx.SetListPositions(ctx, position.Changed(position.Compact(ids), positions))
}
