package container

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/activity"
	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/realtime"
)

// CreateBoard creates a board owned by the actor, who also becomes a member.
func (s *Store) CreateBoard(ctx context.Context, actorID uuid.UUID, in BoardInput) (*model.Board, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}
	color := in.BackgroundColor
	if color == "" {
		color = model.DefaultBoardColor
	}
	if err := checkColor(color); err != nil {
		return nil, err
	}

	var board *model.Board
	err = s.mutate(ctx, "CreateBoard", actorID, func(ctx context.Context, u *unit) error {
		board = &model.Board{
			ID:              uuid.New(),
			Title:           title,
			Description:     in.Description,
			BackgroundColor: color,
			OwnerID:         u.actor.ID,
		}
		if err := u.tx.CreateBoard(ctx, board); err != nil {
			return err
		}
		if err := u.tx.AddBoardMember(ctx, board.ID, u.actor.ID); err != nil {
			return err
		}
		return u.record(ctx, s.recorder, board.ID, model.ActivityCreate,
			activity.CreatedBoard(u.actor.Username, board.Title), boardPayload(board))
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

func (s *Store) UpdateBoard(ctx context.Context, actorID, boardID uuid.UUID, patch BoardPatch) (*model.Board, error) {
	var board *model.Board
	err := s.mutate(ctx, "UpdateBoard", actorID, func(ctx context.Context, u *unit) error {
		var err error
		board, err = activeBoard(ctx, u.tx, u.actor.ID, boardID, ownerAccess)
		if err != nil {
			return err
		}
		if board, err = lockBoard(ctx, u.tx, board.ID); err != nil {
			return err
		}
		if patch.Title != nil {
			if board.Title, err = requireText("title", *patch.Title); err != nil {
				return err
			}
		}
		if patch.Description != nil {
			board.Description = *patch.Description
		}
		if patch.BackgroundColor != nil {
			if err := checkColor(*patch.BackgroundColor); err != nil {
				return err
			}
			board.BackgroundColor = *patch.BackgroundColor
		}
		if err := u.tx.UpdateBoard(ctx, board); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindBoardUpdated, boardPayload(board))
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.UpdatedBoard(u.actor.Username, board.Title), boardPayload(board))
	})
	if err != nil {
		return nil, err
	}
	return board, nil
}

// ArchiveBoard hides the board from active queries. Nothing is removed.
func (s *Store) ArchiveBoard(ctx context.Context, actorID, boardID uuid.UUID) error {
	return s.mutate(ctx, "ArchiveBoard", actorID, func(ctx context.Context, u *unit) error {
		board, err := activeBoard(ctx, u.tx, u.actor.ID, boardID, ownerAccess)
		if err != nil {
			return err
		}
		if board, err = lockBoard(ctx, u.tx, board.ID); err != nil {
			return err
		}
		if err := u.tx.ArchiveBoard(ctx, board.ID); err != nil {
			return err
		}
		board.Archived = true
		u.emit(board.ID, realtime.KindBoardArchived, boardPayload(board))
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.ArchivedBoard(u.actor.Username, board.Title), boardPayload(board))
	})
}

// DeleteBoard removes the board with all of its lists, cards, memberships and
// history. The history goes with it, so no activity survives this operation.
func (s *Store) DeleteBoard(ctx context.Context, actorID, boardID uuid.UUID) error {
	return s.mutate(ctx, "DeleteBoard", actorID, func(ctx context.Context, u *unit) error {
		board, err := u.tx.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		if board.OwnerID != u.actor.ID {
			return goerr.Wrap(apperr.ErrForbidden, "only the board owner may delete it",
				goerr.V("board_id", boardID))
		}
		if err := u.tx.LockBoard(ctx, boardID); err != nil {
			return err
		}
		if err := u.tx.DeleteBoard(ctx, boardID); err != nil {
			return err
		}
		u.emit(boardID, realtime.KindBoardDeleted, map[string]any{"id": boardID.String()})
		return nil
	})
}

// AddMember grants a user, found by username, access to the board.
func (s *Store) AddMember(ctx context.Context, actorID, boardID uuid.UUID, username string) (*model.User, error) {
	var member *model.User
	err := s.mutate(ctx, "AddMember", actorID, func(ctx context.Context, u *unit) error {
		board, err := activeBoard(ctx, u.tx, u.actor.ID, boardID, ownerAccess)
		if err != nil {
			return err
		}
		member, err = u.tx.FindUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if member == nil {
			return goerr.Wrap(apperr.ErrNotFound, "user not found", goerr.V("username", username))
		}
		if err := u.tx.AddBoardMember(ctx, board.ID, member.ID); err != nil {
			return err
		}
		payload := map[string]any{"board_id": board.ID.String(), "user_id": member.ID.String(), "username": member.Username}
		u.emit(board.ID, realtime.KindMemberAdded, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.AddedMember(u.actor.Username, member.Username), payload)
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *Store) RemoveMember(ctx context.Context, actorID, boardID, userID uuid.UUID) error {
	return s.mutate(ctx, "RemoveMember", actorID, func(ctx context.Context, u *unit) error {
		board, err := activeBoard(ctx, u.tx, u.actor.ID, boardID, ownerAccess)
		if err != nil {
			return err
		}
		if userID == board.OwnerID {
			return goerr.Wrap(apperr.ErrValidation, "the owner cannot be removed", goerr.V("board_id", boardID))
		}
		member, err := u.tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		ok, err := u.tx.IsBoardMember(ctx, userID, boardID)
		if err != nil {
			return err
		}
		if !ok {
			return goerr.Wrap(apperr.ErrNotFound, "user is not a member",
				goerr.V("board_id", boardID), goerr.V("user_id", userID))
		}
		if err := u.tx.RemoveBoardMember(ctx, boardID, userID); err != nil {
			return err
		}
		payload := map[string]any{"board_id": board.ID.String(), "user_id": member.ID.String(), "username": member.Username}
		u.emit(board.ID, realtime.KindMemberRemoved, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.RemovedMember(u.actor.Username, member.Username), payload)
	})
}
