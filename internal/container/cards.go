package container

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/activity"
	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/position"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
)

// CreateCard appends a card to the end of the list.
func (s *Store) CreateCard(ctx context.Context, actorID, listID uuid.UUID, in CardInput) (*model.Card, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}

	var card *model.Card
	err = s.mutate(ctx, "CreateCard", actorID, func(ctx context.Context, u *unit) error {
		_, board, err := listInBoard(ctx, u.tx, u.actor.ID, listID, memberAccess, false)
		if err != nil {
			return err
		}
		list, err := lockList(ctx, u.tx, listID)
		if err != nil {
			return err
		}
		siblings, err := u.tx.CardsByList(ctx, list.ID, false)
		if err != nil {
			return err
		}
		positions := make([]int, len(siblings))
		for i, c := range siblings {
			positions[i] = c.Position
		}

		card = &model.Card{
			ID:          uuid.New(),
			ListID:      list.ID,
			Title:       title,
			Description: in.Description,
			Position:    position.Append(positions),
			DueDate:     in.DueDate,
			Labels:      append([]string{}, in.Labels...),
			Attachments: []string{},
		}
		if err := u.tx.CreateCard(ctx, card); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindCardCreated, cardPayload(card, board.ID))
		return u.record(ctx, s.recorder, board.ID, model.ActivityCreate,
			activity.CreatedCard(u.actor.Username, card.Title, list.Title), cardPayload(card, board.ID))
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateCard edits descriptive fields. Position and list never change here.
func (s *Store) UpdateCard(ctx context.Context, actorID, cardID uuid.UUID, patch CardPatch) (*model.Card, error) {
	var card *model.Card
	err := s.mutate(ctx, "UpdateCard", actorID, func(ctx context.Context, u *unit) error {
		var (
			board *model.Board
			err   error
		)
		var list *model.List
		card, list, board, err = cardInBoard(ctx, u.tx, u.actor.ID, cardID, memberAccess, false)
		if err != nil {
			return err
		}
		if list, err = lockList(ctx, u.tx, list.ID); err != nil {
			return err
		}
		if card, err = relock(ctx, u.tx, card.ID, list.ID); err != nil {
			return err
		}
		if patch.Title != nil {
			if card.Title, err = requireText("title", *patch.Title); err != nil {
				return err
			}
		}
		if patch.Description != nil {
			card.Description = *patch.Description
		}
		if patch.DueDate != nil {
			card.DueDate = patch.DueDate
		}
		if patch.ClearDueDate {
			card.DueDate = nil
		}
		if patch.Labels != nil {
			card.Labels = append([]string{}, (*patch.Labels)...)
		}
		if patch.Attachments != nil {
			card.Attachments = append([]string{}, (*patch.Attachments)...)
		}
		if err := u.tx.UpdateCard(ctx, card); err != nil {
			return err
		}
		if patch.MemberIDs != nil {
			if err := s.setCardMembers(ctx, u.tx, card.ID, board.ID, *patch.MemberIDs); err != nil {
				return err
			}
		}
		u.emit(board.ID, realtime.KindCardUpdated, cardPayload(card, board.ID))
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.UpdatedCard(u.actor.Username, card.Title), cardPayload(card, board.ID))
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Store) setCardMembers(ctx context.Context, tx repository.Tx, cardID, boardID uuid.UUID, userIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	unique := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ok, err := tx.IsBoardMember(ctx, id, boardID)
		if err != nil {
			return err
		}
		if !ok {
			return goerr.Wrap(apperr.ErrValidation, "card members must be board members",
				goerr.V("user_id", id), goerr.V("board_id", boardID))
		}
		unique = append(unique, id)
	}
	return tx.SetCardMembers(ctx, cardID, unique)
}

// ReorderCards sets the list's active cards to exactly the given order.
func (s *Store) ReorderCards(ctx context.Context, actorID, listID uuid.UUID, ordered []uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	err := s.mutate(ctx, "ReorderCards", actorID, func(ctx context.Context, u *unit) error {
		_, board, err := listInBoard(ctx, u.tx, u.actor.ID, listID, memberAccess, false)
		if err != nil {
			return err
		}
		list, err := lockList(ctx, u.tx, listID)
		if err != nil {
			return err
		}
		current, err := u.tx.CardsByList(ctx, list.ID, false)
		if err != nil {
			return err
		}
		ids, positions := cardIDs(current)
		assignments, err := position.Reorder(ids, ordered)
		if err != nil {
			return err
		}
		if err := u.tx.SetCardPositions(ctx, position.Changed(assignments, positions)); err != nil {
			return err
		}
		if cards, err = u.tx.CardsByList(ctx, list.ID, false); err != nil {
			return err
		}

		payload := map[string]any{"list_id": list.ID.String(), "board_id": board.ID.String(), "cards": orderPayload(assignments)}
		u.emit(board.ID, realtime.KindCardsReordered, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityMove,
			activity.ReorderedCards(u.actor.Username, list.Title),
			map[string]any{"list_id": list.ID.String(), "card_ids": stringIDs(ordered)})
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// MoveCard places the card at an index of the destination list, which may be
// its own list. Indexes past either end are clamped.
func (s *Store) MoveCard(ctx context.Context, actorID, cardID uuid.UUID, in MoveInput) (*model.Card, error) {
	index := 0
	if in.Position != nil {
		index = *in.Position
	}

	var card *model.Card
	err := s.mutate(ctx, "MoveCard", actorID, func(ctx context.Context, u *unit) error {
		found, source, sourceBoard, err := cardInBoard(ctx, u.tx, u.actor.ID, cardID, memberAccess, false)
		if err != nil {
			return err
		}
		if in.DestinationListID == nil || *in.DestinationListID == source.ID {
			card, err = s.reorderCard(ctx, u, found, source, sourceBoard, index)
			return err
		}

		target, targetBoard, err := listInBoard(ctx, u.tx, u.actor.ID, *in.DestinationListID, memberAccess, false)
		if err != nil {
			return err
		}
		card, err = s.moveAcross(ctx, u, found, source, sourceBoard, target, targetBoard, index)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// relock re-reads the card once its list lock is held and fails if another
// transaction moved it in the meantime.
func relock(ctx context.Context, tx repository.Tx, cardID, listID uuid.UUID) (*model.Card, error) {
	card, err := tx.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Archived {
		return nil, goerr.Wrap(apperr.ErrNotFound, "card is archived", goerr.V("card_id", cardID))
	}
	if card.ListID != listID {
		return nil, goerr.Wrap(apperr.ErrTransientStore, "card moved concurrently", goerr.V("card_id", cardID))
	}
	return card, nil
}

func (s *Store) reorderCard(ctx context.Context, u *unit, card *model.Card, list *model.List, board *model.Board, index int) (*model.Card, error) {
	list, err := lockList(ctx, u.tx, list.ID)
	if err != nil {
		return nil, err
	}
	if card, err = relock(ctx, u.tx, card.ID, list.ID); err != nil {
		return nil, err
	}
	siblings, err := u.tx.CardsByList(ctx, list.ID, false)
	if err != nil {
		return nil, err
	}
	ids, positions := cardIDs(siblings)
	assignments, err := position.Insert(ids, card.ID, index)
	if err != nil {
		return nil, err
	}
	if err := u.tx.SetCardPositions(ctx, position.Changed(assignments, positions)); err != nil {
		return nil, err
	}
	card.Position = positionOf(assignments, card.ID)

	u.emit(board.ID, realtime.KindCardMoved, cardPayload(card, board.ID))
	err = u.record(ctx, s.recorder, board.ID, model.ActivityMove,
		activity.ReorderedCard(u.actor.Username, card.Title),
		map[string]any{"card_id": card.ID.String(), "list_id": list.ID.String(), "position": card.Position})
	return card, err
}

func (s *Store) moveAcross(ctx context.Context, u *unit, card *model.Card, source *model.List, sourceBoard *model.Board, target *model.List, targetBoard *model.Board, index int) (*model.Card, error) {
	if err := u.tx.LockLists(ctx, source.ID, target.ID); err != nil {
		return nil, err
	}
	var err error
	if source, err = lockList(ctx, u.tx, source.ID); err != nil {
		return nil, err
	}
	if target, err = lockList(ctx, u.tx, target.ID); err != nil {
		return nil, err
	}
	if card, err = relock(ctx, u.tx, card.ID, source.ID); err != nil {
		return nil, err
	}

	sourceCards, err := u.tx.CardsByList(ctx, source.ID, false)
	if err != nil {
		return nil, err
	}
	targetCards, err := u.tx.CardsByList(ctx, target.ID, false)
	if err != nil {
		return nil, err
	}
	sourceIDs, sourcePositions := cardIDs(sourceCards)
	targetIDs, targetPositions := cardIDs(targetCards)
	src, dst, err := position.Move(sourceIDs, targetIDs, card.ID, index)
	if err != nil {
		return nil, err
	}

	if err := u.tx.SetCardList(ctx, card.ID, target.ID); err != nil {
		return nil, err
	}
	if err := u.tx.SetCardPositions(ctx, position.Changed(src, sourcePositions)); err != nil {
		return nil, err
	}
	if err := u.tx.SetCardPositions(ctx, position.Changed(dst, targetPositions)); err != nil {
		return nil, err
	}
	card.ListID = target.ID
	card.Position = positionOf(dst, card.ID)

	u.emit(sourceBoard.ID, realtime.KindCardRemoved, map[string]any{
		"id":       card.ID.String(),
		"list_id":  source.ID.String(),
		"board_id": sourceBoard.ID.String(),
		"cards":    orderPayload(src),
	})
	u.emit(targetBoard.ID, realtime.KindCardAdded, cardPayload(card, targetBoard.ID))
	err = u.record(ctx, s.recorder, targetBoard.ID, model.ActivityMove,
		activity.MovedCard(u.actor.Username, card.Title, source.Title, target.Title),
		map[string]any{
			"card_id":      card.ID.String(),
			"from_list_id": source.ID.String(),
			"to_list_id":   target.ID.String(),
			"position":     card.Position,
		})
	return card, err
}

// ArchiveCard hides the card; it keeps its stored position and the list's
// remaining active cards close the gap.
func (s *Store) ArchiveCard(ctx context.Context, actorID, cardID uuid.UUID) error {
	return s.mutate(ctx, "ArchiveCard", actorID, func(ctx context.Context, u *unit) error {
		card, list, board, err := cardInBoard(ctx, u.tx, u.actor.ID, cardID, memberAccess, false)
		if err != nil {
			return err
		}
		if list, err = lockList(ctx, u.tx, list.ID); err != nil {
			return err
		}
		if card, err = relock(ctx, u.tx, card.ID, list.ID); err != nil {
			return err
		}
		if err := u.tx.ArchiveCard(ctx, card.ID); err != nil {
			return err
		}
		card.Archived = true
		if err := compactCards(ctx, u.tx, list.ID); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindCardArchived, cardPayload(card, board.ID))
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.ArchivedCard(u.actor.Username, card.Title), cardPayload(card, board.ID))
	})
}

// DeleteCard removes the card with its comments, checklists and members.
func (s *Store) DeleteCard(ctx context.Context, actorID, cardID uuid.UUID) error {
	return s.mutate(ctx, "DeleteCard", actorID, func(ctx context.Context, u *unit) error {
		card, list, board, err := cardInBoard(ctx, u.tx, u.actor.ID, cardID, memberAccess, true)
		if err != nil {
			return err
		}
		if err := u.tx.LockLists(ctx, list.ID); err != nil {
			return err
		}
		current, err := u.tx.GetCard(ctx, card.ID)
		if err != nil {
			return err
		}
		if current.ListID != list.ID {
			return goerr.Wrap(apperr.ErrTransientStore, "card moved concurrently", goerr.V("card_id", card.ID))
		}
		if err := u.tx.DeleteCard(ctx, card.ID); err != nil {
			return err
		}
		if err := compactCards(ctx, u.tx, list.ID); err != nil {
			return err
		}
		u.emit(board.ID, realtime.KindCardDeleted, cardPayload(card, board.ID))
		return u.record(ctx, s.recorder, board.ID, model.ActivityDelete,
			activity.DeletedCard(u.actor.Username, card.Title), cardPayload(card, board.ID))
	})
}

func compactCards(ctx context.Context, tx repository.Tx, listID uuid.UUID) error {
	remaining, err := tx.CardsByList(ctx, listID, false)
	if err != nil {
		return err
	}
	ids, positions := cardIDs(remaining)
	return tx.SetCardPositions(ctx, position.Changed(position.Compact(ids), positions))
}
