package container

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/activity"
	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/position"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
)

func (s *Store) AddComment(ctx context.Context, actorID, cardID uuid.UUID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "text is required", goerr.V("field", "text"))
	}

	var comment *model.Comment
	err := s.mutate(ctx, "AddComment", actorID, func(ctx context.Context, u *unit) error {
		card, _, board, err := cardInBoard(ctx, u.tx, u.actor.ID, cardID, memberAccess, false)
		if err != nil {
			return err
		}
		author := u.actor.ID
		comment = &model.Comment{ID: uuid.New(), CardID: card.ID, AuthorID: &author, Text: text}
		if err := u.tx.CreateComment(ctx, comment); err != nil {
			return err
		}
		payload := commentPayload(comment, card.ID, board.ID, u.actor.Username)
		u.emit(board.ID, realtime.KindCommentAdded, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityComment,
			activity.Commented(u.actor.Username, card.Title), payload)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateChecklist adds a checklist to a card; an empty title becomes "Checklist".
func (s *Store) CreateChecklist(ctx context.Context, actorID, cardID uuid.UUID, title string) (*model.Checklist, error) {
	if strings.TrimSpace(title) == "" {
		title = model.DefaultChecklistTitle
	}
	title, err := requireText("title", title)
	if err != nil {
		return nil, err
	}

	var checklist *model.Checklist
	err = s.mutate(ctx, "CreateChecklist", actorID, func(ctx context.Context, u *unit) error {
		card, _, board, err := cardInBoard(ctx, u.tx, u.actor.ID, cardID, memberAccess, false)
		if err != nil {
			return err
		}
		checklist = &model.Checklist{ID: uuid.New(), CardID: card.ID, Title: title}
		if err := u.tx.CreateChecklist(ctx, checklist); err != nil {
			return err
		}
		payload := map[string]any{
			"id":       checklist.ID.String(),
			"card_id":  card.ID.String(),
			"board_id": board.ID.String(),
			"title":    checklist.Title,
		}
		u.emit(board.ID, realtime.KindChecklistCreated, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityCreate,
			activity.AddedChecklist(u.actor.Username, checklist.Title, card.Title), payload)
	})
	if err != nil {
		return nil, err
	}
	return checklist, nil
}

// AddChecklistItem appends an item to the checklist.
func (s *Store) AddChecklistItem(ctx context.Context, actorID, checklistID uuid.UUID, text string) (*model.ChecklistItem, error) {
	text, err := requireText("text", text)
	if err != nil {
		return nil, err
	}

	var item *model.ChecklistItem
	err = s.mutate(ctx, "AddChecklistItem", actorID, func(ctx context.Context, u *unit) error {
		checklist, err := u.tx.GetChecklist(ctx, checklistID)
		if err != nil {
			return err
		}
		card, _, board, err := cardInBoard(ctx, u.tx, u.actor.ID, checklist.CardID, memberAccess, false)
		if err != nil {
			return err
		}
		if err := lockCardList(ctx, u.tx, card); err != nil {
			return err
		}
		if checklist, err = u.tx.GetChecklist(ctx, checklist.ID); err != nil {
			return err
		}
		items, err := u.tx.ChecklistItems(ctx, checklist.ID)
		if err != nil {
			return err
		}
		positions := make([]int, len(items))
		for i, it := range items {
			positions[i] = it.Position
		}
		item = &model.ChecklistItem{
			ID:          uuid.New(),
			ChecklistID: checklist.ID,
			Text:        text,
			Position:    position.Append(positions),
		}
		if err := u.tx.CreateChecklistItem(ctx, item); err != nil {
			return err
		}
		payload := itemPayload(item, card.ID, board.ID)
		u.emit(board.ID, realtime.KindChecklistItemCreated, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityCreate,
			activity.AddedChecklistItem(u.actor.Username, item.Text), payload)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateChecklistItem edits an item's text, its completed state, or both.
// Ticking records a COMPLETE activity; a text-only edit records an UPDATE.
func (s *Store) UpdateChecklistItem(ctx context.Context, actorID, itemID uuid.UUID, patch ItemPatch) (*model.ChecklistItem, error) {
	if patch.Text == nil && patch.Completed == nil {
		return nil, goerr.Wrap(apperr.ErrValidation, "nothing to update", goerr.V("item_id", itemID))
	}
	var text string
	if patch.Text != nil {
		var err error
		if text, err = requireText("text", *patch.Text); err != nil {
			return nil, err
		}
	}

	var item *model.ChecklistItem
	err := s.mutate(ctx, "UpdateChecklistItem", actorID, func(ctx context.Context, u *unit) error {
		var (
			card  *model.Card
			board *model.Board
			err   error
		)
		if item, card, board, err = itemInCard(ctx, u.tx, u.actor.ID, itemID); err != nil {
			return err
		}
		if patch.Text != nil {
			item.Text = text
		}
		if patch.Completed != nil {
			item.Completed = *patch.Completed
		}
		if err := u.tx.UpdateChecklistItem(ctx, item); err != nil {
			return err
		}
		payload := itemPayload(item, card.ID, board.ID)
		u.emit(board.ID, realtime.KindChecklistItemUpdated, payload)
		if patch.Completed != nil {
			return u.record(ctx, s.recorder, board.ID, model.ActivityComplete,
				activity.ToggledChecklistItem(u.actor.Username, item.Text, item.Completed), payload)
		}
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.UpdatedChecklistItem(u.actor.Username, item.Text), payload)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteChecklistItem removes an item and closes the gap in its checklist.
func (s *Store) DeleteChecklistItem(ctx context.Context, actorID, itemID uuid.UUID) error {
	return s.mutate(ctx, "DeleteChecklistItem", actorID, func(ctx context.Context, u *unit) error {
		item, card, board, err := itemInCard(ctx, u.tx, u.actor.ID, itemID)
		if err != nil {
			return err
		}
		if err := lockCardList(ctx, u.tx, card); err != nil {
			return err
		}
		if item, err = u.tx.GetChecklistItem(ctx, item.ID); err != nil {
			return err
		}
		if err := u.tx.DeleteChecklistItem(ctx, item.ID); err != nil {
			return err
		}
		if err := compactItems(ctx, u.tx, item.ChecklistID); err != nil {
			return err
		}
		payload := itemPayload(item, card.ID, board.ID)
		u.emit(board.ID, realtime.KindChecklistItemDeleted, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityDelete,
			activity.DeletedChecklistItem(u.actor.Username, item.Text), payload)
	})
}

// DeleteChecklist removes a checklist together with its items.
func (s *Store) DeleteChecklist(ctx context.Context, actorID, checklistID uuid.UUID) error {
	return s.mutate(ctx, "DeleteChecklist", actorID, func(ctx context.Context, u *unit) error {
		checklist, err := u.tx.GetChecklist(ctx, checklistID)
		if err != nil {
			return err
		}
		card, _, board, err := cardInBoard(ctx, u.tx, u.actor.ID, checklist.CardID, memberAccess, false)
		if err != nil {
			return err
		}
		if err := lockCardList(ctx, u.tx, card); err != nil {
			return err
		}
		if err := u.tx.DeleteChecklist(ctx, checklist.ID); err != nil {
			return err
		}
		payload := map[string]any{
			"id":       checklist.ID.String(),
			"card_id":  card.ID.String(),
			"board_id": board.ID.String(),
			"title":    checklist.Title,
		}
		u.emit(board.ID, realtime.KindChecklistDeleted, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityDelete,
			activity.DeletedChecklist(u.actor.Username, checklist.Title, card.Title), payload)
	})
}

// UpdateComment replaces a comment's text. Only its author may edit it.
func (s *Store) UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, goerr.Wrap(apperr.ErrValidation, "text is required", goerr.V("field", "text"))
	}

	var comment *model.Comment
	err := s.mutate(ctx, "UpdateComment", actorID, func(ctx context.Context, u *unit) error {
		var (
			card  *model.Card
			board *model.Board
			err   error
		)
		if comment, card, board, err = authoredComment(ctx, u.tx, u.actor.ID, commentID); err != nil {
			return err
		}
		comment.Text = text
		if err := u.tx.UpdateComment(ctx, comment); err != nil {
			return err
		}
		payload := commentPayload(comment, card.ID, board.ID, u.actor.Username)
		u.emit(board.ID, realtime.KindCommentUpdated, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityUpdate,
			activity.EditedComment(u.actor.Username, card.Title), payload)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (s *Store) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error {
	return s.mutate(ctx, "DeleteComment", actorID, func(ctx context.Context, u *unit) error {
		comment, card, board, err := authoredComment(ctx, u.tx, u.actor.ID, commentID)
		if err != nil {
			return err
		}
		if err := u.tx.DeleteComment(ctx, comment.ID); err != nil {
			return err
		}
		payload := commentPayload(comment, card.ID, board.ID, u.actor.Username)
		u.emit(board.ID, realtime.KindCommentDeleted, payload)
		return u.record(ctx, s.recorder, board.ID, model.ActivityDelete,
			activity.DeletedComment(u.actor.Username, card.Title), payload)
	})
}

// authoredComment loads a comment the actor wrote on a card they can still reach.
func authoredComment(ctx context.Context, tx repository.Tx, actorID, commentID uuid.UUID) (*model.Comment, *model.Card, *model.Board, error) {
	comment, err := tx.GetComment(ctx, commentID)
	if err != nil {
		return nil, nil, nil, err
	}
	card, _, board, err := cardInBoard(ctx, tx, actorID, comment.CardID, memberAccess, false)
	if err != nil {
		return nil, nil, nil, err
	}
	if comment.AuthorID == nil || *comment.AuthorID != actorID {
		return nil, nil, nil, goerr.Wrap(apperr.ErrForbidden, "only the author may change a comment",
			goerr.V("comment_id", commentID), goerr.V("user_id", actorID))
	}
	return comment, card, board, nil
}

// itemInCard resolves a checklist item through its checklist to the card and board.
func itemInCard(ctx context.Context, tx repository.Tx, actorID, itemID uuid.UUID) (*model.ChecklistItem, *model.Card, *model.Board, error) {
	item, err := tx.GetChecklistItem(ctx, itemID)
	if err != nil {
		return nil, nil, nil, err
	}
	checklist, err := tx.GetChecklist(ctx, item.ChecklistID)
	if err != nil {
		return nil, nil, nil, err
	}
	card, _, board, err := cardInBoard(ctx, tx, actorID, checklist.CardID, memberAccess, false)
	if err != nil {
		return nil, nil, nil, err
	}
	return item, card, board, nil
}

// lockCardList takes the lock of the card's list, which also covers the
// order of the card's checklist items.
func lockCardList(ctx context.Context, tx repository.Tx, card *model.Card) error {
	list, err := lockList(ctx, tx, card.ListID)
	if err != nil {
		return err
	}
	_, err = relock(ctx, tx, card.ID, list.ID)
	return err
}

func compactItems(ctx context.Context, tx repository.Tx, checklistID uuid.UUID) error {
	remaining, err := tx.ChecklistItems(ctx, checklistID)
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, len(remaining))
	current := make(map[uuid.UUID]int, len(remaining))
	for i, it := range remaining {
		ids[i] = it.ID
		current[it.ID] = it.Position
	}
	return tx.SetChecklistItemPositions(ctx, position.Changed(position.Compact(ids), current))
}

func commentPayload(c *model.Comment, cardID, boardID uuid.UUID, author string) map[string]any {
	return map[string]any{
		"id":       c.ID.String(),
		"card_id":  cardID.String(),
		"board_id": boardID.String(),
		"text":     c.Text,
		"author":   author,
	}
}

func itemPayload(item *model.ChecklistItem, cardID, boardID uuid.UUID) map[string]any {
	return map[string]any{
		"id":           item.ID.String(),
		"checklist_id": item.ChecklistID.String(),
		"card_id":      cardID.String(),
		"board_id":     boardID.String(),
		"text":         item.Text,
		"completed":    item.Completed,
		"position":     item.Position,
	}
}
