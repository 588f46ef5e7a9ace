package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
)

// view reads the committed tables through one transaction's overlay.
type view struct {
	s  *Store
	st *state
}

func copyCard(c model.Card) model.Card {
	c.Labels = append([]string{}, c.Labels...)
	c.Attachments = append([]string{}, c.Attachments...)
	if c.DueDate != nil {
		due := *c.DueDate
		c.DueDate = &due
	}
	return c
}

func copyActivity(a model.Activity) model.Activity {
	if a.Payload != nil {
		payload := make(map[string]any, len(a.Payload))
		for k, v := range a.Payload {
			payload[k] = v
		}
		a.Payload = payload
	}
	return a
}

func earlier(a, b time.Time, idA, idB uuid.UUID) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return idA.String() < idB.String()
}

func (v view) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	u, ok := v.st.users.get(v.s.users, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "user not found", goerr.V("user_id", id))
	}
	return &u, nil
}

func (v view) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	found := v.st.users.filter(v.s.users, func(u model.User) bool { return u.Username == username })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (v view) GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	b, ok := v.st.boards.get(v.s.boards, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "board not found", goerr.V("board_id", id))
	}
	return &b, nil
}

func (v view) BoardsForUser(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	boards := v.st.boards.filter(v.s.boards, func(b model.Board) bool {
		if b.Archived {
			return false
		}
		if b.OwnerID == userID {
			return true
		}
		_, ok := v.st.members.get(v.s.members, pair{b.ID, userID})
		return ok
	})
	sort.Slice(boards, func(i, j int) bool {
		return earlier(boards[i].CreatedAt, boards[j].CreatedAt, boards[i].ID, boards[j].ID)
	})
	return boards, nil
}

func (v view) BoardMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	rows := v.st.members.filter(v.s.members, func(m model.BoardMember) bool { return m.BoardID == boardID })
	sort.Slice(rows, func(i, j int) bool {
		return earlier(rows[i].CreatedAt, rows[j].CreatedAt, rows[i].UserID, rows[j].UserID)
	})
	ids := make([]uuid.UUID, len(rows))
	for i, m := range rows {
		ids[i] = m.UserID
	}
	return ids, nil
}

func (v view) IsBoardMember(ctx context.Context, userID, boardID uuid.UUID) (bool, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	b, ok := v.st.boards.get(v.s.boards, boardID)
	if !ok {
		return false, nil
	}
	if b.OwnerID == userID {
		return true, nil
	}
	_, ok = v.st.members.get(v.s.members, pair{boardID, userID})
	return ok, nil
}

func (v view) IsBoardOwner(ctx context.Context, userID, boardID uuid.UUID) (bool, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	b, ok := v.st.boards.get(v.s.boards, boardID)
	return ok && b.OwnerID == userID, nil
}

func (v view) GetList(ctx context.Context, id uuid.UUID) (*model.List, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	l, ok := v.st.lists.get(v.s.lists, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "list not found", goerr.V("list_id", id))
	}
	return &l, nil
}

func (v view) ListsByBoard(ctx context.Context, boardID uuid.UUID, includeArchived bool) ([]model.List, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	lists := v.st.lists.filter(v.s.lists, func(l model.List) bool {
		return l.BoardID == boardID && (includeArchived || !l.Archived)
	})
	sort.Slice(lists, func(i, j int) bool {
		if lists[i].Position != lists[j].Position {
			return lists[i].Position < lists[j].Position
		}
		return earlier(lists[i].CreatedAt, lists[j].CreatedAt, lists[i].ID, lists[j].ID)
	})
	return lists, nil
}

func (v view) GetCard(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	c, ok := v.st.cards.get(v.s.cards, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "card not found", goerr.V("card_id", id))
	}
	c = copyCard(c)
	return &c, nil
}

func (v view) CardsByList(ctx context.Context, listID uuid.UUID, includeArchived bool) ([]model.Card, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	cards := v.st.cards.filter(v.s.cards, func(c model.Card) bool {
		return c.ListID == listID && (includeArchived || !c.Archived)
	})
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Position != cards[j].Position {
			return cards[i].Position < cards[j].Position
		}
		return earlier(cards[i].CreatedAt, cards[j].CreatedAt, cards[i].ID, cards[j].ID)
	})
	for i := range cards {
		cards[i] = copyCard(cards[i])
	}
	return cards, nil
}

func (v view) CardMemberIDs(ctx context.Context, cardID uuid.UUID) ([]uuid.UUID, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	rows := v.st.cardMembers.filter(v.s.cardMembers, func(m model.CardMember) bool { return m.CardID == cardID })
	ids := make([]uuid.UUID, len(rows))
	for i, m := range rows {
		ids[i] = m.UserID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (v view) GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	c, ok := v.st.comments.get(v.s.comments, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "comment not found", goerr.V("comment_id", id))
	}
	return &c, nil
}

func (v view) CommentsByCard(ctx context.Context, cardID uuid.UUID) ([]model.Comment, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	comments := v.st.comments.filter(v.s.comments, func(c model.Comment) bool { return c.CardID == cardID })
	sort.Slice(comments, func(i, j int) bool {
		return earlier(comments[i].CreatedAt, comments[j].CreatedAt, comments[i].ID, comments[j].ID)
	})
	return comments, nil
}

func (v view) GetChecklist(ctx context.Context, id uuid.UUID) (*model.Checklist, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	c, ok := v.st.checklists.get(v.s.checklists, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "checklist not found", goerr.V("checklist_id", id))
	}
	return &c, nil
}

func (v view) ChecklistsByCard(ctx context.Context, cardID uuid.UUID) ([]model.Checklist, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	checklists := v.st.checklists.filter(v.s.checklists, func(c model.Checklist) bool { return c.CardID == cardID })
	sort.Slice(checklists, func(i, j int) bool {
		return earlier(checklists[i].CreatedAt, checklists[j].CreatedAt, checklists[i].ID, checklists[j].ID)
	})
	return checklists, nil
}

func (v view) GetChecklistItem(ctx context.Context, id uuid.UUID) (*model.ChecklistItem, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	item, ok := v.st.items.get(v.s.items, id)
	if !ok {
		return nil, goerr.Wrap(apperr.ErrNotFound, "checklist item not found", goerr.V("item_id", id))
	}
	return &item, nil
}

func (v view) ChecklistItems(ctx context.Context, checklistID uuid.UUID) ([]model.ChecklistItem, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	items := v.st.items.filter(v.s.items, func(i model.ChecklistItem) bool { return i.ChecklistID == checklistID })
	sort.Slice(items, func(i, j int) bool {
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return earlier(items[i].CreatedAt, items[j].CreatedAt, items[i].ID, items[j].ID)
	})
	return items, nil
}

// ActivitiesByBoard walks committed history, then this transaction's own
// records, and returns the tail in reverse.
func (v view) ActivitiesByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]model.Activity, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()

	if _, gone := v.st.purged[boardID]; gone {
		return nil, nil
	}
	var matched []model.Activity
	for _, a := range v.s.activities {
		if a.BoardID == boardID {
			matched = append(matched, a)
		}
	}
	for _, a := range v.st.activities {
		if a.BoardID == boardID {
			matched = append(matched, a)
		}
	}

	out := make([]model.Activity, 0, min(limit, len(matched)))
	for i := len(matched) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyActivity(matched[i]))
	}
	return out, nil
}
