package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/apperr"
	"taskboard/internal/model"
	"taskboard/internal/position"
)

func now() time.Time {
	return time.Now().UTC()
}

func (t *tx) LockBoard(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetBoard(ctx, id); err != nil {
		return err
	}
	return t.lock(ctx, id)
}

func (t *tx) LockLists(ctx context.Context, ids ...uuid.UUID) error {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	for _, id := range sorted {
		if _, err := t.GetList(ctx, id); err != nil {
			return err
		}
		if err := t.lock(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) CreateBoard(ctx context.Context, board *model.Board) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	ts := now()
	if board.CreatedAt.IsZero() {
		board.CreatedAt = ts
	}
	board.UpdatedAt = ts
	t.st.boards.set(board.ID, *board)
	return nil
}

func (t *tx) UpdateBoard(ctx context.Context, board *model.Board) error {
	if _, err := t.GetBoard(ctx, board.ID); err != nil {
		return err
	}
	title, description, color, ts := board.Title, board.Description, board.BackgroundColor, now()
	t.st.boards.patch(board.ID, func(b *model.Board) {
		b.Title = title
		b.Description = description
		b.BackgroundColor = color
		b.UpdatedAt = ts
	})
	return nil
}

func (t *tx) ArchiveBoard(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetBoard(ctx, id); err != nil {
		return err
	}
	ts := now()
	t.st.boards.patch(id, func(b *model.Board) {
		b.Archived = true
		b.UpdatedAt = ts
	})
	return nil
}

func (t *tx) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	lists, err := t.ListsByBoard(ctx, id, true)
	if err != nil {
		return err
	}
	for _, l := range lists {
		if err := t.DeleteList(ctx, l.ID); err != nil {
			return err
		}
	}

	t.s.mu.RLock()
	members := t.st.members.filter(t.s.members, func(m model.BoardMember) bool { return m.BoardID == id })
	t.s.mu.RUnlock()
	for _, m := range members {
		t.st.members.remove(pair{m.BoardID, m.UserID})
	}

	kept := t.st.activities[:0]
	for _, a := range t.st.activities {
		if a.BoardID != id {
			kept = append(kept, a)
		}
	}
	t.st.activities = kept
	t.st.purged[id] = struct{}{}
	t.st.boards.remove(id)
	return nil
}

func (t *tx) AddBoardMember(ctx context.Context, boardID, userID uuid.UUID) error {
	t.s.mu.RLock()
	_, exists := t.st.members.get(t.s.members, pair{boardID, userID})
	t.s.mu.RUnlock()
	if exists {
		return nil
	}
	t.st.members.set(pair{boardID, userID}, model.BoardMember{BoardID: boardID, UserID: userID, CreatedAt: now()})
	return nil
}

func (t *tx) RemoveBoardMember(ctx context.Context, boardID, userID uuid.UUID) error {
	t.st.members.remove(pair{boardID, userID})
	return nil
}

func (t *tx) CreateList(ctx context.Context, list *model.List) error {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	ts := now()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = ts
	}
	list.UpdatedAt = ts
	t.st.lists.set(list.ID, *list)
	return nil
}

func (t *tx) UpdateList(ctx context.Context, list *model.List) error {
	if _, err := t.GetList(ctx, list.ID); err != nil {
		return err
	}
	title, ts := list.Title, now()
	t.st.lists.patch(list.ID, func(l *model.List) {
		l.Title = title
		l.UpdatedAt = ts
	})
	return nil
}

func (t *tx) ArchiveList(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetList(ctx, id); err != nil {
		return err
	}
	ts := now()
	t.st.lists.patch(id, func(l *model.List) {
		l.Archived = true
		l.UpdatedAt = ts
	})
	return nil
}

func (t *tx) DeleteList(ctx context.Context, id uuid.UUID) error {
	cards, err := t.CardsByList(ctx, id, true)
	if err != nil {
		return err
	}
	for _, c := range cards {
		if err := t.DeleteCard(ctx, c.ID); err != nil {
			return err
		}
	}
	t.st.lists.remove(id)
	return nil
}

func (t *tx) SetListPositions(ctx context.Context, assignments []position.Assignment) error {
	for _, a := range assignments {
		if _, err := t.GetList(ctx, a.ID); err != nil {
			return err
		}
		pos, ts := a.Position, now()
		t.st.lists.patch(a.ID, func(l *model.List) {
			l.Position = pos
			l.UpdatedAt = ts
		})
	}
	return nil
}

func (t *tx) CreateCard(ctx context.Context, card *model.Card) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	ts := now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = ts
	}
	card.UpdatedAt = ts
	t.st.cards.set(card.ID, copyCard(*card))
	return nil
}

func (t *tx) UpdateCard(ctx context.Context, card *model.Card) error {
	if _, err := t.GetCard(ctx, card.ID); err != nil {
		return err
	}
	fields, ts := copyCard(*card), now()
	t.st.cards.patch(card.ID, func(c *model.Card) {
		c.Title = fields.Title
		c.Description = fields.Description
		c.DueDate = fields.DueDate
		c.Labels = fields.Labels
		c.Attachments = fields.Attachments
		c.UpdatedAt = ts
	})
	return nil
}

func (t *tx) ArchiveCard(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetCard(ctx, id); err != nil {
		return err
	}
	ts := now()
	t.st.cards.patch(id, func(c *model.Card) {
		c.Archived = true
		c.UpdatedAt = ts
	})
	return nil
}

func (t *tx) DeleteCard(ctx context.Context, id uuid.UUID) error {
	t.s.mu.RLock()
	comments := t.st.comments.filter(t.s.comments, func(c model.Comment) bool { return c.CardID == id })
	checklists := t.st.checklists.filter(t.s.checklists, func(c model.Checklist) bool { return c.CardID == id })
	members := t.st.cardMembers.filter(t.s.cardMembers, func(m model.CardMember) bool { return m.CardID == id })
	var items []model.ChecklistItem
	for _, cl := range checklists {
		items = append(items, t.st.items.filter(t.s.items, func(i model.ChecklistItem) bool {
			return i.ChecklistID == cl.ID
		})...)
	}
	t.s.mu.RUnlock()

	for _, c := range comments {
		t.st.comments.remove(c.ID)
	}
	for _, i := range items {
		t.st.items.remove(i.ID)
	}
	for _, cl := range checklists {
		t.st.checklists.remove(cl.ID)
	}
	for _, m := range members {
		t.st.cardMembers.remove(pair{m.CardID, m.UserID})
	}
	t.st.cards.remove(id)
	return nil
}

func (t *tx) SetCardPositions(ctx context.Context, assignments []position.Assignment) error {
	for _, a := range assignments {
		if _, err := t.GetCard(ctx, a.ID); err != nil {
			return err
		}
		pos, ts := a.Position, now()
		t.st.cards.patch(a.ID, func(c *model.Card) {
			c.Position = pos
			c.UpdatedAt = ts
		})
	}
	return nil
}

func (t *tx) SetCardList(ctx context.Context, cardID, listID uuid.UUID) error {
	if _, err := t.GetCard(ctx, cardID); err != nil {
		return err
	}
	if _, err := t.GetList(ctx, listID); err != nil {
		return err
	}
	ts := now()
	t.st.cards.patch(cardID, func(c *model.Card) {
		c.ListID = listID
		c.UpdatedAt = ts
	})
	return nil
}

func (t *tx) SetCardMembers(ctx context.Context, cardID uuid.UUID, userIDs []uuid.UUID) error {
	current, err := t.CardMemberIDs(ctx, cardID)
	if err != nil {
		return err
	}
	for _, id := range current {
		t.st.cardMembers.remove(pair{cardID, id})
	}
	for _, id := range userIDs {
		t.st.cardMembers.set(pair{cardID, id}, model.CardMember{CardID: cardID, UserID: id})
	}
	return nil
}

func (t *tx) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	ts := now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = ts
	}
	comment.UpdatedAt = ts
	t.st.comments.set(comment.ID, *comment)
	return nil
}

func (t *tx) UpdateComment(ctx context.Context, comment *model.Comment) error {
	if _, err := t.GetComment(ctx, comment.ID); err != nil {
		return err
	}
	text, ts := comment.Text, now()
	t.st.comments.patch(comment.ID, func(c *model.Comment) {
		c.Text = text
		c.UpdatedAt = ts
	})
	return nil
}

func (t *tx) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetComment(ctx, id); err != nil {
		return err
	}
	t.st.comments.remove(id)
	return nil
}

func (t *tx) CreateChecklist(ctx context.Context, checklist *model.Checklist) error {
	if checklist.ID == uuid.Nil {
		checklist.ID = uuid.New()
	}
	if checklist.CreatedAt.IsZero() {
		checklist.CreatedAt = now()
	}
	t.st.checklists.set(checklist.ID, *checklist)
	return nil
}

func (t *tx) DeleteChecklist(ctx context.Context, id uuid.UUID) error {
	items, err := t.ChecklistItems(ctx, id)
	if err != nil {
		return err
	}
	for _, i := range items {
		t.st.items.remove(i.ID)
	}
	t.st.checklists.remove(id)
	return nil
}

func (t *tx) CreateChecklistItem(ctx context.Context, item *model.ChecklistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	ts := now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = ts
	}
	item.UpdatedAt = ts
	t.st.items.set(item.ID, *item)
	return nil
}

func (t *tx) UpdateChecklistItem(ctx context.Context, item *model.ChecklistItem) error {
	if _, err := t.GetChecklistItem(ctx, item.ID); err != nil {
		return err
	}
	text, completed, ts := item.Text, item.Completed, now()
	t.st.items.patch(item.ID, func(i *model.ChecklistItem) {
		i.Text = text
		i.Completed = completed
		i.UpdatedAt = ts
	})
	return nil
}

func (t *tx) DeleteChecklistItem(ctx context.Context, id uuid.UUID) error {
	if _, err := t.GetChecklistItem(ctx, id); err != nil {
		return err
	}
	t.st.items.remove(id)
	return nil
}

func (t *tx) SetChecklistItemPositions(ctx context.Context, assignments []position.Assignment) error {
	for _, a := range assignments {
		if _, err := t.GetChecklistItem(ctx, a.ID); err != nil {
			return err
		}
		pos, ts := a.Position, now()
		t.st.items.patch(a.ID, func(i *model.ChecklistItem) {
			i.Position = pos
			i.UpdatedAt = ts
		})
	}
	return nil
}

func (t *tx) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if _, gone := t.st.purged[activity.BoardID]; gone {
		return goerr.Wrap(apperr.ErrNotFound, "board was deleted", goerr.V("board_id", activity.BoardID))
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now()
	}
	t.st.activities = append(t.st.activities, copyActivity(*activity))
	return nil
}
