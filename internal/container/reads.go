package container

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/activity"
	"taskboard/internal/model"
)

type BoardView struct {
	model.Board
	MemberIDs []uuid.UUID `json:"member_ids"`
	Lists     []ListView  `json:"lists"`
}

type ListView struct {
	model.List
	Cards []model.Card `json:"cards"`
}

type CardView struct {
	model.Card
	MemberIDs  []uuid.UUID     `json:"member_ids"`
	Comments   []model.Comment `json:"comments"`
	Checklists []ChecklistView `json:"checklists"`
}

type ChecklistView struct {
	model.Checklist
	Items []model.ChecklistItem `json:"items"`
}

// Boards lists the active boards the actor owns or belongs to.
func (s *Store) Boards(ctx context.Context, actorID uuid.UUID) ([]model.Board, error) {
	boards, err := s.repo.BoardsForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []model.Board{}
	}
	return boards, nil
}

// Board returns the board with its active lists and cards in position order.
func (s *Store) Board(ctx context.Context, actorID, boardID uuid.UUID) (*BoardView, error) {
	board, err := activeBoard(ctx, s.repo, actorID, boardID, readAccess)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.BoardMemberIDs(ctx, board.ID)
	if err != nil {
		return nil, err
	}
	lists, err := s.repo.ListsByBoard(ctx, board.ID, false)
	if err != nil {
		return nil, err
	}

	view := &BoardView{Board: *board, MemberIDs: nonNil(members), Lists: make([]ListView, 0, len(lists))}
	for _, l := range lists {
		cards, err := s.repo.CardsByList(ctx, l.ID, false)
		if err != nil {
			return nil, err
		}
		view.Lists = append(view.Lists, ListView{List: l, Cards: nonNil(cards)})
	}
	return view, nil
}

func (s *Store) Lists(ctx context.Context, actorID, boardID uuid.UUID) ([]model.List, error) {
	board, err := activeBoard(ctx, s.repo, actorID, boardID, readAccess)
	if err != nil {
		return nil, err
	}
	lists, err := s.repo.ListsByBoard(ctx, board.ID, false)
	if err != nil {
		return nil, err
	}
	return nonNil(lists), nil
}

func (s *Store) Cards(ctx context.Context, actorID, listID uuid.UUID) ([]model.Card, error) {
	list, _, err := listInBoard(ctx, s.repo, actorID, listID, readAccess, false)
	if err != nil {
		return nil, err
	}
	cards, err := s.repo.CardsByList(ctx, list.ID, false)
	if err != nil {
		return nil, err
	}
	return nonNil(cards), nil
}

func (s *Store) Card(ctx context.Context, actorID, cardID uuid.UUID) (*CardView, error) {
	card, _, _, err := cardInBoard(ctx, s.repo, actorID, cardID, readAccess, false)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.CardMemberIDs(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.CommentsByCard(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	checklists, err := s.checklists(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	return &CardView{
		Card:       *card,
		MemberIDs:  nonNil(members),
		Comments:   nonNil(comments),
		Checklists: checklists,
	}, nil
}

func (s *Store) Comments(ctx context.Context, actorID, cardID uuid.UUID) ([]model.Comment, error) {
	card, _, _, err := cardInBoard(ctx, s.repo, actorID, cardID, readAccess, false)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.CommentsByCard(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(comments), nil
}

func (s *Store) Checklists(ctx context.Context, actorID, cardID uuid.UUID) ([]ChecklistView, error) {
	card, _, _, err := cardInBoard(ctx, s.repo, actorID, cardID, readAccess, false)
	if err != nil {
		return nil, err
	}
	return s.checklists(ctx, card.ID)
}

func (s *Store) checklists(ctx context.Context, cardID uuid.UUID) ([]ChecklistView, error) {
	checklists, err := s.repo.ChecklistsByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	out := make([]ChecklistView, 0, len(checklists))
	for _, c := range checklists {
		items, err := s.repo.ChecklistItems(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ChecklistView{Checklist: c, Items: nonNil(items)})
	}
	return out, nil
}

// Activities returns the latest history of a board the actor can see.
func (s *Store) Activities(ctx context.Context, actorID, boardID uuid.UUID) ([]model.Activity, error) {
	board, err := activeBoard(ctx, s.repo, actorID, boardID, readAccess)
	if err != nil {
		return nil, err
	}
	return s.recorder.Latest(ctx, s.repo, board.ID, activity.DefaultLimit)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
