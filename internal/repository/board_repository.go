package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

func (q queries) CreateBoard(ctx context.Context, board *model.Board) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(board).Error, "failed to create board",
		goerr.V("board_id", board.ID))
}

func (q queries) GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var board model.Board
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&board).Error; err != nil {
		return nil, translate(err, "board not found", goerr.V("board_id", id))
	}
	return &board, nil
}

// BoardsForUser lists active boards the user owns or is a member of.
func (q queries) BoardsForUser(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	members := q.db.Model(&model.BoardMember{}).Select("board_id").Where("user_id = ?", userID)
	err := q.db.WithContext(ctx).
		Where("archived = ?", false).
		Where(q.db.Where("owner_id = ?", userID).Or("id IN (?)", members)).
		Order("created_at").
		Find(&boards).Error
	if err != nil {
		return nil, translate(err, "failed to list boards", goerr.V("user_id", userID))
	}
	return boards, nil
}

func (q queries) UpdateBoard(ctx context.Context, board *model.Board) error {
	err := q.db.WithContext(ctx).Model(board).
		Select("title", "description", "background_color", "updated_at").
		Updates(board).Error
	return translate(err, "failed to update board", goerr.V("board_id", board.ID))
}

func (q queries) ArchiveBoard(ctx context.Context, id uuid.UUID) error {
	err := q.db.WithContext(ctx).Model(&model.Board{}).Where("id = ?", id).Update("archived", true).Error
	return translate(err, "failed to archive board", goerr.V("board_id", id))
}

// DeleteBoard removes the board and everything that hangs off it.
func (q queries) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	db := q.db.WithContext(ctx)
	lists := db.Model(&model.List{}).Select("id").Where("board_id = ?", id)
	cards := db.Model(&model.Card{}).Select("id").Where("list_id IN (?)", lists)
	if err := deleteCardChildren(db, cards); err != nil {
		return translate(err, "failed to delete board", goerr.V("board_id", id))
	}
	steps := []func() error{
		func() error { return db.Where("list_id IN (?)", lists).Delete(&model.Card{}).Error },
		func() error { return db.Where("board_id = ?", id).Delete(&model.List{}).Error },
		func() error { return db.Where("board_id = ?", id).Delete(&model.Activity{}).Error },
		func() error { return db.Where("board_id = ?", id).Delete(&model.BoardMember{}).Error },
		func() error { return db.Where("id = ?", id).Delete(&model.Board{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return translate(err, "failed to delete board", goerr.V("board_id", id))
		}
	}
	return nil
}

// LockBoard takes a row lock on the board for the rest of the transaction.
func (q queries) LockBoard(ctx context.Context, id uuid.UUID) error {
	var board model.Board
	err := q.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&board).Error
	return translate(err, "failed to lock board", goerr.V("board_id", id))
}

func deleteCardChildren(db *gorm.DB, cards *gorm.DB) error {
	checklists := db.Model(&model.Checklist{}).Select("id").Where("card_id IN (?)", cards)
	if err := db.Where("checklist_id IN (?)", checklists).Delete(&model.ChecklistItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("card_id IN (?)", cards).Delete(&model.Checklist{}).Error; err != nil {
		return err
	}
	if err := db.Where("card_id IN (?)", cards).Delete(&model.Comment{}).Error; err != nil {
		return err
	}
	return db.Where("card_id IN (?)", cards).Delete(&model.CardMember{}).Error
}
