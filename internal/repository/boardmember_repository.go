package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

func (q queries) AddBoardMember(ctx context.Context, boardID, userID uuid.UUID) error {
	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.BoardMember{BoardID: boardID, UserID: userID}).Error
	return translate(err, "failed to add board member",
		goerr.V("board_id", boardID), goerr.V("user_id", userID))
}

func (q queries) RemoveBoardMember(ctx context.Context, boardID, userID uuid.UUID) error {
	err := q.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardMember{}).Error
	return translate(err, "failed to remove board member",
		goerr.V("board_id", boardID), goerr.V("user_id", userID))
}

func (q queries) BoardMemberIDs(ctx context.Context, boardID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := q.db.WithContext(ctx).Model(&model.BoardMember{}).
		Where("board_id = ?", boardID).
		Order("created_at").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err, "failed to list board members", goerr.V("board_id", boardID))
	}
	return ids, nil
}

// IsBoardMember reports whether the user owns the board or has a membership row.
func (q queries) IsBoardMember(ctx context.Context, userID, boardID uuid.UUID) (bool, error) {
	var count int64
	members := q.db.Model(&model.BoardMember{}).Select("board_id").Where("user_id = ?", userID)
	err := q.db.WithContext(ctx).Model(&model.Board{}).
		Where("id = ?", boardID).
		Where(q.db.Where("owner_id = ?", userID).Or("id IN (?)", members)).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "failed to check membership",
			goerr.V("board_id", boardID), goerr.V("user_id", userID))
	}
	return count > 0, nil
}

func (q queries) IsBoardOwner(ctx context.Context, userID, boardID uuid.UUID) (bool, error) {
	var count int64
	err := q.db.WithContext(ctx).Model(&model.Board{}).
		Where("id = ? AND owner_id = ?", boardID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "failed to check ownership",
			goerr.V("board_id", boardID), goerr.V("user_id", userID))
	}
	return count > 0, nil
}
