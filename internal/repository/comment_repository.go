package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/model"
)

func (q queries) CreateComment(ctx context.Context, comment *model.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(comment).Error, "failed to create comment",
		goerr.V("card_id", comment.CardID))
}

func (q queries) CommentsByCard(ctx context.Context, cardID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	err := q.db.WithContext(ctx).Where("card_id = ?", cardID).Order("created_at").Find(&comments).Error
	if err != nil {
		return nil, translate(err, "failed to list comments", goerr.V("card_id", cardID))
	}
	return comments, nil
}

func (q queries) GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	if err := q.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err, "comment not found", goerr.V("comment_id", id))
	}
	return &comment, nil
}

func (q queries) UpdateComment(ctx context.Context, comment *model.Comment) error {
	err := q.db.WithContext(ctx).Model(comment).
		Select("text", "updated_at").
		Updates(comment).Error
	return translate(err, "failed to update comment", goerr.V("comment_id", comment.ID))
}

func (q queries) DeleteComment(ctx context.Context, id uuid.UUID) error {
	err := q.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{}).Error
	return translate(err, "failed to delete comment", goerr.V("comment_id", id))
}
