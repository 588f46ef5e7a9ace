package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"taskboard/internal/model"
)

func (q queries) CreateActivity(ctx context.Context, activity *model.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return translate(q.db.WithContext(ctx).Create(activity).Error, "failed to record activity",
		goerr.V("board_id", activity.BoardID), goerr.V("kind", activity.Kind))
}

func (q queries) ActivitiesByBoard(ctx context.Context, boardID uuid.UUID, limit int) ([]model.Activity, error) {
	var activities []model.Activity
	err := q.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, translate(err, "failed to list activities", goerr.V("board_id", boardID))
	}
	return activities, nil
}
