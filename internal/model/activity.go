package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityKind classifies an audit record.
type ActivityKind string

const (
	ActivityCreate   ActivityKind = "CREATE"
	ActivityUpdate   ActivityKind = "UPDATE"
	ActivityDelete   ActivityKind = "DELETE"
	ActivityMove     ActivityKind = "MOVE"
	ActivityComment  ActivityKind = "COMMENT"
	ActivityComplete ActivityKind = "COMPLETE"
)

// Activity is append-only; nothing in the normal flow updates or deletes it.
type Activity struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BoardID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_activities_board_created" json:"board_id"`
	ActorID     *uuid.UUID        `gorm:"type:uuid" json:"actor_id"`
	Kind        ActivityKind      `gorm:"type:varchar(20);not null" json:"kind"`
	Description string            `gorm:"not null" json:"description"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`
	CreatedAt   time.Time         `gorm:"index:idx_activities_board_created" json:"created_at"`
}
