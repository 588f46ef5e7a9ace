package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBoardColor = "#0079BF"

type Board struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	// BackgroundColor is a #RRGGBB hex value.
	BackgroundColor string    `gorm:"type:varchar(7);not null;default:'#0079BF'" json:"background_color"`
	OwnerID         uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Archived        bool      `gorm:"not null;default:false" json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BoardMember links a user to a board. The owner is always treated as a
// member whether or not a row exists.
type BoardMember struct {
	BoardID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
