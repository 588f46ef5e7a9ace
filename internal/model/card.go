package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Card struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListID      uuid.UUID                   `gorm:"type:uuid;not null;index:idx_cards_list_position" json:"list_id"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `json:"description"`
	Position    int                         `gorm:"not null;index:idx_cards_list_position" json:"position"`
	DueDate     *time.Time                  `json:"due_date,omitempty"`
	Archived    bool                        `gorm:"not null;default:false" json:"archived"`
	Labels      datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"labels"`
	Attachments datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"attachments"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

type CardMember struct {
	CardID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}
