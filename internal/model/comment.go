package model

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CardID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"card_id"`
	AuthorID  *uuid.UUID `gorm:"type:uuid" json:"author_id"`
	Text      string     `gorm:"not null" json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
