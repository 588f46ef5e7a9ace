package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultChecklistTitle = "Checklist"

type Checklist struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CardID    uuid.UUID `gorm:"type:uuid;not null;index" json:"card_id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type ChecklistItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ChecklistID uuid.UUID `gorm:"type:uuid;not null;index" json:"checklist_id"`
	Text        string    `gorm:"not null" json:"text"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	Position    int       `gorm:"not null" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
