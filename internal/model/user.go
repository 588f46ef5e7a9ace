package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Username       string    `gorm:"uniqueIndex;not null"`
	Email          string    `gorm:"not null"`
	HashedPassword string    `gorm:"not null"`
	FullName       string    `gorm:"not null;default:''"`
	Phone          string    `gorm:"not null;default:''"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}
