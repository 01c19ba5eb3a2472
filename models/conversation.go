package models

import "time"

type Conversation struct {
	// Opaque UUID string so conversation IDs are not guessable.
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"not null;index"`
	Title     string    `gorm:"size:200"`
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}
