package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             string `gorm:"primaryKey;size:36"`
	ConversationID string `gorm:"index;not null;size:36"`
	// Seq is the insertion position within the conversation; both messages
	// of an exchange share a timestamp, so the timestamp alone cannot
	// order them.
	Seq       int       `gorm:"index;not null"`
	Role      string    `gorm:"size:20;not null"` // "user" or "assistant"
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"index;not null"`
}
