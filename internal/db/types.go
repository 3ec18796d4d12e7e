package db

import (
	"time"

	"github.com/google/uuid"
)

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// User represents a user account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BirthProfile is the stored birth moment of a user.
// BirthAt is the instant; Timezone is the IANA zone the user entered it in.
type BirthProfile struct {
	UserID    uuid.UUID `json:"user_id"`
	BirthAt   time.Time `json:"birth_at"`
	Timezone  string    `json:"timezone"`
	HourKnown bool      `json:"hour_known"`
	TypeCode  string    `json:"type_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one side of a chat turn
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory is a fact about the user extracted from a conversation
type Memory struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Content         string     `json:"content"`
	SourceMessageID *uuid.UUID `json:"source_message_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
