package types

import (
	"time"

	"github.com/google/uuid"
)

// MaxChatMessageLength bounds a single user message, in characters.
const MaxChatMessageLength = 2000

// ChatRequest is one user turn.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	return validate.Struct(r)
}

// ChatMeta is the first SSE event of a chat stream.
type ChatMeta struct {
	HasChart      bool     `json:"has_chart"`
	DayMaster     string   `json:"day_master,omitempty"`
	MatchingScore *int     `json:"matching_score,omitempty"`
	GapLevel      *int     `json:"gap_level,omitempty"`
	Narrative     string   `json:"narrative,omitempty"`
	Mood          string   `json:"mood"`
	Topics        []string `json:"topics"`
	Recurring     []string `json:"recurring"`
}

// ChatChunk is a streamed piece of the reply.
type ChatChunk struct {
	Text string `json:"text"`
}

// ChatDone closes a successful chat stream.
type ChatDone struct {
	Length int `json:"length"`
}

// ChatMessage is a stored message as returned by the history endpoint.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistoryResponse lists recent messages, oldest first.
type ChatHistoryResponse struct {
	Messages []ChatMessage `json:"messages"`
}

// Memory is a remembered fact as returned to its owner.
type Memory struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoriesResponse lists memories, newest first.
type MemoriesResponse struct {
	Memories []Memory `json:"memories"`
}
