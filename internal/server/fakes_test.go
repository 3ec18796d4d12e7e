package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/llm"
)

var errBoom = errors.New("boom")

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*db.User
	profiles map[uuid.UUID]*db.BirthProfile
	messages []db.ChatMessage
	memories []db.Memory

	updatePasswordErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*db.User),
		profiles: make(map[uuid.UUID]*db.BirthProfile),
	}
}

func (s *memStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, _ := s.GetUserByEmail(ctx, email)
	return u != nil, nil
}

func (s *memStore) CreateUser(ctx context.Context, name, email, phone string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, Phone: phone, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *memStore) GetUser(ctx context.Context, id uuid.UUID) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updatePasswordErr != nil {
		return s.updatePasswordErr
	}
	u, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.PasswordHash = hash
	u.PasswordSet = true
	return nil
}

func (s *memStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *memStore) UpsertBirthProfile(ctx context.Context, p *db.BirthProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	copied := *p
	s.profiles[p.UserID] = &copied
	return nil
}

func (s *memStore) GetBirthProfile(ctx context.Context, userID uuid.UUID) (*db.BirthProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) ListRecentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]db.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.ChatMessage
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memStore) ListMemories(ctx context.Context, userID uuid.UUID, limit int) ([]db.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Memory
	for i := len(s.memories) - 1; i >= 0 && len(out) < limit; i-- {
		if s.memories[i].UserID == userID {
			out = append(out, s.memories[i])
		}
	}
	return out, nil
}

func (s *memStore) SaveMessage(ctx context.Context, msg *db.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *memStore) UpdateMessageMetadata(ctx context.Context, id uuid.UUID, mood string, topics []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Mood = mood
			s.messages[i].Topics = topics
			return nil
		}
	}
	return errors.New("message not found")
}

func (s *memStore) SaveMemory(ctx context.Context, userID uuid.UUID, content string, source *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memories {
		if m.UserID == userID && m.Content == content {
			return false, nil
		}
	}
	s.memories = append(s.memories, db.Memory{
		ID: uuid.New(), UserID: userID, Content: content, SourceMessageID: source, CreatedAt: time.Now(),
	})
	return true, nil
}

func (s *memStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// scriptedLLM replays fixed chunks and a fixed metadata document.
type scriptedLLM struct {
	chunks    []string
	streamErr error
	jsonResp  string
}

func (f *scriptedLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (f *scriptedLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.jsonResp, nil
}

func (f *scriptedLLM) StreamContent(ctx context.Context, req llm.StreamRequest, onChunk llm.ChunkHandler) (string, error) {
	var text string
	for _, c := range f.chunks {
		text += c
		if err := onChunk(c); err != nil {
			return text, err
		}
	}
	return text, f.streamErr
}

func (f *scriptedLLM) GetModel(tier llm.ModelTier) string { return "scripted" }

func (f *scriptedLLM) Close() error { return nil }
