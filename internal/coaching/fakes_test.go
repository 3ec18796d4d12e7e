package coaching

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/llm"
)

var errBoom = errors.New("boom")

type fakeLLM struct {
	mu sync.Mutex

	chunks    []string
	streamErr error
	jsonResp  string
	jsonErr   error

	streamReqs  []llm.StreamRequest
	jsonPrompts []string
}

func (f *fakeLLM) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jsonPrompts = append(f.jsonPrompts, prompt)
	return f.jsonResp, f.jsonErr
}

func (f *fakeLLM) StreamContent(ctx context.Context, req llm.StreamRequest, onChunk llm.ChunkHandler) (string, error) {
	f.mu.Lock()
	f.streamReqs = append(f.streamReqs, req)
	f.mu.Unlock()

	var text string
	for _, c := range f.chunks {
		text += c
		if onChunk != nil {
			if err := onChunk(c); err != nil {
				return text, err
			}
		}
	}
	return text, f.streamErr
}

func (f *fakeLLM) GetModel(tier llm.ModelTier) string { return "fake-" + string(tier) }

func (f *fakeLLM) Close() error { return nil }

type fakeStore struct {
	mu sync.Mutex

	profiles map[uuid.UUID]*db.BirthProfile
	messages []db.ChatMessage
	memories []db.Memory

	profileErr error
	historyErr error
	memoryErr  error
	saveErr    error
	updateErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[uuid.UUID]*db.BirthProfile)}
}

func (s *fakeStore) GetBirthProfile(ctx context.Context, userID uuid.UUID) (*db.BirthProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	return s.profiles[userID], nil
}

func (s *fakeStore) ListRecentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]db.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
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

func (s *fakeStore) ListMemories(ctx context.Context, userID uuid.UUID, limit int) ([]db.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memoryErr != nil {
		return nil, s.memoryErr
	}
	var out []db.Memory
	for _, m := range s.memories {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) SaveMessage(ctx context.Context, msg *db.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *fakeStore) UpdateMessageMetadata(ctx context.Context, id uuid.UUID, mood string, topics []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Mood = mood
			s.messages[i].Topics = topics
			return nil
		}
	}
	return errors.New("message not found")
}

func (s *fakeStore) SaveMemory(ctx context.Context, userID uuid.UUID, content string, source *uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memories {
		if m.UserID == userID && m.Content == content {
			return false, nil
		}
	}
	s.memories = append(s.memories, db.Memory{
		ID:              uuid.New(),
		UserID:          userID,
		Content:         content,
		SourceMessageID: source,
		CreatedAt:       time.Now(),
	})
	return true, nil
}
