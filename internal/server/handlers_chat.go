package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/saju-coach/internal/coaching"
	"github.com/jonathan/saju-coach/internal/types"
	"go.uber.org/zap"
)

// maxListLimit caps the ?limit query parameter of list endpoints.
const maxListLimit = 100

const msgReplyInterrupted = "reply interrupted, try again"

// handleChatStream runs one coaching turn as a Server-Sent Events stream:
// meta, then chunk events, then done. Failures before the first event are
// plain JSON errors; later ones arrive as an error event.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.ChatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, &ErrValidation{Field: "Message", Message: "required"})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	_, err = s.engine.Chat(r.Context(), coaching.Request{UserID: userID, Message: message}, coaching.Hooks{
		Prepared: func(session *coaching.Session) error {
			return sse.WriteEvent(eventMeta, session.Meta())
		},
		Chunk: func(chunk string) error {
			return sse.WriteEvent(eventChunk, types.ChatChunk{Text: chunk})
		},
		Done: func(reply *coaching.Reply) {
			_ = sse.WriteEvent(eventDone, types.ChatDone{Length: utf8.RuneCountInString(reply.Text)})
		},
	})
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		s.logger.Debug("chat client disconnected", zap.String("user_id", userID.String()))
		return
	}
	if !sse.Started() {
		s.fail(w, r, err)
		return
	}

	s.logger.Warn("chat stream aborted", zap.String("user_id", userID.String()), zap.Error(err))
	if HTTPStatus(err) == http.StatusServiceUnavailable {
		sse.WriteError(msgCalculationUnavailable)
		return
	}
	sse.WriteError(msgReplyInterrupted)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, ok := listLimit(w, r, s.cfg.ChatHistoryLimit)
	if !ok {
		return
	}

	messages, err := s.store.ListRecentMessages(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := types.ChatHistoryResponse{Messages: make([]types.ChatMessage, 0, len(messages))}
	for _, m := range messages {
		topics := m.Topics
		if topics == nil {
			topics = []string{}
		}
		resp.Messages = append(resp.Messages, types.ChatMessage{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Mood:      m.Mood,
			Topics:    topics,
			CreatedAt: m.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, ok := listLimit(w, r, s.cfg.MemoryLimit)
	if !ok {
		return
	}

	memories, err := s.store.ListMemories(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := types.MemoriesResponse{Memories: make([]types.Memory, 0, len(memories))}
	for _, m := range memories {
		resp.Memories = append(resp.Memories, types.Memory{ID: m.ID, Content: m.Content, CreatedAt: m.CreatedAt})
	}
	writeJSON(w, http.StatusOK, resp)
}

// listLimit parses ?limit, defaulting to def (or 20) and capping at maxListLimit.
func listLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	if def <= 0 {
		def = 20
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
		return 0, false
	}
	return min(n, maxListLimit), true
}
