package coaching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/insight"
	"github.com/jonathan/saju-coach/internal/llm"
	"github.com/jonathan/saju-coach/internal/prompts"
	"github.com/jonathan/saju-coach/internal/schemas"
	"go.uber.org/zap"
)

// Post-processing stages, used as failure labels.
const (
	StageSaveMessages = "save_messages"
	StageExtract      = "extract"
	StageValidate     = "validate"
	StageMetadata     = "update_metadata"
	StageMemory       = "save_memory"
)

// Metadata is what the extraction model reports about a finished turn.
type Metadata struct {
	Topics []string `json:"topics"`
	Mood   string   `json:"mood"`
	Memory string   `json:"memory,omitempty"`
}

// Outcome summarizes post-processing for logs and tests. It never reaches the client.
type Outcome struct {
	UserMessageID      uuid.UUID
	AssistantMessageID uuid.UUID
	Metadata           *Metadata
	MemorySaved        bool
	Failures           []string
}

func (o *Outcome) fail(stage string) {
	o.Failures = append(o.Failures, stage)
}

// PostProcess persists the turn and extracts metadata and memory from it.
// Every step is best-effort: failures are logged and counted, and later steps
// still run where they can.
func (e *Engine) PostProcess(ctx context.Context, s *Session, reply *Reply) *Outcome {
	out := &Outcome{}
	if reply == nil {
		return out
	}
	log := e.logger.With(zap.String("user_id", s.UserID.String()))

	userMsg := &db.ChatMessage{
		UserID:  s.UserID,
		Role:    db.RoleUser,
		Content: s.Message,
		Mood:    string(s.Report.Sentiment.Mood),
		Topics:  topicStrings(s.Report.Topics),
	}
	if err := e.store.SaveMessage(ctx, userMsg); err != nil {
		e.failStage(log, out, StageSaveMessages, err)
	} else {
		out.UserMessageID = userMsg.ID
	}

	assistantMsg := &db.ChatMessage{UserID: s.UserID, Role: db.RoleAssistant, Content: reply.Text}
	if err := e.store.SaveMessage(ctx, assistantMsg); err != nil {
		e.failStage(log, out, StageSaveMessages, err)
	} else {
		out.AssistantMessageID = assistantMsg.ID
	}

	meta, stage, err := e.extractMetadata(ctx, s.Message, reply.Text)
	if err != nil {
		e.failStage(log, out, stage, err)
		return out
	}
	out.Metadata = meta

	if out.UserMessageID != uuid.Nil {
		if err := e.store.UpdateMessageMetadata(ctx, out.UserMessageID, meta.Mood, meta.Topics); err != nil {
			e.failStage(log, out, StageMetadata, err)
		}
	}

	if memory := strings.TrimSpace(meta.Memory); memory != "" {
		var source *uuid.UUID
		if out.UserMessageID != uuid.Nil {
			source = &out.UserMessageID
		}
		saved, err := e.store.SaveMemory(ctx, s.UserID, memory, source)
		if err != nil {
			e.failStage(log, out, StageMemory, err)
		}
		out.MemorySaved = saved
	}

	log.Debug("chat post-processed",
		zap.Strings("topics", meta.Topics),
		zap.String("mood", meta.Mood),
		zap.Bool("memory_saved", out.MemorySaved),
		zap.Strings("failures", out.Failures),
	)
	return out
}

// extractMetadata asks the lite model for topics, mood and memory, then
// repairs and validates its JSON. The returned stage names the failing step.
func (e *Engine) extractMetadata(ctx context.Context, message, reply string) (*Metadata, string, error) {
	input, err := prompts.Render(promptFile, "metadata-input", map[string]string{
		"Message": message,
		"Reply":   reply,
	})
	if err != nil {
		return nil, StageExtract, err
	}

	raw, err := e.llm.GenerateJSON(ctx, llm.BuildExtractionPrompt(llm.ChatMetadataSchema(), input), llm.TierLite)
	if err != nil {
		return nil, StageExtract, fmt.Errorf("metadata generation failed: %w", err)
	}

	repaired, err := llm.RepairJSON(raw)
	if err != nil {
		return nil, StageValidate, err
	}
	if err := schemas.Validate(schemas.ChatMetadata, repaired); err != nil {
		return nil, StageValidate, err
	}

	var meta Metadata
	if err := llm.DecodeJSON(repaired, &meta); err != nil {
		return nil, StageValidate, err
	}
	if meta.Topics == nil {
		meta.Topics = []string{}
	}
	return &meta, "", nil
}

func (e *Engine) failStage(log *zap.Logger, out *Outcome, stage string, err error) {
	out.fail(stage)
	e.metrics.IncPostProcessFailure(stage)
	log.Warn("chat post-processing failed", zap.String("stage", stage), zap.Error(err))
}

func topicStrings(topics []insight.Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = string(t)
	}
	return out
}
