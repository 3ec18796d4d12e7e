// Package coaching assembles a chat turn: chart and gap computation, heuristic
// analysis, prompt building, streamed generation and best-effort post-processing.
package coaching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/insight"
	"github.com/jonathan/saju-coach/internal/llm"
	"github.com/jonathan/saju-coach/internal/observability"
	"github.com/jonathan/saju-coach/internal/saju"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence the engine needs. *db.DB satisfies it.
type Store interface {
	GetBirthProfile(ctx context.Context, userID uuid.UUID) (*db.BirthProfile, error)
	ListRecentMessages(ctx context.Context, userID uuid.UUID, limit int) ([]db.ChatMessage, error)
	ListMemories(ctx context.Context, userID uuid.UUID, limit int) ([]db.Memory, error)
	SaveMessage(ctx context.Context, msg *db.ChatMessage) error
	UpdateMessageMetadata(ctx context.Context, id uuid.UUID, mood string, topics []string) error
	SaveMemory(ctx context.Context, userID uuid.UUID, content string, source *uuid.UUID) (bool, error)
}

// Options tunes how much context goes into each prompt.
type Options struct {
	HistoryLimit int
	MemoryLimit  int
}

func (o Options) withDefaults() Options {
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 20
	}
	if o.MemoryLimit <= 0 {
		o.MemoryLimit = 20
	}
	return o
}

// Engine runs chat turns.
type Engine struct {
	eph     celestial.Ephemeris
	llm     llm.Client
	store   Store
	logger  *zap.Logger
	metrics *observability.Metrics
	opts    Options
}

// NewEngine creates an Engine. A nil logger is replaced by zap.NewNop; a nil
// metrics records nothing.
func NewEngine(eph celestial.Ephemeris, client llm.Client, store Store, logger *zap.Logger, metrics *observability.Metrics, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		eph:     eph,
		llm:     client,
		store:   store,
		logger:  logger,
		metrics: metrics,
		opts:    opts.withDefaults(),
	}
}

// Request is one user turn.
type Request struct {
	UserID  uuid.UUID
	Message string
}

// Session is everything computed for a turn before generation starts.
type Session struct {
	UserID   uuid.UUID
	Message  string
	TypeCode string

	Chart     *saju.Chart              // nil without a birth profile
	Profile   *celestial.NeuralProfile // nil without a birth profile
	Gap       *gap.Result              // nil without a chart
	Narrative *gap.Narrative           // nil without a chart

	Report   insight.Report
	History  []db.ChatMessage
	Memories []db.Memory

	System string
	Prompt string
}

// Reply is a finished (or interrupted) model reply.
type Reply struct {
	Text     string
	Duration time.Duration
}

// Prepare loads the user's context and builds the prompt. The birth profile,
// history and memories load concurrently. An ephemeris failure is returned
// as *celestial.EphemerisError; history and memory failures only degrade the prompt.
func (e *Engine) Prepare(ctx context.Context, req Request) (*Session, error) {
	s := &Session{UserID: req.UserID, Message: req.Message}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.loadChart(gctx, s)
	})
	g.Go(func() error {
		history, err := e.store.ListRecentMessages(gctx, req.UserID, e.opts.HistoryLimit)
		if err != nil {
			e.logger.Warn("history unavailable", zap.String("user_id", req.UserID.String()), zap.Error(err))
			return nil
		}
		s.History = history
		return nil
	})
	g.Go(func() error {
		memories, err := e.store.ListMemories(gctx, req.UserID, e.opts.MemoryLimit)
		if err != nil {
			e.logger.Warn("memories unavailable", zap.String("user_id", req.UserID.String()), zap.Error(err))
			return nil
		}
		s.Memories = memories
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Report = insight.Analyze(req.Message, userMessages(s.History), s.Chart, s.TypeCode)

	system, prompt, err := buildPrompts(s)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}
	s.System, s.Prompt = system, prompt

	e.logger.Debug("chat session prepared",
		zap.String("user_id", req.UserID.String()),
		zap.Bool("has_chart", s.Chart != nil),
		zap.Int("history", len(s.History)),
		zap.Int("memories", len(s.Memories)),
		zap.String("mood", string(s.Report.Sentiment.Mood)),
	)
	return s, nil
}

// loadChart fills the chart, neural profile, gap and narrative from the stored birth profile.
func (e *Engine) loadChart(ctx context.Context, s *Session) error {
	profile, err := e.store.GetBirthProfile(ctx, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to load birth profile: %w", err)
	}
	if profile == nil {
		return nil
	}
	s.TypeCode = profile.TypeCode

	chart, neural, err := ComputeChart(e.eph, saju.BirthMoment{Time: profile.BirthAt, HourKnown: profile.HourKnown})
	if err != nil {
		e.metrics.IncChartComputation("ephemeris_error")
		return err
	}
	e.metrics.IncChartComputation("ok")
	s.Chart, s.Profile = chart, neural

	result := ScoreGap(chart, profile.TypeCode)
	e.metrics.IncGapFallback(string(result.Details.Fallback))
	narrative := result.Narrative()
	s.Gap, s.Narrative = &result, &narrative
	return nil
}

// ComputeChart computes the chart and the neural profile from a single
// ephemeris reading at the birth instant.
func ComputeChart(eph celestial.Ephemeris, birth saju.BirthMoment) (*saju.Chart, *celestial.NeuralProfile, error) {
	chart, err := saju.Compute(birth, eph)
	if err != nil {
		return nil, nil, err
	}
	profile := celestial.ProfileFromLongitude(chart.SunLongitude)
	return chart, &profile, nil
}

// ScoreGap compares the chart with the acquired vector of a type code. An
// invalid or empty type code scores as missing input.
func ScoreGap(chart *saju.Chart, typeCode string) gap.Result {
	acquired, err := gap.FromTypeCode(typeCode)
	if err != nil {
		acquired = nil
	}
	if chart == nil {
		return gap.CalculateGap(nil, acquired)
	}
	return gap.CalculateGap(chart.InnateVector(), acquired)
}

// Stream generates the reply, passing chunks to onChunk as they arrive.
func (e *Engine) Stream(ctx context.Context, s *Session, onChunk llm.ChunkHandler) (*Reply, error) {
	start := time.Now()
	text, err := e.llm.StreamContent(ctx, llm.StreamRequest{
		System: s.System,
		Prompt: s.Prompt,
		Tier:   llm.TierStandard,
	}, onChunk)
	reply := &Reply{Text: text, Duration: time.Since(start)}

	if err != nil {
		status := "error"
		if errors.Is(err, context.Canceled) {
			status = "canceled"
		}
		e.metrics.ObserveStream(status, reply.Duration)
		e.logger.Warn("chat stream failed",
			zap.String("user_id", s.UserID.String()),
			zap.Int("partial_length", len(text)),
			zap.Duration("duration", reply.Duration),
			zap.Error(err),
		)
		return reply, fmt.Errorf("failed to stream reply: %w", err)
	}

	e.metrics.ObserveStream("ok", reply.Duration)
	return reply, nil
}

// Hooks observe a chat turn as it runs. Nil hooks are skipped.
type Hooks struct {
	// Prepared runs before generation; an error aborts the turn.
	Prepared func(*Session) error
	Chunk    llm.ChunkHandler
	// Done runs after a successful generation, before post-processing.
	Done func(*Reply)
}

// Chat runs a whole turn: Prepare, Stream, then PostProcess. Post-processing
// is detached from ctx so a client hanging up after the reply does not lose it.
func (e *Engine) Chat(ctx context.Context, req Request, hooks Hooks) (*Reply, error) {
	s, err := e.Prepare(ctx, req)
	if err != nil {
		var ephErr *celestial.EphemerisError
		if errors.As(err, &ephErr) {
			e.metrics.IncChatRequest("unavailable")
		} else {
			e.metrics.IncChatRequest("error")
		}
		return nil, err
	}
	if hooks.Prepared != nil {
		if err := hooks.Prepared(s); err != nil {
			e.metrics.IncChatRequest("error")
			return nil, err
		}
	}

	reply, err := e.Stream(ctx, s, hooks.Chunk)
	if err != nil {
		e.metrics.IncChatRequest("error")
		return reply, err
	}
	e.metrics.IncChatRequest("ok")
	if hooks.Done != nil {
		hooks.Done(reply)
	}

	e.PostProcess(context.WithoutCancel(ctx), s, reply)
	return reply, nil
}

func userMessages(history []db.ChatMessage) []string {
	var msgs []string
	for _, m := range history {
		if m.Role == db.RoleUser {
			msgs = append(msgs, m.Content)
		}
	}
	return msgs
}
