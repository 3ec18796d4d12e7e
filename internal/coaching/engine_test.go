package coaching

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/llm"
	"github.com/jonathan/saju-coach/internal/observability"
	"github.com/jonathan/saju-coach/internal/saju"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	// The Gemini client's dependency chain starts an opencensus worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type harness struct {
	engine  *Engine
	llm     *fakeLLM
	store   *fakeStore
	reg     *prometheus.Registry
	userID  uuid.UUID
	eph     celestial.Ephemeris
	metrics *observability.Metrics
}

func newHarness(t *testing.T, eph celestial.Ephemeris) *harness {
	t.Helper()
	h := &harness{
		llm:    &fakeLLM{chunks: []string{"지금은 ", "쉬어 가도 ", "괜찮아요."}},
		store:  newFakeStore(),
		reg:    prometheus.NewRegistry(),
		userID: uuid.New(),
		eph:    eph,
	}
	h.metrics = observability.MustNewMetrics(h.reg)
	h.engine = NewEngine(eph, h.llm, h.store, zap.NewNop(), h.metrics, Options{HistoryLimit: 10})
	return h
}

func (h *harness) withBirthProfile(typeCode string) *harness {
	h.store.profiles[h.userID] = &db.BirthProfile{
		UserID:    h.userID,
		BirthAt:   time.Date(1990, time.January, 1, 12, 0, 0, 0, time.UTC),
		Timezone:  "UTC",
		HourKnown: true,
		TypeCode:  typeCode,
	}
	return h
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metrics:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestPrepare_WithBirthProfile(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{}).withBirthProfile("ENTJ")

	s, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "회사 일이 너무 힘들어요"})
	require.NoError(t, err)

	require.NotNil(t, s.Chart)
	assert.Equal(t, "己巳", s.Chart.Year.String())
	assert.Equal(t, "丙寅", s.Chart.Day.String())
	require.NotNil(t, s.Profile)
	assert.Equal(t, 38, s.Profile.LifeWork)
	assert.Equal(t, 21, s.Profile.Purpose)

	require.NotNil(t, s.Gap)
	assert.Equal(t, 61, s.Gap.MatchingScore)
	assert.Equal(t, 39, s.Gap.GapLevel)
	require.NotNil(t, s.Narrative)
	assert.Equal(t, gap.BranchRest, s.Narrative.Branch)

	assert.Contains(t, s.System, "己巳 丙子 丙寅 甲午")
	assert.Contains(t, s.System, "일치도 61 / 간극 39")
	assert.Contains(t, s.System, "성격 유형 ENTJ")
	assert.Contains(t, s.Prompt, "사용자: 회사 일이 너무 힘들어요")
	assert.Contains(t, s.Prompt, "감정: negative")
	assert.Contains(t, s.Prompt, "주제: career")
	assert.Contains(t, s.Prompt, s.Narrative.Title)
	assert.NotContains(t, s.System+s.Prompt, "{{.")

	meta := s.Meta()
	assert.True(t, meta.HasChart)
	assert.Equal(t, "丙", meta.DayMaster)
	require.NotNil(t, meta.MatchingScore)
	assert.Equal(t, 61, *meta.MatchingScore)
	assert.Equal(t, "rest", meta.Narrative)

	assert.Equal(t, 1.0, counterValue(t, h.reg, "saju_coach_chart_computations_total", map[string]string{"result": "ok"}))
}

func TestPrepare_WithoutBirthProfile(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{})

	s, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "안녕하세요"})
	require.NoError(t, err)

	assert.Nil(t, s.Chart)
	assert.Nil(t, s.Gap)
	assert.Contains(t, s.System, "생년월일 정보가 아직 없습니다")
	assert.Contains(t, s.Prompt, "(첫 대화)")

	meta := s.Meta()
	assert.False(t, meta.HasChart)
	assert.Nil(t, meta.MatchingScore)
}

func TestPrepare_InvalidTypeCodeFallsBack(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{}).withBirthProfile("XXXX")

	s, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "hi"})
	require.NoError(t, err)

	require.NotNil(t, s.Gap)
	assert.Equal(t, gap.FallbackMissing, s.Gap.Details.Fallback)
	assert.Equal(t, 100, s.Gap.MatchingScore)
	assert.Equal(t, gap.BranchGrowth, s.Narrative.Branch)
	assert.Contains(t, s.System, "간극을 계산하지 않았습니다")
	assert.Equal(t, 1.0, counterValue(t, h.reg, "saju_coach_gap_fallbacks_total", map[string]string{"reason": "missing_input"}))
}

func TestPrepare_EphemerisFailure(t *testing.T) {
	failing := celestial.EphemerisFunc(func(time.Time) (float64, error) { return 0, errBoom })
	h := newHarness(t, failing).withBirthProfile("ENTJ")

	_, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "hi"})
	require.Error(t, err)

	var ephErr *celestial.EphemerisError
	require.True(t, errors.As(err, &ephErr))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1.0, counterValue(t, h.reg, "saju_coach_chart_computations_total", map[string]string{"result": "ephemeris_error"}))
}

func TestPrepare_ProfileLoadFailure(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{})
	h.store.profileErr = errBoom

	_, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "hi"})
	assert.ErrorIs(t, err, errBoom)
}

func TestPrepare_HistoryAndMemoryFailuresDegrade(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{}).withBirthProfile("ENTJ")
	h.store.historyErr = errBoom
	h.store.memoryErr = errBoom

	s, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "hi"})
	require.NoError(t, err)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Memories)
	assert.Contains(t, s.System, "(아직 없음)")
}

func TestPrepare_UsesHistoryAndMemories(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{}).withBirthProfile("")
	ctx := context.Background()
	for _, m := range []db.ChatMessage{
		{UserID: h.userID, Role: db.RoleUser, Content: "이직을 해야 할까요"},
		{UserID: h.userID, Role: db.RoleAssistant, Content: "무엇이 가장 마음에 걸리나요?"},
	} {
		msg := m
		require.NoError(t, h.store.SaveMessage(ctx, &msg))
	}
	_, err := h.store.SaveMemory(ctx, h.userID, "스타트업에서 일한다", nil)
	require.NoError(t, err)

	s, err := h.engine.Prepare(ctx, Request{UserID: h.userID, Message: "회사에서 또 야근했어요"})
	require.NoError(t, err)

	assert.Contains(t, s.Prompt, "사용자: 이직을 해야 할까요\n코치: 무엇이 가장 마음에 걸리나요?")
	assert.Contains(t, s.Prompt, "반복되는 고민: career")
	assert.Contains(t, s.System, "- 스타트업에서 일한다")
}

func TestStream_DeliversChunks(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{}).withBirthProfile("ENTJ")
	ctx := context.Background()

	s, err := h.engine.Prepare(ctx, Request{UserID: h.userID, Message: "hi"})
	require.NoError(t, err)

	var got []string
	reply, err := h.engine.Stream(ctx, s, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, h.llm.chunks, got)
	assert.Equal(t, strings.Join(h.llm.chunks, ""), reply.Text)
	require.Len(t, h.llm.streamReqs, 1)
	assert.Equal(t, llm.TierStandard, h.llm.streamReqs[0].Tier)
	assert.Equal(t, s.System, h.llm.streamReqs[0].System)
	assert.Equal(t, s.Prompt, h.llm.streamReqs[0].Prompt)
}

func TestStream_ErrorKeepsPartialText(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{})
	h.llm.streamErr = errBoom

	s, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "hi"})
	require.NoError(t, err)

	reply, err := h.engine.Stream(context.Background(), s, nil)
	assert.ErrorIs(t, err, errBoom)
	require.NotNil(t, reply)
	assert.Equal(t, "지금은 쉬어 가도 괜찮아요.", reply.Text)
}

func TestStream_HandlerErrorStops(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{})
	s, err := h.engine.Prepare(context.Background(), Request{UserID: h.userID, Message: "hi"})
	require.NoError(t, err)

	calls := 0
	_, err = h.engine.Stream(context.Background(), s, func(string) error {
		calls++
		return context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestChat_EndToEnd(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{}).withBirthProfile("ENTJ")
	h.llm.jsonResp = `{"topics": ["career"], "mood": "negative", "memory": "야근이 잦다"}`

	var order []string
	reply, err := h.engine.Chat(context.Background(), Request{UserID: h.userID, Message: "회사에서 또 야근했어요"}, Hooks{
		Prepared: func(s *Session) error {
			order = append(order, "prepared")
			assert.True(t, s.Meta().HasChart)
			return nil
		},
		Chunk: func(string) error {
			order = append(order, "chunk")
			return nil
		},
		Done: func(r *Reply) {
			order = append(order, "done")
			assert.Empty(t, h.store.messages)
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Text)
	assert.Equal(t, []string{"prepared", "chunk", "chunk", "chunk", "done"}, order)

	require.Len(t, h.store.messages, 2)
	assert.Equal(t, db.RoleUser, h.store.messages[0].Role)
	assert.Equal(t, db.RoleAssistant, h.store.messages[1].Role)
	require.Len(t, h.store.memories, 1)
	assert.Equal(t, 1.0, counterValue(t, h.reg, "saju_coach_chat_requests_total", map[string]string{"outcome": "ok"}))
}

func TestChat_EphemerisFailureCountsUnavailable(t *testing.T) {
	failing := celestial.EphemerisFunc(func(time.Time) (float64, error) { return 0, errBoom })
	h := newHarness(t, failing).withBirthProfile("ENTJ")

	_, err := h.engine.Chat(context.Background(), Request{UserID: h.userID, Message: "hi"}, Hooks{
		Prepared: func(*Session) error {
			t.Fatal("prepared hook must not run")
			return nil
		},
	})
	require.Error(t, err)
	assert.Empty(t, h.llm.streamReqs)
	assert.Equal(t, 1.0, counterValue(t, h.reg, "saju_coach_chat_requests_total", map[string]string{"outcome": "unavailable"}))
}

func TestChat_PreparedHookAborts(t *testing.T) {
	h := newHarness(t, celestial.MeeusEphemeris{})

	_, err := h.engine.Chat(context.Background(), Request{UserID: h.userID, Message: "hi"}, Hooks{
		Prepared: func(*Session) error { return errBoom },
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, h.llm.streamReqs)
	assert.Empty(t, h.store.messages)
}

func TestComputeChart_SingleEphemerisReading(t *testing.T) {
	calls := 0
	eph := celestial.EphemerisFunc(func(t time.Time) (float64, error) {
		calls++
		return celestial.MeeusEphemeris{}.SolarLongitude(t)
	})

	chart, profile, err := ComputeChart(eph, saju.NewBirthMoment(1990, time.January, 1, 12, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "甲午", chart.Hour.String())
	assert.Equal(t, 39, profile.Evolution)
	assert.Equal(t, 48, profile.Radiance)
}

func TestScoreGap(t *testing.T) {
	chart := saju.ComputeWithLongitude(saju.NewBirthMoment(1990, time.January, 1, 12, 0, time.UTC), 280.8155)

	assert.Equal(t, 61, ScoreGap(chart, "entj").MatchingScore)
	assert.Equal(t, gap.FallbackMissing, ScoreGap(chart, "").Details.Fallback)
	assert.Equal(t, gap.FallbackMissing, ScoreGap(nil, "ENTJ").Details.Fallback)
}
