package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/coaching"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/gap"
	"github.com/jonathan/saju-coach/internal/saju"
	"github.com/jonathan/saju-coach/internal/server/middleware"
	"github.com/jonathan/saju-coach/internal/types"
	"go.uber.org/zap"
)

// currentUser reads the authenticated user, writing a 401 when absent.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}

// fail logs server-side failures and writes the error response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := HTTPStatus(err); status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeError(w, err)
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	s.authHandler.UpdatePasswordWithUserID(w, r, userID)
}

// ---------------------------------------------------------------------
// Birth profile
// ---------------------------------------------------------------------

func (s *Server) handlePutBirth(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req types.BirthRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	moment, err := req.Moment(s.cfg.BirthLocation)
	if err != nil {
		writeError(w, &ErrValidation{Field: "Date", Message: err.Error()})
		return
	}

	profile := &db.BirthProfile{
		UserID:    userID,
		BirthAt:   moment.Time,
		Timezone:  moment.Time.Location().String(),
		HourKnown: moment.HourKnown,
		TypeCode:  req.NormalizedTypeCode(),
	}
	if err := s.store.UpsertBirthProfile(r.Context(), profile); err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.NewBirthProfileResponse(
		profile.BirthAt, profile.Timezone, profile.HourKnown, profile.TypeCode, profile.UpdatedAt))
}

func (s *Server) handleGetBirth(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := s.loadBirthProfile(r, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewBirthProfileResponse(
		profile.BirthAt, profile.Timezone, profile.HourKnown, profile.TypeCode, profile.UpdatedAt))
}

func (s *Server) loadBirthProfile(r *http.Request, userID uuid.UUID) (*db.BirthProfile, error) {
	profile, err := s.store.GetBirthProfile(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &ErrBirthProfileNotFound{}
	}
	return profile, nil
}

// ---------------------------------------------------------------------
// Charts and gaps
// ---------------------------------------------------------------------

func (s *Server) handleGetMyChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := s.loadBirthProfile(r, userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp, err := s.chartResponse(saju.BirthMoment{Time: profile.BirthAt, HourKnown: profile.HourKnown}, profile.TypeCode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePostChart(w http.ResponseWriter, r *http.Request) {
	var req types.BirthRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	moment, err := req.Moment(s.cfg.BirthLocation)
	if err != nil {
		writeError(w, &ErrValidation{Field: "Date", Message: err.Error()})
		return
	}

	resp, err := s.chartResponse(moment, req.NormalizedTypeCode())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// chartResponse computes the chart for birth; the gap is included only when
// typeCode is set.
func (s *Server) chartResponse(birth saju.BirthMoment, typeCode string) (*types.ChartResponse, error) {
	chart, profile, err := coaching.ComputeChart(s.eph, birth)
	if err != nil {
		s.metrics.IncChartComputation("ephemeris_error")
		return nil, err
	}
	s.metrics.IncChartComputation("ok")

	var result *gap.Result
	if typeCode != "" {
		r := coaching.ScoreGap(chart, typeCode)
		s.metrics.IncGapFallback(string(r.Details.Fallback))
		result = &r
	}
	return types.NewChartResponse(chart, profile, result), nil
}

func (s *Server) handlePostGap(w http.ResponseWriter, r *http.Request) {
	var req types.GapRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result := gap.CalculateGap(gap.TraitVector(req.Innate), req.AcquiredVector())
	s.metrics.IncGapFallback(string(result.Details.Fallback))
	writeJSON(w, http.StatusOK, types.NewGapResponse(result))
}
