package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/coaching"
	"github.com/jonathan/saju-coach/internal/config"
	"github.com/jonathan/saju-coach/internal/db"
	"github.com/jonathan/saju-coach/internal/llm"
	"github.com/jonathan/saju-coach/internal/observability"
	"github.com/jonathan/saju-coach/internal/server/middleware"
	"github.com/jonathan/saju-coach/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// Store is everything the API persists. *db.DB satisfies it.
type Store interface {
	DBClient
	coaching.Store
	UpsertBirthProfile(ctx context.Context, p *db.BirthProfile) error
}

// Config holds server configuration
type Config struct {
	Port             int
	AllowedOrigin    string
	BirthLocation    *time.Location // zone for birth moments posted without one
	ChatHistoryLimit int
	MemoryLimit      int
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Store     Store
	LLM       llm.Client
	Ephemeris celestial.Ephemeris
	Passwords *config.PasswordConfig
	JWT       *config.JWTConfig
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
	Registry  *prometheus.Registry
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	cfg         Config
	store       Store
	llm         llm.Client
	eph         celestial.Ephemeris
	engine      *coaching.Engine
	logger      *zap.Logger
	metrics     *observability.Metrics
	registry    *prometheus.Registry
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	closers     []func()
}

// Open builds a Server from application configuration: it connects to
// Postgres, ensures the schema, and creates the Gemini client.
func Open(ctx context.Context, appCfg config.Config, logger *zap.Logger) (*Server, error) {
	passwords, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	database, err := db.Connect(ctx, appCfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	llmConfig := llm.DefaultConfig()
	if appCfg.ChatModel != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, appCfg.ChatModel)
	}
	client, err := llm.NewClient(ctx, llmConfig, appCfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s, err := New(Config{
		Port:             appCfg.Port,
		AllowedOrigin:    appCfg.AllowedOrigin,
		BirthLocation:    appCfg.Location(),
		ChatHistoryLimit: appCfg.ChatHistoryLimit,
		MemoryLimit:      appCfg.MemoryLimit,
	}, Deps{
		Store:     database,
		LLM:       client,
		Ephemeris: celestial.MeeusEphemeris{},
		Passwords: passwords,
		JWT:       jwtConfig,
		RateLimit: ratelimit.LoadConfig(),
		Logger:    logger,
		Registry:  registry,
	})
	if err != nil {
		_ = client.Close()
		database.Close()
		return nil, err
	}
	s.closers = append(s.closers, func() { _ = client.Close() }, database.Close)
	return s, nil
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Ephemeris == nil {
		deps.Ephemeris = celestial.MeeusEphemeris{}
	}
	if cfg.BirthLocation == nil {
		cfg.BirthLocation = time.UTC
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "*"
	}

	limiter, err := ratelimit.NewLimiter(deps.RateLimit)
	if err != nil {
		return nil, err
	}
	metrics := observability.MustNewMetrics(deps.Registry)

	s := &Server{
		cfg:         cfg,
		store:       deps.Store,
		llm:         deps.LLM,
		eph:         deps.Ephemeris,
		logger:      deps.Logger,
		metrics:     metrics,
		registry:    deps.Registry,
		rateLimiter: limiter,
		jwtService:  NewJWTService(deps.JWT),
	}
	s.engine = coaching.NewEngine(deps.Ephemeris, deps.LLM, deps.Store, deps.Logger, metrics, coaching.Options{
		HistoryLimit: cfg.ChatHistoryLimit,
		MemoryLimit:  cfg.MemoryLimit,
	})
	s.authHandler = NewAuthHandler(NewUserService(deps.Store, deps.Passwords), s.jwtService, deps.Logger)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // chat replies stream for a while
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	// Accounts
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /users/me/password", protect(s.handleUpdatePassword))

	// Birth profile and charts
	mux.Handle("PUT /users/me/birth", protect(s.handlePutBirth))
	mux.Handle("GET /users/me/birth", protect(s.handleGetBirth))
	mux.Handle("GET /users/me/chart", protect(s.handleGetMyChart))
	mux.HandleFunc("POST /chart", s.handlePostChart)
	mux.HandleFunc("POST /gap", s.handlePostGap)

	// Coaching chat
	mux.Handle("POST /chat/stream", protect(s.handleChatStream))
	mux.Handle("GET /chat/history", protect(s.handleChatHistory))
	mux.Handle("GET /users/me/memories", protect(s.handleListMemories))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start listens until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.cfg.AllowedOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if s.cfg.AllowedOrigin != "*" {
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging. It forwards
// Flush so SSE handlers still stream through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs each request and counts it by status class
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.IncHTTPRequest(r.Method, status)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes err as {"error": ...} with the status HTTPStatus picks.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, HTTPStatus(err), map[string]string{"error": publicMessage(err)})
}

type validatable interface {
	Validate() error
}

// decodeAndValidate reads a JSON body into req and validates it, writing a
// 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req validatable) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		writeError(w, &ErrValidation{Message: "invalid request body"})
		return false
	}
	if err := req.Validate(); err != nil {
		writeError(w, extractValidationErrors(err))
		return false
	}
	return true
}

// extractClientID uses the peer IP; forwarded headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)
	writeJSON(w, http.StatusTooManyRequests, response)
}
