package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"autosales-assistant-backend/internal/assistant"
	"autosales-assistant-backend/internal/catalog"
	"autosales-assistant-backend/internal/config"
	"autosales-assistant-backend/internal/locale"
	"autosales-assistant-backend/internal/types"
)

// Assistant is the conversation core behind the HTTP transport.
type Assistant interface {
	Handle(ctx context.Context, in assistant.Incoming, presence assistant.Presence) []assistant.Segment
	ResolveProfile(userID int64, loc locale.Locale) (catalog.ClientProfile, bool)
	EnsureDemoProfile(userID int64, firstName string) (catalog.ClientProfile, bool)
}

type HealthChecker interface {
	HealthCheck() error
}

type Deps struct {
	Assistant Assistant
	// Database is optional; when set it is pinged by /api/health.
	Database HealthChecker
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type Server struct {
	router    *chi.Mux
	assistant Assistant
	database  HealthChecker
	cfg       config.Config
	logger    *zap.Logger
}

func NewServer(cfg config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:    r,
		assistant: deps.Assistant,
		database:  deps.Database,
		cfg:       cfg,
		logger:    logger.Named("http"),
	}
	r.Use(s.requestLogger)
	s.routes(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) routes(metrics http.Handler) {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/messages", s.handleMessage)
	s.router.Post("/api/messages/stream", s.handleMessageStream)
	s.router.Get("/api/clients/{userId}", s.handleGetClient)
	s.router.Post("/api/demo/clients", s.handleDemoClient)
	s.router.Handle("/metrics", metrics)
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", rid)
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// statusWriter records the response code and keeps streaming available.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		if err := s.database.HealthCheck(); err != nil {
			s.logger.Warn("database health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decodeMessage(w http.ResponseWriter, r *http.Request) (assistant.Incoming, bool) {
	var req types.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return assistant.Incoming{}, false
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return assistant.Incoming{}, false
	}
	if req.UserID < 0 {
		s.writeError(w, http.StatusBadRequest, "userId must be positive")
		return assistant.Incoming{}, false
	}
	hint := req.Locale
	if hint == "" {
		hint = r.Header.Get("Accept-Language")
	}
	return assistant.Incoming{
		UserID:    resolveUserID(w, r, req.UserID),
		Locale:    hint,
		FirstName: req.FirstName,
		Text:      req.Text,
	}, true
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}
	segments := s.assistant.Handle(r.Context(), in, assistant.NopPresence{})
	if segments == nil {
		segments = []assistant.Segment{}
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{UserID: in.UserID, Segments: segments})
}

func (s *Server) handleMessageStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	in, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	stream := &ndjsonPresence{enc: json.NewEncoder(w), flusher: flusher}
	for _, seg := range s.assistant.Handle(r.Context(), in, stream) {
		stream.emit(types.StreamEvent{Type: types.EventSegment, Text: seg.Text, Markdown: seg.Markdown})
	}
	stream.emit(types.StreamEvent{Type: types.EventDone, UserID: in.UserID})
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || userID <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid userId")
		return
	}
	loc := locale.Detect("", r.URL.Query().Get("locale"))
	profile, known := s.assistant.ResolveProfile(userID, loc)
	if !known {
		s.writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, types.ClientResponse{Known: true, Profile: profile})
}

func (s *Server) handleDemoClient(w http.ResponseWriter, r *http.Request) {
	var req types.DemoClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID < 0 {
		s.writeError(w, http.StatusBadRequest, "userId must be positive")
		return
	}
	userID := resolveUserID(w, r, req.UserID)
	profile, created := s.assistant.EnsureDemoProfile(userID, req.FirstName)
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeJSON(w, code, types.DemoClientResponse{Created: created, Profile: profile})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// ndjsonPresence writes progress signals as NDJSON lines and flushes each one.
type ndjsonPresence struct {
	mu      sync.Mutex
	enc     *json.Encoder
	flusher http.Flusher
}

func (p *ndjsonPresence) emit(ev types.StreamEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(ev)
	p.flusher.Flush()
}

func (p *ndjsonPresence) Typing(context.Context) {
	p.emit(types.StreamEvent{Type: types.EventTyping})
}

func (p *ndjsonPresence) ShowStatus(_ context.Context, text string) func() {
	p.emit(types.StreamEvent{Type: types.EventStatus, Text: text})
	var once sync.Once
	return func() {
		once.Do(func() { p.emit(types.StreamEvent{Type: types.EventStatusClear}) })
	}
}
