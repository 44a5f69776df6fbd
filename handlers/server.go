package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/nijaru/yt-scribe/config"
	"github.com/nijaru/yt-scribe/media"
	"github.com/nijaru/yt-scribe/middleware"
	"github.com/nijaru/yt-scribe/session"
	"github.com/nijaru/yt-scribe/validation"
	"github.com/sirupsen/logrus"
)

// SegmentExtractor is the part of media.Extractor used by the HTTP layer.
type SegmentExtractor interface {
	FetchVideoMetadata(ctx context.Context, url string) *media.VideoMetadata
	ExtractSegment(ctx context.Context, url string, tr validation.TimeRange, language string) (*media.AudioClip, error)
	PurgeStale(maxAge time.Duration) int
}

type Server struct {
	config    *config.Config
	logger    *logrus.Logger
	session   *session.Session
	extractor SegmentExtractor
	validator *validation.Validator
	server    *http.Server
	startTime time.Time
	now       func() time.Time
}

type ServerOption func(*Server)

// NewServer creates the HTTP server. WithSession and WithExtractor are required.
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		validator: validation.NewValidator(cfg),
		startTime: time.Now(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           s.routes(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

func WithSession(sess *session.Session) ServerOption {
	return func(s *Server) {
		s.session = sess
	}
}

func WithExtractor(extractor SegmentExtractor) ServerOption {
	return func(s *Server) {
		s.extractor = extractor
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/set-api-key", s.handleSetAPIKey).Methods(http.MethodPost)
	api.HandleFunc("/youtube-info", s.handleYouTubeInfo).Methods(http.MethodPost)
	api.HandleFunc("/process-youtube", s.handleProcessYouTube).Methods(http.MethodPost)
	api.HandleFunc("/transcribe-file", s.handleTranscribeFile).Methods(http.MethodPost)
	api.HandleFunc("/generate-post", s.handleGeneratePost).Methods(http.MethodPost)
	api.HandleFunc("/generate-image", s.handleGenerateImage).Methods(http.MethodPost)
	api.HandleFunc("/export-text", s.handleExportText).Methods(http.MethodPost)
	api.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	return s.middleware(r)
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	var rateLimiter middleware.RateLimiter
	if s.config.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
	}

	if rateLimiter != nil {
		middlewares = append(middlewares, rateLimiter.Middleware)
	}
	middlewares = append(middlewares, middleware.Concurrency(s.config.MaxConcurrent))

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":     "ok",
		"timestamp":  s.now().UTC(),
		"version":    s.config.Version,
		"uptime":     time.Since(s.startTime).String(),
		"configured": s.session.State() == session.StateReady,
		"has_key":    s.session.HasKey(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondStatus(w, r, http.StatusNotFound, "Not found")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
