// Package server exposes a session over a local HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/pipeline"
	"github.com/theirongolddev/bpace/internal/session"
	"github.com/theirongolddev/bpace/internal/templates"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Options      ledger.Options
	EventsBuffer int
	MaxUpload    int64
	Now          func() time.Time
}

// Event is recorded whenever the session changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt    time.Time `json:"started_at"`
	LedgerSource string    `json:"ledger_source,omitempty"`
	Years        []string  `json:"years"`
	Categories   int       `json:"categories"`
	Template     string    `json:"template,omitempty"`
	Uploads      int64     `json:"uploads"`
	LastError    string    `json:"last_error,omitempty"`
	EventCount   int       `json:"event_count"`
}

// Service serves the HTTP API. The session is guarded by mu; uploads are
// parsed off-lock and swapped in under the write lock.
type Service struct {
	cfg       Config
	templates *templates.Store
	logger    *log.Logger

	mu          sync.RWMutex
	state       *session.State
	startedAt   time.Time
	uploads     int64
	lastError   string
	nextEventID int64
	events      []Event
}

// New returns a new service over st and tpl.
func New(cfg Config, st *session.State, tpl *templates.Store, logger *log.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 64 << 20
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Service{
		cfg:       cfg,
		templates: tpl,
		logger:    logger,
		state:     st,
		startedAt: cfg.Now(),
	}
}

// Handler returns the gin engine with all routes registered.
func (s *Service) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/events", s.handleEvents)
	v1.GET("/years", s.handleYears)
	v1.GET("/categories", s.handleCategories)
	v1.GET("/analysis", s.handleAnalysis)
	v1.GET("/analysis/:year", s.handleAnalysis)
	v1.POST("/ledger", s.handleUpload)

	v1.GET("/budgets", s.handleBudgets)
	v1.PUT("/budgets/:category", s.handleSetBudget)
	v1.DELETE("/budgets/:category", s.handleClearBudget)

	v1.GET("/templates", s.handleListTemplates)
	v1.GET("/templates/:name", s.handleGetTemplate)
	v1.PUT("/templates/:name", s.handlePutTemplate)
	v1.DELETE("/templates/:name", s.handleDeleteTemplate)
	v1.POST("/templates/:name/apply", s.handleApplyTemplate)

	return r
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("serving", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// ReplaceLedger parses a CSV body and swaps it into the session. On failure
// the session is left unchanged.
func (s *Service) ReplaceLedger(r io.Reader, name string) (*pipeline.LoadResult, error) {
	res, err := pipeline.LoadReader(r, name, s.cfg.Options)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	s.state.ReplaceLedger(res, name)
	s.uploads++
	s.lastError = ""
	s.mu.Unlock()

	s.publishEvent("ledger_replaced", fmt.Sprintf("%s: %d rows kept", name, res.RowsKept))
	return res, nil
}

func (s *Service) publishEvent(typ, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	s.events = append(s.events, Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: s.cfg.Now(),
		Detail:    detail,
	})
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years := s.state.Years()
	if years == nil {
		years = []string{}
	}
	return Status{
		StartedAt:    s.startedAt,
		LedgerSource: s.state.Source(),
		Years:        years,
		Categories:   len(s.state.Categories()),
		Template:     s.state.Template(),
		Uploads:      s.uploads,
		LastError:    s.lastError,
		EventCount:   len(s.events),
	}
}

func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur", time.Since(start))
	}
}
