package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/bpace/internal/budget"
	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/pipeline"
	"github.com/theirongolddev/bpace/internal/session"
	"github.com/theirongolddev/bpace/internal/templates"
)

type amountBody struct {
	Amount *float64 `json:"amount"`
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

func (s *Service) handleYears(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c.JSON(http.StatusOK, pipeline.SummarizeYears(s.state.Spending()))
}

func (s *Service) handleCategories(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	year := c.DefaultQuery("year", s.state.LatestYear())
	totals := pipeline.FilterCategories(pipeline.CategoryTotals(s.state.Spending(), year), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"year": year, "categories": totals})
}

func (s *Service) handleAnalysis(c *gin.Context) {
	now := s.cfg.Now()
	if asOf := c.Query("as_of"); asOf != "" {
		t, err := time.ParseInLocation("2006-01-02", asOf, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "as_of must be YYYY-MM-DD"})
			return
		}
		now = t
	}

	var mapping budget.Mapping
	if name := c.Query("template"); name != "" {
		m, err := s.templates.Load(name)
		if err != nil {
			s.writeError(c, err)
			return
		}
		mapping = m
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	year := c.Param("year")
	var (
		report model.Report
		err    error
	)
	if mapping != nil {
		report, err = s.state.AnalyzeWith(year, mapping, now)
	} else {
		report, err = s.state.Analyze(year, now)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Service) handleUpload(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUpload)
	name := c.DefaultQuery("name", "upload.csv")

	res, err := s.ReplaceLedger(body, name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"years":         res.Spending.Years(),
		"categories":    len(res.Spending.Categories()),
		"rows_read":     res.RowsRead,
		"rows_kept":     res.RowsKept,
		"rows_excluded": res.RowsExcluded,
	})
}

func (s *Service) handleBudgets(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"template": s.state.Template(), "budgets": s.state.SnapshotBudgets()})
}

func (s *Service) handleSetBudget(c *gin.Context) {
	var body amountBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Amount == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `body must be {"amount": number}`})
		return
	}

	s.mu.Lock()
	err := s.state.SetBudget(c.Param("category"), *body.Amount)
	s.mu.Unlock()
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.publishEvent("budget_set", c.Param("category"))
	c.Status(http.StatusNoContent)
}

func (s *Service) handleClearBudget(c *gin.Context) {
	s.mu.Lock()
	s.state.ClearBudget(c.Param("category"))
	s.mu.Unlock()
	s.publishEvent("budget_cleared", c.Param("category"))
	c.Status(http.StatusNoContent)
}

func (s *Service) handleListTemplates(c *gin.Context) {
	names, err := s.templates.List()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Service) handleGetTemplate(c *gin.Context) {
	m, err := s.templates.Load(c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Service) handlePutTemplate(c *gin.Context) {
	var m budget.Mapping
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	norm, err := m.Normalized()
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.mu.RLock()
	var known []string
	if s.state.HasLedger() {
		known = s.state.Categories()
	}
	s.mu.RUnlock()

	if err := norm.Validate(known); err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.templates.Save(c.Param("name"), norm); err != nil {
		s.writeError(c, err)
		return
	}
	s.publishEvent("template_saved", c.Param("name"))
	c.Status(http.StatusNoContent)
}

func (s *Service) handleDeleteTemplate(c *gin.Context) {
	if err := s.templates.Delete(c.Param("name")); err != nil {
		s.writeError(c, err)
		return
	}
	s.publishEvent("template_deleted", c.Param("name"))
	c.Status(http.StatusNoContent)
}

func (s *Service) handleApplyTemplate(c *gin.Context) {
	name := c.Param("name")
	m, err := s.templates.Load(name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.mu.Lock()
	err = s.state.ApplyTemplate(name, m)
	s.mu.Unlock()
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.publishEvent("template_applied", name)
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors to status codes.
func (s *Service) writeError(c *gin.Context, err error) {
	var (
		ie      *ledger.IngestionError
		unk     *budget.UnknownCategoryError
		tooBig  *http.MaxBytesError
		code    = http.StatusInternalServerError
		payload = gin.H{"error": err.Error()}
	)
	switch {
	case errors.As(err, &tooBig):
		code = http.StatusRequestEntityTooLarge
	case errors.As(err, &ie):
		code = http.StatusUnprocessableEntity
		if ie.Line > 0 {
			payload["line"] = ie.Line
		}
	case errors.As(err, &unk):
		code = http.StatusUnprocessableEntity
		payload["suggestions"] = unk.Suggestions
	case errors.Is(err, budget.ErrInvalidAmount):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, templates.ErrNotFound), errors.Is(err, session.ErrUnknownYear):
		code = http.StatusNotFound
	case errors.Is(err, templates.ErrInvalidName):
		code = http.StatusBadRequest
	case errors.Is(err, session.ErrNoLedger):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(code, payload)
}
