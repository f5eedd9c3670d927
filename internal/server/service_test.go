package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theirongolddev/bpace/internal/ledger"
	"github.com/theirongolddev/bpace/internal/model"
	"github.com/theirongolddev/bpace/internal/session"
	"github.com/theirongolddev/bpace/internal/templates"
)

const goodCSV = "Month,Category,Amount\n" +
	"2025-01,Fuel,-900\n" +
	"2025-02,Fuel,-100\n" +
	"2025-03,Food,-50\n" +
	"2024-05,Fuel,-10\n"

func newTestService(t *testing.T) (*Service, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tpl, err := templates.Open(filepath.Join(t.TempDir(), "templates.json"))
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{
		Options: ledger.Options{Columns: ledger.Columns{Month: "Month", Category: "Category", Amount: "Amount"}},
		Now:     func() time.Time { return time.Date(2025, time.July, 2, 12, 0, 0, 0, time.UTC) },
	}, session.New(), tpl, nil)
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, h := newTestService(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAnalysis_NoLedger(t *testing.T) {
	_, h := newTestService(t)
	if rec := do(t, h, http.MethodGet, "/v1/analysis/2025", ""); rec.Code != http.StatusConflict {
		t.Fatalf("analysis without ledger = %d, want 409", rec.Code)
	}
}

func TestUploadAndAnalyze(t *testing.T) {
	_, h := newTestService(t)

	rec := do(t, h, http.MethodPost, "/v1/ledger", goodCSV)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPut, "/v1/budgets/Fuel", `{"amount": 1200}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("set budget = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/analysis/2025", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis = %d %s", rec.Code, rec.Body.String())
	}
	var report model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Year != "2025" || len(report.Results) != 2 {
		t.Fatalf("report = %+v, want 2025 with Fuel and Food", report)
	}

	var raw struct {
		Results []struct {
			Category string `json:"category"`
			Status   string `json:"status"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	statuses := map[string]string{}
	for _, r := range raw.Results {
		statuses[r.Category] = r.Status
	}
	if statuses["Fuel"] != "over_budget" || statuses["Food"] != "unbudgeted" {
		t.Errorf("statuses = %v, want Fuel over_budget, Food unbudgeted", statuses)
	}
}

func TestBadUploadKeepsState(t *testing.T) {
	_, h := newTestService(t)
	if rec := do(t, h, http.MethodPost, "/v1/ledger", goodCSV); rec.Code != http.StatusOK {
		t.Fatalf("upload = %d", rec.Code)
	}
	before := do(t, h, http.MethodGet, "/v1/analysis/2025", "").Body.String()

	rec := do(t, h, http.MethodPost, "/v1/ledger", "Month,Category,Amount\nnope,Fuel,-1\n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad upload = %d, want 422", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/v1/ledger", "Wrong,Header\n2025-01,x\n")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing column upload = %d, want 422", rec.Code)
	}

	after := do(t, h, http.MethodGet, "/v1/analysis/2025", "").Body.String()
	if before != after {
		t.Errorf("analysis changed after failed upload:\nbefore %s\nafter  %s", before, after)
	}
}

func TestBudgetUnknownCategory(t *testing.T) {
	_, h := newTestService(t)
	do(t, h, http.MethodPost, "/v1/ledger", goodCSV)

	rec := do(t, h, http.MethodPut, "/v1/budgets/Fule", `{"amount": 5}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown category = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Fuel") {
		t.Errorf("response %s lacks suggestion", rec.Body.String())
	}

	if rec := do(t, h, http.MethodPut, "/v1/budgets/Fuel", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing amount = %d, want 400", rec.Code)
	}
}

func TestTemplatesCRUD(t *testing.T) {
	_, h := newTestService(t)
	do(t, h, http.MethodPost, "/v1/ledger", goodCSV)

	if rec := do(t, h, http.MethodGet, "/v1/templates/family", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get missing = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/v1/templates/family", `{"Fuel": -2000, "Food": 600}`); rec.Code != http.StatusNoContent {
		t.Fatalf("put = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPut, "/v1/templates/bad", `{"Nope": 1}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("put unknown = %d, want 422", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/v1/templates/family", "")
	var m map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m["Fuel"] != 2000 || m["Food"] != 600 {
		t.Errorf("template = %v", m)
	}

	rec = do(t, h, http.MethodGet, "/v1/analysis/2025?template=family&as_of=2025-12-31", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis with template = %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, http.MethodPost, "/v1/templates/family/apply", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("apply = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/budgets", ""); !strings.Contains(rec.Body.String(), `"family"`) {
		t.Errorf("budgets = %s, want active template family", rec.Body.String())
	}

	if rec := do(t, h, http.MethodDelete, "/v1/templates/family", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/v1/templates/family", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", rec.Code)
	}
}

func TestAnalysis_BadAsOfAndYear(t *testing.T) {
	_, h := newTestService(t)
	do(t, h, http.MethodPost, "/v1/ledger", goodCSV)

	if rec := do(t, h, http.MethodGet, "/v1/analysis/2025?as_of=July", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad as_of = %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/analysis/1990", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown year = %d, want 404", rec.Code)
	}
}

func TestEventsRingBuffer(t *testing.T) {
	s, _ := newTestService(t)
	s.cfg.EventsBuffer = 2

	s.publishEvent("a", "")
	s.publishEvent("b", "")
	s.publishEvent("c", "")

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("event IDs = [%d %d], want [2 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestStatusAndYears(t *testing.T) {
	_, h := newTestService(t)
	do(t, h, http.MethodPost, "/v1/ledger", goodCSV)

	var st Status
	if err := json.Unmarshal(do(t, h, http.MethodGet, "/v1/status", "").Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Uploads != 1 || len(st.Years) != 2 || st.Categories != 2 {
		t.Errorf("status = %+v", st)
	}

	var years []model.YearSummary
	if err := json.Unmarshal(do(t, h, http.MethodGet, "/v1/years", "").Body.Bytes(), &years); err != nil {
		t.Fatal(err)
	}
	if len(years) != 2 || years[1].Expenses != 1050 {
		t.Errorf("years = %+v", years)
	}
}
