package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/pipeline"
	"github.com/wonny/screener/internal/report"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/pkg/logger"
)

// ScreenRunner runs the screening pipeline
type ScreenRunner interface {
	Run(ctx context.Context, config pipeline.RunConfig) (*pipeline.RunResult, error)
}

// ScreenHandler handles scoring and screening API endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreenHandler struct {
	engine   contracts.ScoreEngine
	screener ScreenRunner
	runs     contracts.ScoreRepository // nil이면 메모리의 최근 실행만 제공
	defaults pipeline.RunConfig
	topN     int

	runMu   sync.Mutex // 동시에 한 실행만
	mu      sync.RWMutex
	lastRun *contracts.ScreenRun

	logger *logger.Logger
}

// NewScreenHandler creates a new screen handler
func NewScreenHandler(
	engine contracts.ScoreEngine,
	screener ScreenRunner,
	runs contracts.ScoreRepository,
	defaults pipeline.RunConfig,
	topN int,
	log *logger.Logger,
) *ScreenHandler {
	return &ScreenHandler{
		engine:   engine,
		screener: screener,
		runs:     runs,
		defaults: defaults,
		topN:     topN,
		logger:   log,
	}
}

// ScoreRequest is the body of POST /api/score
type ScoreRequest struct {
	Record *contracts.CompanyRecord `json:"record"`
	Patent *contracts.PatentRecord  `json:"patent,omitempty"`
	Macro  contracts.MacroInputs    `json:"macro"`
}

// Score scores a single company record
// POST /api/score
func (h *ScreenHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Record == nil || req.Record.Ticker == "" {
		respondError(w, http.StatusBadRequest, "record.ticker is required")
		return
	}
	if req.Record.Metrics == nil {
		req.Record.Metrics = make(map[contracts.Metric]float64)
	}

	card := h.engine.Score(r.Context(), req.Record, req.Patent, req.Macro)
	respondJSON(w, http.StatusOK, card)
}

// GetLatest returns the most recent screening run
// GET /api/screen/latest?top=N
func (h *ScreenHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := h.latest(r)
	if errors.Is(err, selection.ErrRunNotFound) {
		respondError(w, http.StatusNotFound, "No screening run available")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get latest run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve latest run")
		return
	}

	top := h.topN
	if v := r.URL.Query().Get("top"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &top); err != nil || top < 0 {
			respondError(w, http.StatusBadRequest, "Invalid top parameter")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":      run.RunID,
		"date":        run.Date.Format("2006-01-02"),
		"config_hash": run.ConfigHash,
		"macro":       run.Macro,
		"total":       len(run.Ranked),
		"ranked":      run.Top(top),
	})
}

func (h *ScreenHandler) latest(r *http.Request) (*contracts.ScreenRun, error) {
	if h.runs != nil {
		return h.runs.GetLatestRun(r.Context())
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.lastRun == nil {
		return nil, selection.ErrRunNotFound
	}
	return h.lastRun, nil
}

// RunRequest represents a screening run request
type RunRequest struct {
	Date      string `json:"date"` // Optional: YYYY-MM-DD
	LiveMacro *bool  `json:"live_macro,omitempty"`
	Persist   *bool  `json:"persist,omitempty"`
}

// RunResponse summarizes a completed run
type RunResponse struct {
	RunID      string                    `json:"run_id"`
	Date       string                    `json:"date"`
	ConfigHash string                    `json:"config_hash"`
	Universe   int                       `json:"universe"`
	Excluded   int                       `json:"excluded"`
	Ranked     int                       `json:"ranked"`
	Top        []contracts.RankedCompany `json:"top"`
	Paths      *report.Paths             `json:"paths,omitempty"`
	DurationMS int64                     `json:"duration_ms"`
}

// Run triggers a screening run and waits for it
// POST /api/screen/run
func (h *ScreenHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	cfg := h.defaults
	cfg.RunID = ""
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date format (YYYY-MM-DD)")
			return
		}
		cfg.Date = date
	}
	if req.LiveMacro != nil {
		cfg.LiveMacro = *req.LiveMacro
	}
	if req.Persist != nil {
		cfg.Persist = *req.Persist
	}

	if !h.runMu.TryLock() {
		respondError(w, http.StatusConflict, "A screening run is already in progress")
		return
	}
	defer h.runMu.Unlock()

	result, err := h.screener.Run(r.Context(), cfg)
	if err != nil {
		h.logger.WithError(err).Error("Screening run failed")
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Screening run failed: %v", err))
		return
	}

	h.mu.Lock()
	h.lastRun = result.Run
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, RunResponse{
		RunID:      result.RunID,
		Date:       result.Date.Format("2006-01-02"),
		ConfigHash: result.Run.ConfigHash,
		Universe:   result.Universe.Count(),
		Excluded:   len(result.Universe.Excluded),
		Ranked:     len(result.Run.Ranked),
		Top:        result.Run.Top(h.topN),
		Paths:      result.Paths,
		DurationMS: result.Duration.Milliseconds(),
	})
}
