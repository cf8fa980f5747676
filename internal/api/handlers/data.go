package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// QualityReader reads stored quality snapshots (quality.Repository)
type QualityReader interface {
	GetLatest(ctx context.Context) (*contracts.DataQualitySnapshot, error)
	GetByDate(ctx context.Context, date time.Time) (*contracts.DataQualitySnapshot, error)
}

// UniverseReader reads stored universes (s1_universe.Repository)
type UniverseReader interface {
	GetLatestUniverse(ctx context.Context) (*contracts.Universe, error)
}

// DataHandler handles data-related API endpoints
// ⭐ SSOT: 데이터 API 핸들러는 이 구조체에서만
type DataHandler struct {
	quality   QualityReader
	universes UniverseReader
	logger    *logger.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(quality QualityReader, universes UniverseReader, log *logger.Logger) *DataHandler {
	return &DataHandler{
		quality:   quality,
		universes: universes,
		logger:    log,
	}
}

// GetQuality returns the latest data quality snapshot, or the one of ?date=YYYY-MM-DD
// GET /api/data/quality
func (h *DataHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		snapshot *contracts.DataQualitySnapshot
		err      error
	)
	if s := r.URL.Query().Get("date"); s != "" {
		date, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
			return
		}
		snapshot, err = h.quality.GetByDate(ctx, date)
	} else {
		snapshot, err = h.quality.GetLatest(ctx)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		respondError(w, http.StatusNotFound, "No quality snapshot")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quality snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve quality snapshot")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetUniverse returns the latest universe
// GET /api/data/universe
func (h *DataHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	universe, err := h.universes.GetLatestUniverse(r.Context())
	if errors.Is(err, pgx.ErrNoRows) {
		respondError(w, http.StatusNotFound, "No universe")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get universe")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve universe")
		return
	}

	respondJSON(w, http.StatusOK, universe)
}
