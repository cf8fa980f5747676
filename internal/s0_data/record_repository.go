package s0_data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/screener/internal/contracts"
)

// ErrRecordNotFound is returned when no record exists for a ticker
var ErrRecordNotFound = errors.New("company record not found")

// RecordRepository implements contracts.RecordRepository
// ⭐ SSOT: 기업 레코드 저장소는 여기서만
type RecordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(pool *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// GetByTicker retrieves the most recent record of a ticker on or before asOf
func (r *RecordRepository) GetByTicker(ctx context.Context, ticker string, asOf time.Time) (*contracts.CompanyRecord, error) {
	query := `
		SELECT ticker, as_of, region, sector, notes, metrics
		FROM data.company_metrics
		WHERE ticker = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, ticker, asOf))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, ticker)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ticker, series, points
		FROM data.company_series
		WHERE ticker = $1 AND as_of = $2
	`, rec.Ticker, rec.AsOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	if err := attachSeries(rows, map[string]*contracts.CompanyRecord{rec.Ticker: rec}); err != nil {
		return nil, err
	}

	return rec, nil
}

// ListByDate retrieves the latest record of every ticker on or before asOf
func (r *RecordRepository) ListByDate(ctx context.Context, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ON (ticker) ticker, as_of, region, sector, notes, metrics
		FROM data.company_metrics
		WHERE as_of <= $1
		ORDER BY ticker, as_of DESC
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	var records []*contracts.CompanyRecord
	byTicker := make(map[string]*contracts.CompanyRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
		byTicker[rec.Ticker] = rec
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	if len(records) == 0 {
		return records, nil
	}

	seriesRows, err := r.pool.Query(ctx, `
		WITH latest AS (
			SELECT DISTINCT ON (ticker) ticker, as_of
			FROM data.company_metrics
			WHERE as_of <= $1
			ORDER BY ticker, as_of DESC
		)
		SELECT s.ticker, s.series, s.points
		FROM data.company_series s
		JOIN latest l ON l.ticker = s.ticker AND l.as_of = s.as_of
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	if err := attachSeries(seriesRows, byTicker); err != nil {
		return nil, err
	}

	return records, nil
}

// Save upserts one record and replaces its series
func (r *RecordRepository) Save(ctx context.Context, record *contracts.CompanyRecord) error {
	return r.SaveBatch(ctx, []*contracts.CompanyRecord{record})
}

// SaveBatch upserts records in one transaction
func (r *RecordRepository) SaveBatch(ctx context.Context, records []*contracts.CompanyRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		metricsJSON, err := json.Marshal(finiteMetrics(rec.Metrics))
		if err != nil {
			return fmt.Errorf("failed to marshal metrics %s: %w", rec.Ticker, err)
		}

		batch.Queue(`
			INSERT INTO data.company_metrics (ticker, as_of, region, sector, notes, metrics)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (ticker, as_of) DO UPDATE SET
				region = EXCLUDED.region,
				sector = EXCLUDED.sector,
				notes = EXCLUDED.notes,
				metrics = EXCLUDED.metrics,
				updated_at = NOW()
		`, rec.Ticker, rec.AsOf, rec.Region, rec.Sector, rec.Notes, metricsJSON)

		batch.Queue("DELETE FROM data.company_series WHERE ticker = $1 AND as_of = $2", rec.Ticker, rec.AsOf)

		for name := range rec.Series {
			points := rec.SeriesValues(name)
			if len(points) == 0 {
				continue
			}
			batch.Queue(`
				INSERT INTO data.company_series (ticker, as_of, series, points)
				VALUES ($1, $2, $3, $4)
			`, rec.Ticker, rec.AsOf, string(name), points)
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to save record batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func scanRecord(row pgx.Row) (*contracts.CompanyRecord, error) {
	rec := &contracts.CompanyRecord{}
	var metricsJSON []byte

	if err := row.Scan(&rec.Ticker, &rec.AsOf, &rec.Region, &rec.Sector, &rec.Notes, &metricsJSON); err != nil {
		return nil, err
	}

	rec.Metrics = make(map[contracts.Metric]float64)
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &rec.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
	}
	return rec, nil
}

func attachSeries(rows pgx.Rows, byTicker map[string]*contracts.CompanyRecord) error {
	defer rows.Close()

	for rows.Next() {
		var ticker, name string
		var points []float64
		if err := rows.Scan(&ticker, &name, &points); err != nil {
			return fmt.Errorf("failed to scan series: %w", err)
		}
		rec, ok := byTicker[ticker]
		if !ok {
			continue
		}
		if rec.Series == nil {
			rec.Series = make(map[contracts.Series][]float64)
		}
		rec.Series[contracts.Series(name)] = points
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating series: %w", err)
	}
	return nil
}

// finiteMetrics drops NaN/Inf, which JSON cannot encode
func finiteMetrics(in map[contracts.Metric]float64) map[contracts.Metric]float64 {
	out := make(map[contracts.Metric]float64, len(in))
	for k, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

// RepositorySource adapts a RecordRepository to contracts.RecordSource
type RepositorySource struct {
	repo contracts.RecordRepository
}

// NewRepositorySource creates a record source backed by the database
func NewRepositorySource(repo contracts.RecordRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

// Load returns the latest record of every ticker on or before asOf
func (s *RepositorySource) Load(ctx context.Context, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	return s.repo.ListByDate(ctx, asOf)
}
