package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wonny/screener/internal/contracts"
)

// Repository handles data quality snapshot persistence
// ⭐ SSOT: S0 품질 스냅샷 저장/조회
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new quality repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot saves a data quality snapshot
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot *contracts.DataQualitySnapshot) error {
	coverageJSON, err := json.Marshal(snapshot.Coverage)
	if err != nil {
		return fmt.Errorf("marshal coverage: %w", err)
	}

	query := `
		INSERT INTO data.quality_snapshots (
			snapshot_date, quality_score, total_records, valid_records,
			coverage, min_score, passed
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			quality_score = EXCLUDED.quality_score,
			total_records = EXCLUDED.total_records,
			valid_records = EXCLUDED.valid_records,
			coverage = EXCLUDED.coverage,
			min_score = EXCLUDED.min_score,
			passed = EXCLUDED.passed,
			updated_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		snapshot.Date,
		snapshot.QualityScore,
		snapshot.TotalRecords,
		snapshot.ValidRecords,
		coverageJSON,
		snapshot.MinScore,
		snapshot.Passed,
	)
	if err != nil {
		return fmt.Errorf("save quality snapshot: %w", err)
	}

	return nil
}

// GetByDate retrieves a quality snapshot by date
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (*contracts.DataQualitySnapshot, error) {
	query := `
		SELECT snapshot_date, quality_score, total_records, valid_records, coverage, min_score, passed
		FROM data.quality_snapshots
		WHERE snapshot_date = $1
	`

	snapshot, err := r.scanOne(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("get quality snapshot: %w", err)
	}
	return snapshot, nil
}

// GetLatest retrieves the most recent quality snapshot
func (r *Repository) GetLatest(ctx context.Context) (*contracts.DataQualitySnapshot, error) {
	query := `
		SELECT snapshot_date, quality_score, total_records, valid_records, coverage, min_score, passed
		FROM data.quality_snapshots
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	snapshot, err := r.scanOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get latest quality snapshot: %w", err)
	}
	return snapshot, nil
}

func (r *Repository) scanOne(ctx context.Context, query string, args ...interface{}) (*contracts.DataQualitySnapshot, error) {
	snapshot := &contracts.DataQualitySnapshot{}
	var coverageJSON []byte

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&snapshot.Date,
		&snapshot.QualityScore,
		&snapshot.TotalRecords,
		&snapshot.ValidRecords,
		&coverageJSON,
		&snapshot.MinScore,
		&snapshot.Passed,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Coverage = make(map[string]float64)
	if len(coverageJSON) > 0 {
		if err := json.Unmarshal(coverageJSON, &snapshot.Coverage); err != nil {
			return nil, fmt.Errorf("unmarshal coverage: %w", err)
		}
	}
	return snapshot, nil
}
