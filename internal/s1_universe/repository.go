package s1_universe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/screener/internal/contracts"
)

// Repository handles data persistence for S1
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveUniverse saves the universe of a screening run
func (r *Repository) SaveUniverse(ctx context.Context, runID string, universe *contracts.Universe) error {
	excludedJSON, err := json.Marshal(universe.Excluded)
	if err != nil {
		return fmt.Errorf("marshal excluded: %w", err)
	}

	query := `
		INSERT INTO data.universe_snapshots (
			run_id,
			snapshot_date,
			tickers,
			total_count,
			excluded,
			created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			snapshot_date = EXCLUDED.snapshot_date,
			tickers = EXCLUDED.tickers,
			total_count = EXCLUDED.total_count,
			excluded = EXCLUDED.excluded,
			created_at = NOW()
	`

	_, err = r.db.Exec(ctx, query,
		runID,
		universe.Date,
		universe.Tickers,
		universe.TotalCount,
		excludedJSON,
	)
	if err != nil {
		return fmt.Errorf("insert universe: %w", err)
	}

	return nil
}

// GetLatestUniverse retrieves the most recent universe snapshot
func (r *Repository) GetLatestUniverse(ctx context.Context) (*contracts.Universe, error) {
	query := `
		SELECT
			snapshot_date,
			tickers,
			total_count,
			excluded
		FROM data.universe_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	universe := &contracts.Universe{
		Excluded: make(map[string]string),
	}

	var excludedJSON []byte
	err := r.db.QueryRow(ctx, query).Scan(
		&universe.Date,
		&universe.Tickers,
		&universe.TotalCount,
		&excludedJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("query latest universe: %w", err)
	}

	if len(excludedJSON) > 0 {
		if err := json.Unmarshal(excludedJSON, &universe.Excluded); err != nil {
			return nil, fmt.Errorf("unmarshal excluded: %w", err)
		}
	}

	return universe, nil
}
