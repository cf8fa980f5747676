package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/screener/internal/contracts"
)

// ErrRunNotFound is returned when no screening run matches
var ErrRunNotFound = errors.New("screen run not found")

// Repository implements contracts.ScoreRepository
// ⭐ SSOT: 스크리닝 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun saves a screening run and its ranked companies in one transaction
func (r *Repository) SaveRun(ctx context.Context, run *contracts.ScreenRun) error {
	macroJSON, err := json.Marshal(run.Macro)
	if err != nil {
		return fmt.Errorf("failed to marshal macro: %w", err)
	}

	// Begin transaction
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO selection.screen_runs (run_id, run_date, config_hash, macro, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			run_date = EXCLUDED.run_date,
			config_hash = EXCLUDED.config_hash,
			macro = EXCLUDED.macro,
			created_at = EXCLUDED.created_at
	`, run.RunID, run.Date, run.ConfigHash, macroJSON, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	// Delete existing results for the run
	_, err = tx.Exec(ctx, "DELETE FROM selection.screen_results WHERE run_id = $1", run.RunID)
	if err != nil {
		return fmt.Errorf("failed to delete old results: %w", err)
	}

	query := `
		INSERT INTO selection.screen_results (
			run_id, ticker, rank, meta_score, quality_flag, cash_flag, card
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, rc := range run.Ranked {
		cardJSON, err := json.Marshal(rc.Card)
		if err != nil {
			return fmt.Errorf("failed to marshal card %s: %w", rc.Card.Ticker, err)
		}
		batch.Queue(query, run.RunID, rc.Card.Ticker, rc.Rank, rc.MetaScore, rc.QualityFlag, rc.CashFlag, cardJSON)
	}

	br := tx.SendBatch(ctx, batch)
	for range run.Ranked {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert screen result: %w", err)
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

// GetLatestRun retrieves the most recent screening run
func (r *Repository) GetLatestRun(ctx context.Context) (*contracts.ScreenRun, error) {
	var runID string
	err := r.pool.QueryRow(ctx, `
		SELECT run_id FROM selection.screen_runs
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&runID)
	if err == pgx.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return r.GetRun(ctx, runID)
}

// GetRun retrieves a screening run by id
func (r *Repository) GetRun(ctx context.Context, runID string) (*contracts.ScreenRun, error) {
	run := &contracts.ScreenRun{RunID: runID}
	var macroJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT run_date, config_hash, macro, created_at
		FROM selection.screen_runs
		WHERE run_id = $1
	`, runID).Scan(&run.Date, &run.ConfigHash, &macroJSON, &run.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal(macroJSON, &run.Macro); err != nil {
		return nil, fmt.Errorf("failed to unmarshal macro: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rank, meta_score, quality_flag, cash_flag, card
		FROM selection.screen_results
		WHERE run_id = $1
		ORDER BY rank ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query screen results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rc contracts.RankedCompany
		var cardJSON []byte
		if err := rows.Scan(&rc.Rank, &rc.MetaScore, &rc.QualityFlag, &rc.CashFlag, &cardJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rc.Card = &contracts.ScoreCard{}
		if err := json.Unmarshal(cardJSON, rc.Card); err != nil {
			return nil, fmt.Errorf("failed to unmarshal card: %w", err)
		}
		rc.Unscored = !hasMetaScore(rc.Card)
		run.Ranked = append(run.Ranked, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return run, nil
}

// DeleteBefore removes runs created before cutoff (retention)
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM selection.screen_runs WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
