package database

import (
	"context"
	"fmt"
)

// schemaStatements creates the screener tables. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS data`,
	`CREATE SCHEMA IF NOT EXISTS selection`,

	// S0: 기업 재무 지표 (지표 맵은 jsonb)
	`CREATE TABLE IF NOT EXISTS data.company_metrics (
		ticker      TEXT        NOT NULL,
		as_of       DATE        NOT NULL,
		region      TEXT        NOT NULL DEFAULT '',
		sector      TEXT        NOT NULL DEFAULT '',
		notes       TEXT        NOT NULL DEFAULT '',
		metrics     JSONB       NOT NULL DEFAULT '{}'::jsonb,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (ticker, as_of)
	)`,

	// S0: 시계열 (revenue_history, weekly_close 등, 오래된 값부터)
	`CREATE TABLE IF NOT EXISTS data.company_series (
		ticker      TEXT        NOT NULL,
		as_of       DATE        NOT NULL,
		series      TEXT        NOT NULL,
		points      FLOAT8[]    NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (ticker, as_of, series)
	)`,

	`CREATE TABLE IF NOT EXISTS data.quality_snapshots (
		snapshot_date  DATE        PRIMARY KEY,
		quality_score  FLOAT8      NOT NULL,
		total_records  INT         NOT NULL,
		valid_records  INT         NOT NULL,
		coverage       JSONB       NOT NULL DEFAULT '{}'::jsonb,
		min_score      FLOAT8      NOT NULL,
		passed         BOOLEAN     NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// S1: 실행별 유니버스
	`CREATE TABLE IF NOT EXISTS data.universe_snapshots (
		run_id         TEXT        PRIMARY KEY,
		snapshot_date  DATE        NOT NULL,
		tickers        TEXT[]      NOT NULL,
		total_count    INT         NOT NULL,
		excluded       JSONB       NOT NULL DEFAULT '{}'::jsonb,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// S3: 스크리닝 실행/결과
	`CREATE TABLE IF NOT EXISTS selection.screen_runs (
		run_id      TEXT        PRIMARY KEY,
		run_date    DATE        NOT NULL,
		config_hash TEXT        NOT NULL,
		macro       JSONB       NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS selection.screen_results (
		run_id       TEXT    NOT NULL REFERENCES selection.screen_runs(run_id) ON DELETE CASCADE,
		ticker       TEXT    NOT NULL,
		rank         INT     NOT NULL,
		meta_score   FLOAT8  NOT NULL,
		quality_flag BOOLEAN NOT NULL,
		cash_flag    BOOLEAN NOT NULL,
		card         JSONB   NOT NULL,
		PRIMARY KEY (run_id, ticker)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_screen_runs_created_at ON selection.screen_runs (created_at DESC)`,
}

// EnsureSchema creates the screener schemas and tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
