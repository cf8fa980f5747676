package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// RecordRepository manages company financial records
type RecordRepository interface {
	GetByTicker(ctx context.Context, ticker string, asOf time.Time) (*CompanyRecord, error)
	ListByDate(ctx context.Context, asOf time.Time) ([]*CompanyRecord, error)
	Save(ctx context.Context, record *CompanyRecord) error
	SaveBatch(ctx context.Context, records []*CompanyRecord) error
}

// ScoreRepository manages screening runs
type ScoreRepository interface {
	SaveRun(ctx context.Context, run *ScreenRun) error
	GetLatestRun(ctx context.Context) (*ScreenRun, error)
	GetRun(ctx context.Context, runID string) (*ScreenRun, error)
}

// RecordSource loads the records of one screening date
type RecordSource interface {
	Load(ctx context.Context, asOf time.Time) ([]*CompanyRecord, error)
}
