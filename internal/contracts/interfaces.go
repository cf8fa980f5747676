package contracts

import (
	"context"
	"time"
)

// QualityGate checks metric coverage (S0)
// ⭐ SSOT: S0 데이터 품질 검증 인터페이스
type QualityGate interface {
	Check(ctx context.Context, date time.Time, records []*CompanyRecord) (*DataQualitySnapshot, error)
}

// UniverseBuilder selects the companies to screen (S1)
// ⭐ SSOT: S1 유니버스 생성 인터페이스
type UniverseBuilder interface {
	Build(ctx context.Context, snapshot *DataQualitySnapshot, records []*CompanyRecord) (*Universe, error)
}

// ScoreEngine computes the investor scores of one company (S2)
// ⭐ SSOT: S2 점수 계산 인터페이스
type ScoreEngine interface {
	Score(ctx context.Context, record *CompanyRecord, patent *PatentRecord, macro MacroInputs) *ScoreCard
}

// Ranker ranks companies by meta-score (S3)
// ⭐ SSOT: S3 랭킹 인터페이스
type Ranker interface {
	Rank(ctx context.Context, cards []*ScoreCard) ([]RankedCompany, error)
}
