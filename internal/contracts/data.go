package contracts

import "time"

// DataQualitySnapshot represents metric coverage of the loaded records, passed from S0 to S1
// ⭐ SSOT: S0 → S1 데이터 품질 정보 전달
type DataQualitySnapshot struct {
	Date         time.Time          `json:"date"`
	TotalRecords int                `json:"total_records"`
	ValidRecords int                `json:"valid_records"`
	Coverage     map[string]float64 `json:"coverage"`      // 지표별 커버리지
	QualityScore float64            `json:"quality_score"` // 0.0 ~ 1.0
	Passed       bool               `json:"passed"`        // 품질 검증 통과 여부
	MinScore     float64            `json:"min_score"`     // 통과 기준
}

// IsValid checks if the data quality snapshot meets minimum requirements
func (d *DataQualitySnapshot) IsValid() bool {
	return d.QualityScore >= d.minScore() && d.ValidRecords > 0
}

func (d *DataQualitySnapshot) minScore() float64 {
	if d.MinScore > 0 {
		return d.MinScore
	}
	return 0.7
}

// CoverageRate returns the average coverage rate across all metrics
func (d *DataQualitySnapshot) CoverageRate() float64 {
	if len(d.Coverage) == 0 {
		return 0.0
	}

	total := 0.0
	for _, rate := range d.Coverage {
		total += rate
	}

	return total / float64(len(d.Coverage))
}
