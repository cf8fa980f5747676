package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 스냅샷, DB row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4
//   Data  Universe  Scores  Selection  Report

// Stage represents a pipeline stage
type Stage string

const (
	// StageData S0: 레코드 로딩 및 커버리지 검증
	// 위치: internal/s0_data/
	StageData Stage = "S0_DATA"

	// StageUniverse S1: 스크리닝 대상 종목
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageScores S2: 6개 투자자 점수 계산 (Buffett, Lynch, Icahn, Soros, Simons, IP Boost)
	// 위치: internal/s2_scores/
	StageScores Stage = "S2_SCORES"

	// StageSelection S3: 메타 점수 및 순위
	// 위치: internal/selection/
	StageSelection Stage = "S3_SELECTION"

	// StageReport S4: CSV/Markdown 리포트
	// 위치: internal/report/
	StageReport Stage = "S4_REPORT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageData:
		return "S0"
	case StageUniverse:
		return "S1"
	case StageScores:
		return "S2"
	case StageSelection:
		return "S3"
	case StageReport:
		return "S4"
	default:
		return "UNKNOWN"
	}
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageData:
		return "레코드 로딩/커버리지 검증"
	case StageUniverse:
		return "스크리닝 대상"
	case StageScores:
		return "투자자 점수 계산"
	case StageSelection:
		return "메타 점수/순위"
	case StageReport:
		return "리포트 작성"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageData,
		StageUniverse,
		StageScores,
		StageSelection,
		StageReport,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
