package contracts

import "time"

// Universe represents the companies to screen, passed from S1 to S2
// ⭐ SSOT: S1 → S2 스크리닝 대상 전달
type Universe struct {
	Date       time.Time         `json:"date"`
	Tickers    []string          `json:"tickers"`               // 스크리닝 대상 티커
	Excluded   map[string]string `json:"excluded"`              // 제외 티커: 사유
	TotalCount int               `json:"total_count,omitempty"` // 전체 티커 수
}

// Contains checks if a ticker is in the universe
func (u *Universe) Contains(ticker string) bool {
	for _, t := range u.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// IsExcluded checks if a ticker is excluded with reason
func (u *Universe) IsExcluded(ticker string) (bool, string) {
	reason, exists := u.Excluded[ticker]
	return exists, reason
}

// Count returns the number of tickers to screen
func (u *Universe) Count() int {
	return len(u.Tickers)
}
