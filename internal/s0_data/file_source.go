package s0_data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// FileRecordSource loads company records from a JSON array file
// ⭐ SSOT: 파일 기반 레코드 로딩
type FileRecordSource struct {
	path   string
	logger *logger.Logger
}

// NewFileRecordSource creates a record source reading path
func NewFileRecordSource(path string, log *logger.Logger) *FileRecordSource {
	return &FileRecordSource{
		path:   path,
		logger: log.WithField("module", "file_source"),
	}
}

// Load reads all records. Tickers are upper-cased and records without
// an as_of date get asOf.
func (s *FileRecordSource) Load(ctx context.Context, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read records %s: %w", s.path, err)
	}

	records, err := DecodeRecords(data, asOf)
	if err != nil {
		return nil, fmt.Errorf("decode records %s: %w", s.path, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":    s.path,
		"records": len(records),
	}).Info("Loaded records")

	return records, nil
}

// DecodeRecords parses a JSON array of records and normalizes them
func DecodeRecords(data []byte, asOf time.Time) ([]*contracts.CompanyRecord, error) {
	var records []*contracts.CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	out := make([]*contracts.CompanyRecord, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		rec.Ticker = strings.ToUpper(strings.TrimSpace(rec.Ticker))
		if rec.Ticker == "" {
			return nil, fmt.Errorf("record %d: ticker is required", i)
		}
		if seen[rec.Ticker] {
			return nil, fmt.Errorf("record %d: duplicate ticker %s", i, rec.Ticker)
		}
		seen[rec.Ticker] = true

		if rec.AsOf.IsZero() {
			rec.AsOf = asOf
		}
		if rec.Metrics == nil {
			rec.Metrics = make(map[contracts.Metric]float64)
		}
		out = append(out, rec)
	}
	return out, nil
}
