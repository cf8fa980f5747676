package s0_data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/s2_scores"
	"github.com/wonny/screener/internal/strategyconfig"
)

// LoadPatents reads the optional patents CSV.
// A missing file means no patents data: (nil, nil).
//
// Columns: ticker, patent_count, forward_citations, rd_to_sales[, tilt].
// Rows without a tilt derive it from the other columns.
func LoadPatents(path string, cfg strategyconfig.IPBoost) (map[string]*contracts.PatentRecord, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open patents %s: %w", path, err)
	}
	defer f.Close()

	patents, err := ParsePatents(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse patents %s: %w", path, err)
	}
	return patents, nil
}

// ParsePatents parses patents CSV content keyed by upper-case ticker
func ParsePatents(r io.Reader, cfg strategyconfig.IPBoost) (map[string]*contracts.PatentRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]*contracts.PatentRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["ticker"]; !ok {
		return nil, fmt.Errorf("missing ticker column")
	}

	out := make(map[string]*contracts.PatentRecord)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ticker := strings.ToUpper(strings.TrimSpace(cell(row, cols, "ticker")))
		if ticker == "" {
			continue
		}
		if _, dup := out[ticker]; dup {
			return nil, fmt.Errorf("line %d: duplicate ticker %s", line, ticker)
		}

		rec, err := parsePatentRow(row, cols, cfg)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", line, ticker, err)
		}
		rec.Ticker = ticker
		out[ticker] = rec
	}

	return out, nil
}

func parsePatentRow(row []string, cols map[string]int, cfg strategyconfig.IPBoost) (*contracts.PatentRecord, error) {
	rec := &contracts.PatentRecord{}

	count, hasCount, err := optionalFloat(cell(row, cols, "patent_count"))
	if err != nil {
		return nil, fmt.Errorf("patent_count: %w", err)
	}
	citations, hasCitations, err := optionalFloat(cell(row, cols, "forward_citations"))
	if err != nil {
		return nil, fmt.Errorf("forward_citations: %w", err)
	}
	rd, hasRD, err := optionalFloat(cell(row, cols, "rd_to_sales"))
	if err != nil {
		return nil, fmt.Errorf("rd_to_sales: %w", err)
	}
	tilt, hasTilt, err := optionalFloat(cell(row, cols, "tilt"))
	if err != nil {
		return nil, fmt.Errorf("tilt: %w", err)
	}

	rec.PatentCount = count
	rec.ForwardCitations = citations
	rec.RDToSales = rd

	switch {
	case hasTilt:
		rec.Present = true
		rec.Tilt = tilt
	case hasCount || hasCitations || hasRD:
		rec.Present = true
		rec.Tilt = s2_scores.DeriveTilt(cfg, count, citations, rd)
	}
	return rec, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// optionalFloat parses a cell; empty and NaN cells are absent
func optionalFloat(s string) (float64, bool, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
