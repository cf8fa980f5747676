package s1_universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

// TickerEntry is one row of tickers.csv
type TickerEntry struct {
	Ticker string
	Region string
	Notes  string
}

// LoadTickers reads tickers.csv (ticker, region, notes)
func LoadTickers(path string) ([]TickerEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickers %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ParseTickers(f)
	if err != nil {
		return nil, fmt.Errorf("parse tickers %s: %w", path, err)
	}
	return entries, nil
}

// ParseTickers parses tickers CSV content. Tickers are upper-cased;
// duplicates keep the first row.
func ParseTickers(r io.Reader) ([]TickerEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty tickers file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	tickerCol, ok := cols["ticker"]
	if !ok {
		return nil, fmt.Errorf("missing ticker column")
	}

	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []TickerEntry
	seen := make(map[string]bool)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if tickerCol >= len(row) {
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(row[tickerCol]))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		entries = append(entries, TickerEntry{
			Ticker: ticker,
			Region: get(row, "region"),
			Notes:  get(row, "notes"),
		})
	}

	return entries, nil
}

// ApplyTickerInfo returns records with region/notes from the tickers file
// filled where the record has none. Input records are not modified.
func ApplyTickerInfo(records []*contracts.CompanyRecord, entries []TickerEntry) []*contracts.CompanyRecord {
	info := make(map[string]TickerEntry, len(entries))
	for _, e := range entries {
		info[e.Ticker] = e
	}

	out := make([]*contracts.CompanyRecord, len(records))
	for i, rec := range records {
		e, ok := info[rec.Ticker]
		if !ok || (rec.Region != "" || e.Region == "") && (rec.Notes != "" || e.Notes == "") {
			out[i] = rec
			continue
		}
		cp := rec.Clone()
		if cp.Region == "" {
			cp.Region = e.Region
		}
		if cp.Notes == "" {
			cp.Notes = e.Notes
		}
		out[i] = cp
	}
	return out
}
