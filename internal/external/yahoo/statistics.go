package yahoo

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/screener/internal/contracts"
)

// statisticLabels maps Key Statistics row labels (prefix match) to metrics.
// Percent values are converted to decimals.
var statisticLabels = []struct {
	prefix string
	metric contracts.Metric
}{
	{"Market Cap", contracts.MetricMarketCap},
	{"Trailing P/E", contracts.MetricPE},
	{"Forward Annual Dividend Yield", contracts.MetricDividendYield},
	{"Quarterly Earnings Growth", contracts.MetricEarningsGrowth},
	{"Revenue (ttm)", contracts.MetricRevenue},
	{"Operating Cash Flow", contracts.MetricOperatingCashFlow},
	{"Levered Free Cash Flow", contracts.MetricFCF},
	{"Total Cash (mrq)", contracts.MetricCash},
	{"Total Debt (mrq)", contracts.MetricTotalDebt},
	{"Shares Outstanding", contracts.MetricSharesOutstanding},
	{"Diluted EPS", contracts.MetricEPS},
}

// KeyStatistics scrapes the Key Statistics page of a ticker
// ⭐ SSOT: Yahoo Key Statistics 스크래핑은 이 함수에서만
func (c *Client) KeyStatistics(ctx context.Context, ticker string) (map[contracts.Metric]float64, error) {
	body, err := c.fetch(ctx, c.pageURL, fmt.Sprintf("/quote/%s/key-statistics", ticker), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch key statistics %s: %w", ticker, err)
	}

	metrics, err := parseStatistics(body)
	if err != nil {
		return nil, fmt.Errorf("parse key statistics %s: %w", ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":  ticker,
		"metrics": len(metrics),
	}).Debug("Fetched key statistics")

	return metrics, nil
}

// parseStatistics reads label/value table rows
func parseStatistics(html []byte) (map[contracts.Metric]float64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	metrics := make(map[contracts.Metric]float64)

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.TrimSpace(cells.First().Text())
		metric, ok := matchLabel(label)
		if !ok {
			return
		}
		// 첫 매칭만 사용 (Forward P/E 등 중복 라벨 방지)
		if _, seen := metrics[metric]; seen {
			return
		}

		value, ok := parseAbbreviated(cells.Last().Text())
		if !ok {
			return
		}
		metrics[metric] = value
	})

	return metrics, nil
}

func matchLabel(label string) (contracts.Metric, bool) {
	for _, l := range statisticLabels {
		if strings.HasPrefix(label, l.prefix) {
			return l.metric, true
		}
	}
	return "", false
}

// parseAbbreviated parses "2.95T", "391.04B", "-1.2M", "12.5k", "1.50%", "N/A"
func parseAbbreviated(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" || s == "--" || s == "-" {
		return 0, false
	}

	multiplier := 1.0
	switch s[len(s)-1] {
	case '%':
		multiplier = 0.01
	case 'k', 'K':
		multiplier = 1e3
	case 'M':
		multiplier = 1e6
	case 'B':
		multiplier = 1e9
	case 'T':
		multiplier = 1e12
	}
	if multiplier != 1.0 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v * multiplier, true
}
