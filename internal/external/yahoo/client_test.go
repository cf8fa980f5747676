package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "^TNX", "regularMarketPrice": 4.21},
      "timestamp": [1, 2, 3, 4],
      "indicators": {"quote": [{"close": [4.10, 4.15, 4.20, null]}]}
    }],
    "error": null
  }
}`

const statisticsHTML = `<html><body>
<table>
  <tr><td>Market Cap</td><td>2.95T</td></tr>
  <tr><td>Trailing P/E</td><td>29.41</td></tr>
  <tr><td>Forward P/E</td><td>27.10</td></tr>
</table>
<table>
  <tr><td>Forward Annual Dividend Yield 4</td><td>0.52%</td></tr>
  <tr><td>Quarterly Earnings Growth (yoy)</td><td>11.10%</td></tr>
  <tr><td>Revenue (ttm)</td><td>391.04B</td></tr>
  <tr><td>Revenue Per Share (ttm)</td><td>25.48</td></tr>
  <tr><td>Levered Free Cash Flow (ttm)</td><td>110.85B</td></tr>
  <tr><td>Total Cash (mrq)</td><td>65.17B</td></tr>
  <tr><td>Total Debt (mrq)</td><td>N/A</td></tr>
  <tr><td>Shares Outstanding 5</td><td>15.12B</td></tr>
</table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Env: "test", LogLevel: "error"}
	httpClient := httputil.New(cfg, logger.NewNop()).DisableRetry()
	return NewClient(httpClient, logger.NewNop()).WithBaseURLs(server.URL, server.URL)
}

func TestClient_LastClose(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/^TNX", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(chartJSON))
	})

	// null 마지막 값은 건너뜀
	last, err := client.LastClose(context.Background(), "^TNX")
	require.NoError(t, err)
	assert.InDelta(t, 4.20, last, 1e-12)
}

func TestClient_LastCloseNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.LastClose(context.Background(), "^DXY")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSymbolNotFound))
}

func TestClient_LastCloseChartError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	})

	_, err := client.LastClose(context.Background(), "XXX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestClient_WeeklyCloses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1wk", r.URL.Query().Get("interval"))
		assert.Equal(t, "1y", r.URL.Query().Get("range"))
		w.Write([]byte(chartJSON))
	})

	closes, err := client.WeeklyCloses(context.Background(), "AAPL", "1y")
	require.NoError(t, err)
	assert.Equal(t, []float64{4.10, 4.15, 4.20}, closes)
}

func TestClient_KeyStatistics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL/key-statistics", r.URL.Path)
		w.Write([]byte(statisticsHTML))
	})

	metrics, err := client.KeyStatistics(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.InDelta(t, 2.95e12, metrics[contracts.MetricMarketCap], 1e3)
	assert.InDelta(t, 29.41, metrics[contracts.MetricPE], 1e-9)
	assert.InDelta(t, 0.0052, metrics[contracts.MetricDividendYield], 1e-12)
	assert.InDelta(t, 0.111, metrics[contracts.MetricEarningsGrowth], 1e-12)
	assert.InDelta(t, 391.04e9, metrics[contracts.MetricRevenue], 1e3)
	assert.InDelta(t, 110.85e9, metrics[contracts.MetricFCF], 1e3)
	assert.InDelta(t, 65.17e9, metrics[contracts.MetricCash], 1e3)
	assert.InDelta(t, 15.12e9, metrics[contracts.MetricSharesOutstanding], 1e3)

	// N/A는 누락
	_, ok := metrics[contracts.MetricTotalDebt]
	assert.False(t, ok)
}

func TestParseAbbreviated(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"2.95T", 2.95e12, true},
		{"391.04B", 391.04e9, true},
		{"-1.2M", -1.2e6, true},
		{"12.5k", 12500, true},
		{"1.50%", 0.015, true},
		{"1,234.5", 1234.5, true},
		{"N/A", 0, false},
		{"--", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAbbreviated(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-6)
			}
		})
	}
}
