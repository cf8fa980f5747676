package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrSymbolNotFound is returned when Yahoo has no data for a symbol
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrNoClose is returned when a chart has no usable close
var ErrNoClose = errors.New("no close price in chart")

// chartResponse is the subset of /v8/finance/chart we read
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// LastClose fetches the last daily close of a symbol over the past month
// ⭐ SSOT: 매크로 프록시(^TNX, DX-Y.NYB, CL=F, GC=F) 시세 조회
func (c *Client) LastClose(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("range", "1mo")
	params.Set("interval", "1d")

	body, err := c.fetch(ctx, c.chartURL, "/v8/finance/chart/"+url.PathEscape(symbol), params)
	if err != nil {
		return 0, fmt.Errorf("fetch chart %s: %w", symbol, err)
	}

	closes, err := parseCloses(body)
	if err != nil {
		return 0, fmt.Errorf("parse chart %s: %w", symbol, err)
	}

	last, ok := lastValue(closes)
	if !ok {
		return 0, fmt.Errorf("%s: %w", symbol, ErrNoClose)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"close":  last,
	}).Debug("Fetched last close")

	return last, nil
}

// WeeklyCloses fetches weekly closes (oldest → newest) for the Simons statistics
func (c *Client) WeeklyCloses(ctx context.Context, symbol string, rng string) ([]float64, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", "1wk")

	body, err := c.fetch(ctx, c.chartURL, "/v8/finance/chart/"+url.PathEscape(symbol), params)
	if err != nil {
		return nil, fmt.Errorf("fetch weekly chart %s: %w", symbol, err)
	}

	closes, err := parseCloses(body)
	if err != nil {
		return nil, fmt.Errorf("parse weekly chart %s: %w", symbol, err)
	}

	out := make([]float64, 0, len(closes))
	for _, v := range closes {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// parseCloses extracts the close column; null entries stay nil
func parseCloses(body []byte) ([]*float64, error) {
	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrSymbolNotFound
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoClose
	}
	return result.Indicators.Quote[0].Close, nil
}

// lastValue returns the newest non-null value
func lastValue(values []*float64) (float64, bool) {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			return *values[i], true
		}
	}
	return 0, false
}
