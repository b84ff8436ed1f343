package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/marlinhq/marlin/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validSymbol matches stock symbols like AAPL, MSFT, 600519.SH, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo fetches daily bar history from the Yahoo Finance chart API.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// NewYahoo creates a Yahoo history provider.
func NewYahoo() *Yahoo {
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

// toYahooSymbol converts internal symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

// FetchHistory fetches historical OHLCV bars in ascending time order.
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(-2, 0, 0)
	}

	url := fmt.Sprintf("%s/%s?interval=%s&period1=%d&period2=%d",
		y.baseURL, y.toYahooSymbol(symbol), y.toYahooInterval(interval), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrSymbolNotFound,
			fmt.Errorf("no data for symbol: %s", symbol))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("empty quote payload for %s", symbol))
	}

	timestamps := r.Timestamp
	quotes := r.Indicators.Quote[0]

	bars := make([]core.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		// The API occasionally returns quote arrays shorter than the
		// timestamp list; treat the overhang as missing data.
		if i >= len(quotes.Open) || i >= len(quotes.High) || i >= len(quotes.Low) ||
			i >= len(quotes.Close) || i >= len(quotes.Volume) {
			break
		}
		if quotes.Open[i] == nil || quotes.High[i] == nil || quotes.Low[i] == nil ||
			quotes.Close[i] == nil || quotes.Volume[i] == nil {
			continue // Skip missing data
		}
		bars = append(bars, core.Bar{
			Time:   time.Unix(int64(ts), 0).UTC(),
			Open:   *quotes.Open[i],
			High:   *quotes.High[i],
			Low:    *quotes.Low[i],
			Close:  *quotes.Close[i],
			Volume: int64(*quotes.Volume[i]),
		})
	}

	return bars, nil
}

func (y *Yahoo) toYahooInterval(interval core.Interval) string {
	switch interval {
	case core.IntervalDay, core.IntervalWeek, core.IntervalMonth:
		return string(interval)
	default:
		return string(core.IntervalDay)
	}
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
