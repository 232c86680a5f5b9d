package marketdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ameyrk/wealthledger/internal/apperrors"
)

// chartResponse maps the chart API's raw JSON response.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency     string `json:"currency"`
				Symbol       string `json:"symbol"`
				ExchangeName string `json:"exchangeName"`
				LongName     string `json:"longName"`
				Shortname    string `json:"shortName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// ChartClient fetches prices from a chart-style quote API. It implements
// MarketClient. Requests carry a short timeout so one unresponsive provider
// cannot stall a whole refresh or backfill batch.
type ChartClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewChartClient creates a chart client against the public endpoint.
func NewChartClient() *ChartClient {
	return &ChartClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com/v8/finance/chart",
	}
}

// NewChartClientWithBase creates a chart client against a custom endpoint.
// Used by tests to point at an httptest server.
func NewChartClientWithBase(baseURL string) *ChartClient {
	return &ChartClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// FetchLatest returns the most recent closing price for each symbol. The
// provider has no multi-symbol endpoint, so the batch fans out over a
// bounded worker group; symbols that fail are simply absent from the
// result, never failing the batch.
func (c *ChartClient) FetchLatest(symbols []string) (map[string]Quote, error) {
	quotes := make(map[string]Quote, len(symbols))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(10)
	for _, symbol := range symbols {
		g.Go(func() error {
			quote, err := c.fetchLatestOne(symbol)
			if err != nil {
				// Skipped symbols stay stale; the caller logs them.
				return nil
			}
			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return quotes, nil
}

// fetchLatestOne queries a 5-day window so a previous close is available
// even right after weekends and holidays, and returns the last close.
func (c *ChartClient) fetchLatestOne(symbol string) (Quote, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=5d", c.baseURL, symbol)
	result, err := c.queryChart(url)
	if err != nil {
		return Quote{}, err
	}

	points, currency, err := parseChart(result, symbol)
	if err != nil {
		return Quote{}, err
	}

	last := points[len(points)-1]
	return Quote{Symbol: symbol, Price: last.Price, Currency: currency}, nil
}

// FetchDailyHistory returns daily closing prices for the inclusive date
// range, ordered ascending.
func (c *ChartClient) FetchDailyHistory(symbol string, start, end time.Time) ([]PricePoint, error) {
	url := fmt.Sprintf(
		"%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		symbol,
		start.Unix(),
		end.AddDate(0, 0, 1).Unix(),
	)
	result, err := c.queryChart(url)
	if err != nil {
		return nil, err
	}

	points, _, err := parseChart(result, symbol)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// queryChart executes a GET against the chart API and decodes the envelope.
// The User-Agent header mimics a browser; the API blocks default Go agents.
func (c *ChartClient) queryChart(url string) (chartResponse, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return chartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResponse{}, err
	}

	var response chartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return chartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("chart API error: %s", *response.Chart.Error)
	}

	return response, nil
}

// parseChart validates the envelope and extracts (date, close) points plus
// the quote currency. Null closes (halted days) are dropped.
func parseChart(response chartResponse, symbol string) ([]PricePoint, string, error) {
	if len(response.Chart.Result) == 0 {
		return nil, "", fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, symbol)
	}

	result := response.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, "", fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, symbol)
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, "", fmt.Errorf("mismatched data lengths for %s", symbol)
	}

	points := make([]PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == 0 {
			continue
		}
		points = append(points, PricePoint{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Price: closes[i],
		})
	}

	if len(points) == 0 {
		return nil, "", fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, symbol)
	}

	return points, result.Meta.Currency, nil
}
