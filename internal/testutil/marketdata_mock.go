package testutil

import (
	"fmt"
	"sync"
	"time"

	"github.com/ameyrk/wealthledger/internal/marketdata"
)

// MockMarketClient is a mock implementation of marketdata.MarketClient.
// It serves canned quotes and histories instead of calling the provider.
type MockMarketClient struct {
	// Quotes are returned from FetchLatest, keyed by symbol.
	Quotes map[string]marketdata.Quote
	// History is returned from FetchDailyHistory, keyed by symbol.
	History map[string][]marketdata.PricePoint
	// Err, when set, is returned from every call.
	Err error

	mu           sync.Mutex
	LatestCalls  int
	HistoryCalls int
}

// NewMockMarketClient creates an empty mock market client.
func NewMockMarketClient() *MockMarketClient {
	return &MockMarketClient{
		Quotes:  map[string]marketdata.Quote{},
		History: map[string][]marketdata.PricePoint{},
	}
}

// WithQuote adds a canned quote for a symbol.
func (m *MockMarketClient) WithQuote(symbol string, price float64, currency string) *MockMarketClient {
	m.Quotes[symbol] = marketdata.Quote{Symbol: symbol, Price: price, Currency: currency}
	return m
}

// WithHistory adds a canned history series for a symbol.
func (m *MockMarketClient) WithHistory(symbol string, points []marketdata.PricePoint) *MockMarketClient {
	m.History[symbol] = points
	return m
}

// FetchLatest returns the canned quotes for whichever symbols are known.
func (m *MockMarketClient) FetchLatest(symbols []string) (map[string]marketdata.Quote, error) {
	m.mu.Lock()
	m.LatestCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	out := map[string]marketdata.Quote{}
	for _, s := range symbols {
		if q, ok := m.Quotes[s]; ok {
			out[s] = q
		}
	}
	return out, nil
}

// FetchDailyHistory returns the canned series for the symbol.
func (m *MockMarketClient) FetchDailyHistory(symbol string, _, _ time.Time) ([]marketdata.PricePoint, error) {
	m.mu.Lock()
	m.HistoryCalls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	points, ok := m.History[symbol]
	if !ok {
		return nil, fmt.Errorf("no history for %s", symbol)
	}
	return points, nil
}

// MockNavClient is a mock implementation of marketdata.NavClient. Safe for
// concurrent use; the refresher fetches NAVs on a worker pool.
type MockNavClient struct {
	// Navs are returned from FetchLatestNav, keyed by scheme code.
	Navs map[string]marketdata.Quote
	// History is returned from FetchNavHistory, keyed by scheme code.
	History map[string][]marketdata.PricePoint
	// Err, when set, is returned from every call.
	Err error

	mu    sync.Mutex
	Calls int
}

// NewMockNavClient creates an empty mock NAV client.
func NewMockNavClient() *MockNavClient {
	return &MockNavClient{
		Navs:    map[string]marketdata.Quote{},
		History: map[string][]marketdata.PricePoint{},
	}
}

// WithNav adds a canned latest NAV for a scheme code.
func (m *MockNavClient) WithNav(code string, nav float64) *MockNavClient {
	m.Navs[code] = marketdata.Quote{Symbol: code, Price: nav, Currency: "INR"}
	return m
}

// WithHistory adds a canned NAV series for a scheme code.
func (m *MockNavClient) WithHistory(code string, points []marketdata.PricePoint) *MockNavClient {
	m.History[code] = points
	return m
}

// FetchLatestNav returns the canned NAV for the scheme code.
func (m *MockNavClient) FetchLatestNav(code string) (marketdata.Quote, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.Err != nil {
		return marketdata.Quote{}, m.Err
	}
	q, ok := m.Navs[code]
	if !ok {
		return marketdata.Quote{}, fmt.Errorf("no nav for %s", code)
	}
	return q, nil
}

// FetchNavHistory returns the canned series for the scheme code.
func (m *MockNavClient) FetchNavHistory(code string, _, _ time.Time) ([]marketdata.PricePoint, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	points, ok := m.History[code]
	if !ok {
		return nil, fmt.Errorf("no nav history for %s", code)
	}
	return points, nil
}

// DailySeries builds a consecutive daily price series starting at a
// YYYY-MM-DD date, one point per price.
func DailySeries(start string, prices ...float64) []marketdata.PricePoint {
	d, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(fmt.Sprintf("invalid series start date %q: %v", start, err))
	}

	points := make([]marketdata.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = marketdata.PricePoint{Date: d.AddDate(0, 0, i), Price: p}
	}
	return points
}
