package marketdata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/ameyrk/wealthledger/internal/apperrors"
)

// navDateFormat is the provider's DD-MM-YYYY date representation.
const navDateFormat = "02-01-2006"

// navResponse maps the NAV provider's JSON payload: a scheme metadata block
// and a date-descending list of NAV strings.
type navResponse struct {
	Meta struct {
		SchemeName string `json:"scheme_name"`
		SchemeCode int    `json:"scheme_code"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		Nav  string `json:"nav"`
	} `json:"data"`
}

// NavHTTPClient fetches mutual fund NAVs, one HTTP call per scheme code.
// It implements NavClient.
type NavHTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewNavClient creates a NAV client against the public endpoint.
func NewNavClient() *NavHTTPClient {
	return &NavHTTPClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.mfapi.in/mf",
	}
}

// NewNavClientWithBase creates a NAV client against a custom endpoint.
// Used by tests to point at an httptest server.
func NewNavClientWithBase(baseURL string) *NavHTTPClient {
	return &NavHTTPClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// FetchLatestNav returns the most recently published NAV for a scheme code.
func (c *NavHTTPClient) FetchLatestNav(code string) (Quote, error) {
	points, err := c.fetchAll(code)
	if err != nil {
		return Quote{}, err
	}
	last := points[len(points)-1]
	return Quote{Symbol: code, Price: last.Price, Currency: "INR"}, nil
}

// FetchNavHistory returns the scheme's published NAVs within the inclusive
// date range, ordered ascending. The provider always returns the full
// history; filtering happens client-side.
func (c *NavHTTPClient) FetchNavHistory(code string, start, end time.Time) ([]PricePoint, error) {
	points, err := c.fetchAll(code)
	if err != nil {
		return nil, err
	}

	filtered := points[:0]
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		filtered = append(filtered, p)
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, code)
	}
	return filtered, nil
}

// fetchAll retrieves and parses the scheme's full NAV history, ascending.
func (c *NavHTTPClient) fetchAll(code string) ([]PricePoint, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, code)
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NAV provider returned status %d for %s", resp.StatusCode, code)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response navResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}

	if len(response.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, code)
	}

	points := make([]PricePoint, 0, len(response.Data))
	for _, row := range response.Data {
		date, err := time.Parse(navDateFormat, row.Date)
		if err != nil {
			continue
		}
		nav, err := strconv.ParseFloat(row.Nav, 64)
		if err != nil || nav <= 0 {
			continue
		}
		points = append(points, PricePoint{Date: date.UTC(), Price: nav})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPriceHistory, code)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
