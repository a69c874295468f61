package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/alphabeta/internal/infra"
	"github.com/seenimoa/alphabeta/pkg/models"
	"github.com/seenimoa/alphabeta/pkg/utils"
)

// defaultChartBaseURL is Yahoo's v8 chart API; overridable for tests.
const defaultChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Client fetches daily closes from Yahoo Finance with caching, rate
// limiting, and bounded-concurrency fan-out across symbols.
type Client struct {
	baseURL     string
	cache       *infra.Cache
	limiter     *infra.RateLimiter
	concurrency int
}

// Options tunes a Client. Zero values fall back to defaults.
type Options struct {
	CacheTTL          time.Duration // default 15m
	RequestsPerSecond int           // default 5
	ConcurrentFetches int           // default 4
	BaseURL           string        // default Yahoo chart API; tests override
}

// NewClient creates a Yahoo Finance client.
func NewClient(opts Options) *Client {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Minute
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.ConcurrentFetches <= 0 {
		opts.ConcurrentFetches = 4
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultChartBaseURL
	}
	return &Client{
		baseURL:     opts.BaseURL,
		cache:       infra.NewCache(opts.CacheTTL),
		limiter:     infra.NewRateLimiter(opts.RequestsPerSecond, time.Second),
		concurrency: opts.ConcurrentFetches,
	}
}

// DailyClose is one trading day's closing price.
type DailyClose struct {
	Date  time.Time
	Close float64
}

// --- Yahoo chart API response types ---

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// DailyCloses fetches the daily closing price series for one symbol over
// [from, to]. Days Yahoo reports with a null close are dropped.
func (c *Client) DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]DailyClose, error) {
	symbol = utils.NormalizeSymbol(symbol)

	cacheKey := fmt.Sprintf("closes:%s:%d:%d", symbol, from.Unix(), to.Unix())
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]DailyClose), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, symbol, from.Unix(), to.Unix())
	body, err := doGet(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var resp chartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	closes := parseCloses(resp.Chart.Result[0])
	if len(closes) == 0 {
		return nil, fmt.Errorf("%w: %s returned no closes", ErrSymbolNotFound, symbol)
	}
	c.cache.Set(cacheKey, closes)
	return closes, nil
}

// parseCloses converts a chart result into dated closes, skipping null
// cells and normalizing timestamps to pure UTC dates.
func parseCloses(r chartResult) []DailyClose {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]
	out := make([]DailyClose, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		out = append(out, DailyClose{
			Date:  utils.DateOnly(time.Unix(ts, 0).UTC()),
			Close: *q.Close[i],
		})
	}
	return out
}

// PriceTable downloads all symbols concurrently and joins them onto the
// union of trading dates. A date missing for one symbol gets a missing
// (NaN) cell — the analysis engine's return deriver handles the gap. Fails
// if any symbol cannot be fetched at all.
func (c *Client) PriceTable(ctx context.Context, symbols []string, from, to time.Time) (*models.PriceTable, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols requested")
	}

	norm := make([]string, len(symbols))
	for i, s := range symbols {
		norm[i] = utils.NormalizeSymbol(s)
	}

	var mu sync.Mutex
	perSymbol := make(map[string][]DailyClose, len(norm))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, sym := range norm {
		sym := sym
		g.Go(func() error {
			closes, err := c.DailyCloses(gctx, sym, from, to)
			if err != nil {
				return err
			}
			mu.Lock()
			perSymbol[sym] = closes
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Union of all trading dates, ascending.
	dateSet := make(map[time.Time]bool)
	for _, closes := range perSymbol {
		for _, dc := range closes {
			dateSet[dc.Date] = true
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	table := &models.PriceTable{
		Dates:   dates,
		Columns: norm,
		Prices:  make(map[string][]float64, len(norm)),
	}
	for _, sym := range norm {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = models.Missing()
		}
		for _, dc := range perSymbol[sym] {
			col[index[dc.Date]] = dc.Close
		}
		table.Prices[sym] = col
	}
	return table, nil
}
