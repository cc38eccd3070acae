package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tapelabs/disclosure-tape/internal/metrics"
	"github.com/tapelabs/disclosure-tape/internal/transform"
)

// APIError represents an error from the quote provider.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Client fetches short quotes from the pricing provider. A zero base
// URL disables lookups entirely; every other failure degrades to an
// empty result.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
	logger     *slog.Logger
}

// ClientConfig carries the provider settings.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	RatePerSec float64
	Burst      int
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		cache:      NewCache(cfg.CacheTTL),
		logger:     logger,
	}
}

// Enabled reports whether a provider is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type quoteRow struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// CurrentPrices returns {SYMBOL: price} for the given symbols. Cached
// quotes are served without a provider call; misses are fetched in one
// batch. Never returns an error, only a possibly partial map.
func (c *Client) CurrentPrices(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64)
	if !c.Enabled() {
		return prices
	}

	seen := make(map[string]bool)
	var misses []string
	for _, s := range symbols {
		symbol := transform.CanonicalSymbol(s)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		if price, ok := c.cache.Get(symbol); ok {
			metrics.QuoteLookups.WithLabelValues("hit").Inc()
			prices[symbol] = price
			continue
		}
		misses = append(misses, symbol)
	}
	if len(misses) == 0 {
		return prices
	}
	sort.Strings(misses)

	rows, err := c.batchQuotes(ctx, misses)
	if err != nil {
		metrics.QuoteLookups.WithLabelValues("error").Inc()
		c.logger.Warn("quote lookup failed", "symbols", len(misses), "error", err)
		return prices
	}

	for _, row := range rows {
		symbol := transform.CanonicalSymbol(row.Symbol)
		if symbol == "" {
			continue
		}
		c.cache.Put(symbol, row.Price)
		prices[symbol] = row.Price
	}
	metrics.QuoteLookups.WithLabelValues("miss").Add(float64(len(misses)))

	return prices
}

func (c *Client) batchQuotes(ctx context.Context, symbols []string) ([]quoteRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("symbols", strings.Join(symbols, ","))
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/batch-quote-short?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	var rows []quoteRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal quotes: %w", err)
	}
	return rows, nil
}
