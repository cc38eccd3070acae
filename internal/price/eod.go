package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tapelabs/disclosure-tape/internal/metrics"
	"github.com/tapelabs/disclosure-tape/internal/transform"
)

// EODClose returns the closing price for a symbol on a YYYY-MM-DD
// date. Lookups share the quote cache under a symbol@date key; any
// failure reports a miss rather than an error.
func (c *Client) EODClose(ctx context.Context, symbol, date string) (float64, bool) {
	if !c.Enabled() {
		return 0, false
	}

	normalized := transform.CanonicalSymbol(symbol)
	if normalized == "" || !validDate(date) {
		return 0, false
	}

	key := normalized + "@" + date
	if close, ok := c.cache.Get(key); ok {
		metrics.QuoteLookups.WithLabelValues("hit").Inc()
		return close, true
	}

	close, err := c.fetchClose(ctx, normalized, date)
	if err != nil {
		metrics.QuoteLookups.WithLabelValues("error").Inc()
		c.logger.Warn("eod close lookup failed", "symbol", normalized, "date", date, "error", err)
		return 0, false
	}
	metrics.QuoteLookups.WithLabelValues("miss").Inc()

	c.cache.Put(key, close)
	return close, true
}

func (c *Client) fetchClose(ctx context.Context, symbol, date string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("from", date)
	q.Set("to", date)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/historical-price-eod/full?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	close, ok := extractClose(body, date)
	if !ok {
		return 0, fmt.Errorf("no close for %s on %s", symbol, date)
	}
	return close, nil
}

type eodRow struct {
	Date     string   `json:"date"`
	Close    *float64 `json:"close"`
	AdjClose *float64 `json:"adjClose"`
	Price    *float64 `json:"price"`
}

// extractClose handles both payload shapes the provider emits: a bare
// row list or an envelope with a data array.
func extractClose(body []byte, date string) (float64, bool) {
	var rows []eodRow
	if err := json.Unmarshal(body, &rows); err != nil {
		var envelope struct {
			Data []eodRow `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return 0, false
		}
		rows = envelope.Data
	}

	for _, row := range rows {
		if strings.TrimSpace(row.Date) != date {
			continue
		}
		for _, v := range []*float64{row.Close, row.AdjClose, row.Price} {
			if v != nil {
				return *v, true
			}
		}
		return 0, false
	}
	return 0, false
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
