// Package defillama fetches the external protocol dataset with
// ETag-conditional requests so unchanged snapshots are skipped.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 60 * time.Second
	userAgent      = "coindrop.kr/1.0"

	// bodyExcerptLimit bounds the error body carried in FetchError.
	bodyExcerptLimit = 512
)

// Protocol is one record of the source dataset. Field names follow the
// upstream API; only the fields the pipeline consumes are decoded.
type Protocol struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Slug    string   `json:"slug"`
	Chains  []string `json:"chains"`
	URL     string   `json:"url"`
	Twitter string   `json:"twitter"`
	TVL     float64  `json:"tvl"`
	Symbol  string   `json:"symbol"`
}

// Result is one conditional fetch outcome. When Changed is false the
// snapshot matched the previous ETag and Records is empty; callers must
// skip all downstream work.
type Result struct {
	Records []Protocol
	ETag    string
	Changed bool
}

// FetchError is a non-success response from the data source. It aborts
// the whole batch: there is no partial protocol list to iterate.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("defillama: http status %d: %s", e.Status, e.Body)
}

// Client fetches the protocol list.
type Client struct {
	httpClient *http.Client
	url        string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a client. ratePerSec bounds outbound requests; zero or
// negative disables limiting.
func New(url string, timeout time.Duration, ratePerSec float64, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		limiter:    limiter,
		logger:     logger.With("component", "defillama"),
	}
}

// Fetch retrieves the protocol list, sending prevETag as If-None-Match.
// A 304 yields Changed=false with the previous ETag echoed back.
func (c *Client) Fetch(ctx context.Context, prevETag string) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if prevETag != "" {
		req.Header.Set("If-None-Match", prevETag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		c.logger.Debug("source unchanged", "etag", prevETag)
		etag := resp.Header.Get("ETag")
		if etag == "" {
			etag = prevETag
		}
		return &Result{ETag: etag, Changed: false}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := string(body)
		if len(excerpt) > bodyExcerptLimit {
			excerpt = excerpt[:bodyExcerptLimit]
		}
		return nil, &FetchError{Status: resp.StatusCode, Body: excerpt}
	}

	var records []Protocol
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal protocol list: %w", err)
	}

	return &Result{
		Records: records,
		ETag:    resp.Header.Get("ETag"),
		Changed: true,
	}, nil
}
