package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"fxhistory-service/internal/domain"
)

// maxDocumentBytes is the default MaxBytes.
const maxDocumentBytes = 8 << 20

var ErrDocumentTooLarge = errors.New("document too large")

// Client fetches HTML documents. It does not retry; retries belong to the
// scheduler's policy.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	// Limiter throttles outbound requests when set.
	Limiter *rate.Limiter
	// MaxBytes bounds the accepted body size; zero means 8 MiB.
	MaxBytes int64
}

// NewLimiter returns a limiter allowing rps requests per second, or nil when
// rps is not positive.
func NewLimiter(rps int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), rps)
}

// GetDocument performs a GET and returns the body of a 2xx response. Any
// other outcome is a *domain.TransportError.
func (c *Client) GetDocument(ctx context.Context, url string) ([]byte, error) {
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, &domain.TransportError{URL: url, Err: err}
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.TransportError{URL: url, Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &domain.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.TransportError{URL: url, StatusCode: resp.StatusCode}
	}
	limit := c.MaxBytes
	if limit <= 0 {
		limit = maxDocumentBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &domain.TransportError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > limit {
		return nil, &domain.TransportError{URL: url, Err: fmt.Errorf("%w: over %d bytes", ErrDocumentTooLarge, limit)}
	}
	return body, nil
}
