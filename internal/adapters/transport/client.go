// Package transport provides the HTTP plumbing shared by the source clients:
// an HTTP/2 capable client, status classification, retries and chunked fan-out.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/http2"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
	// MaxChunk is the largest number of identifiers sent in one request.
	MaxChunk = 100

	userAgent = "protanno"
)

// NewHTTPClient returns a client whose transport negotiates HTTP/2 over TLS.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout}
	}
	t := base.Clone()
	if err := http2.ConfigureTransport(t); err != nil {
		// The clone already speaks HTTP/1.1. HTTP/2 is an optimization.
		_ = err
	}
	return &http.Client{Transport: t, Timeout: timeout}
}

// Client sends JSON requests with retries.
type Client struct {
	http   *http.Client
	policy Policy
}

// NewClient wraps hc with the retry policy p.
func NewClient(hc *http.Client, p Policy) *Client {
	return &Client{http: hc, policy: p}
}

// GetJSON fetches url and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

// PostJSON posts body as JSON to url and decodes the JSON answer into out.
func (c *Client) PostJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return zerr.Wrap(err, domain.ErrSourceRequestFailed.Error())
	}
	return c.do(ctx, http.MethodPost, url, payload, out)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, out any) error {
	return NewRetrier(c.policy).Do(ctx, func(ctx context.Context) error {
		return c.once(ctx, method, url, payload, out)
	})
}

func (c *Client) once(ctx context.Context, method, url string, payload []byte, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return zerr.Wrap(err, domain.ErrSourceRequestFailed.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.Classify(domain.KindNetwork, zerr.Wrap(err, domain.ErrSourceRequestFailed.Error()))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if err := CheckStatus(resp); err != nil {
		return err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Classify(domain.KindNetwork, zerr.Wrap(err, domain.ErrSourceRequestFailed.Error()))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return zerr.Wrap(err, domain.ErrSourceParseFailed.Error())
	}
	return nil
}

// RateLimitError is a 429 answer, optionally carrying the requested delay.
type RateLimitError struct {
	Err   error
	After time.Duration
}

func (e *RateLimitError) Error() string { return e.Err.Error() }

// Unwrap returns the classified cause.
func (e *RateLimitError) Unwrap() error { return e.Err }

// RetryAfter returns the delay asked for by the server.
func (e *RateLimitError) RetryAfter() time.Duration { return e.After }

// CheckStatus classifies a non-2xx response. 429 is a rate limit, 5xx a
// network failure and both are retryable. Other statuses fail permanently.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	statusErr := zerr.With(domain.ErrSourceRequestFailed, "status_code", code)
	switch {
	case code == http.StatusTooManyRequests:
		return &RateLimitError{
			Err:   domain.Classify(domain.KindRateLimit, zerr.Wrap(statusErr, domain.ErrSourceRateLimited.Error())),
			After: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case code >= 500:
		return domain.Classify(domain.KindNetwork, statusErr)
	default:
		return domain.Classify(domain.KindIdentifierResolution, statusErr)
	}
}

// parseRetryAfter reads a delay in seconds. HTTP dates are not used by the
// upstream services and are ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
