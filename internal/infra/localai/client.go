package localai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ChrisRuff/obsidian-localai/internal/formdata"
	"github.com/ChrisRuff/obsidian-localai/internal/infra"
)

// Observer receives one call per upstream request attempt.
type Observer interface {
	ObserveRequest(api string, status int, elapsed time.Duration)
}

// Client talks to an OpenAI-compatible inference server. Target URLs come
// with every request so settings changes apply immediately.
type Client struct {
	httpClient *http.Client
	encoder    *formdata.Encoder
	retry      infra.RetryConfig
	observer   Observer
	logger     *slog.Logger
}

type Option func(*Client)

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithRetry(cfg infra.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithEncoder(e *formdata.Encoder) Option {
	return func(c *Client) { c.encoder = e }
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		encoder:    formdata.NewEncoder(),
		retry:      infra.DefaultRetryConfig(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post sends one request and hands a 2xx response body to decode.
func (c *Client) post(ctx context.Context, api, url, contentType string, body []byte, decode func(io.Reader) error) error {
	return infra.WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return &infra.PermanentError{Err: fmt.Errorf("creating request: %w", err)}
		}
		req.Header.Set("Content-Type", contentType)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.observe(api, 0, start)
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()
		c.observe(api, resp.StatusCode, start)

		c.logger.Debug("upstream response", "api", api, "url", url, "status", resp.StatusCode)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			apiErr := fmt.Errorf("%s API error %d: %s", api, resp.StatusCode, string(respBody))
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return apiErr
			}
			return &infra.PermanentError{Err: apiErr}
		}

		if err := decode(resp.Body); err != nil {
			return &infra.PermanentError{Err: fmt.Errorf("decoding response: %w", err)}
		}
		return nil
	})
}

func (c *Client) observe(api string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(api, status, time.Since(start))
	}
}
