package museum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/atelier/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Authorizer sends requests on behalf of the signed-in user.
// session.Authority implements it.
type Authorizer interface {
	IsAuthenticated() bool
	AuthorizedRequest(req *http.Request) (*http.Response, error)
}

// StatusError is a non-2xx answer from the museum API
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return domain.ErrServer }

// hasStatus reports whether err is a StatusError with the given code
func hasStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to the museum REST API. Catalog endpoints are public;
// favorites endpoints go through the Authorizer.
type Client struct {
	baseURL    string
	auth       Authorizer
	httpClient *http.Client
	logger     *slog.Logger

	retries    int
	retryDelay time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the client used for public endpoints
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how often 5xx answers and network failures are retried and the first backoff delay
func WithRetry(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
	}
}

// NewClient creates a museum API client. auth may be nil for catalog-only use.
func NewClient(baseURL string, auth Authorizer, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:     logger,
		retries:    maxRetries,
		retryDelay: baseRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs a request against the API and returns the body of a 2xx
// answer. 5xx answers and transport failures are retried with exponential
// backoff.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, authorized bool) ([]byte, error) {
	reqURL := c.baseURL + path

	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "url", reqURL)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var body io.Reader
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logger.Debug("museum request", "method", method, "url", reqURL, "attempt", attempt)

		resp, err := c.send(req, authorized)
		if err != nil {
			if !errors.Is(err, domain.ErrNetwork) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			c.logger.Warn("museum request failed, will retry",
				"attempt", attempt,
				"maxRetries", c.retries,
				"path", path,
			)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNetwork, err)
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			lastErr = &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
			c.logger.Warn("museum server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", c.retries,
				"path", path,
			)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		}

		return respBody, nil
	}

	c.logger.Error("museum request failed after retries", "error", lastErr, "method", method, "path", path)
	return nil, lastErr
}

func (c *Client) send(req *http.Request, authorized bool) (*http.Response, error) {
	if authorized {
		if c.auth == nil || !c.auth.IsAuthenticated() {
			return nil, domain.ErrUnauthenticated
		}
		// The authorizer maps 401 to ErrSessionExpired and transport
		// failures to ErrNetwork.
		return c.auth.AuthorizedRequest(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("museum request failed", "url", req.URL.String(), "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	return resp, nil
}
