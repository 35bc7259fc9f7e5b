// Package storeapi is the single request pipeline to the remote store API.
// It injects the visitor's bearer token and clears it on authorization
// failures.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/models"
)

// TokenHeader carries the bearer token on every authenticated request.
const TokenHeader = "token"

// TokenStore is the visitor's token as seen by the adapter. Invalidate is
// called when the API answers 401.
type TokenStore interface {
	Token() string
	Invalidate()
}

// Config holds the adapter settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the shared, visitor-independent part of the pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API rooted at cfg.BaseURL.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind scopes the client to one visitor's token.
func (c *Client) Bind(tokens TokenStore) *Conn {
	return &Conn{client: c, tokens: tokens}
}

// Anonymous returns a Conn that never sends a token.
func (c *Client) Anonymous() *Conn {
	return &Conn{client: c}
}

// Conn issues requests on behalf of one visitor.
type Conn struct {
	client *Client
	tokens TokenStore
}

func (c *Conn) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// do sends one request and decodes the response envelope into env.
func (c *Conn) do(ctx context.Context, method, path string, query url.Values, body, env any) error {
	target := c.client.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(TokenHeader, tok)
	}

	resource := resourceOf(path)
	start := time.Now()
	resp, err := c.client.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(resource, method, "error", time.Since(start).Seconds())
		c.client.logger.WarnContext(ctx, "store api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(resource, method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.tokens != nil && c.tokens.Token() != "" {
			c.tokens.Invalidate()
			metrics.ForcedLogoutsTotal.Inc()
		}
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.client.logger.InfoContext(ctx, "store api error response", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if env == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, env); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

// getData fetches path and decodes the envelope's data field into out.
func (c *Conn) getData(ctx context.Context, path string, query url.Values, out any) (*models.Envelope, error) {
	var env models.Envelope
	if err := c.do(ctx, http.MethodGet, path, query, nil, &env); err != nil {
		return nil, err
	}
	if err := decodeData(env, out); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return &env, nil
}

func decodeData(env models.Envelope, out any) error {
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

func errorMessage(raw []byte, status int) string {
	var env struct {
		Message string `json:"message"`
		Errors  struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}
	if json.Unmarshal(raw, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Errors.Msg != "" {
			return env.Errors.Msg
		}
	}
	return http.StatusText(status)
}

// resourceOf maps /products/abc to "products" for metric labels.
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "root"
	}
	return trimmed
}
