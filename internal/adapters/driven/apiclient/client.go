// Package apiclient is the JSON-over-HTTP plumbing shared by the embedding
// and LLM adapters. Every failure comes back as a classified domain error:
// transport problems and timeouts, non-200 replies with their status and
// Retry-After, and undecodable bodies.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

// MaxResponseBytes caps how much of a reply is read.
const MaxResponseBytes = 32 << 20

// Client talks to one provider's base URL.
type Client struct {
	provider string
	baseURL  string
	header   http.Header
	http     *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBearer sends "Authorization: Bearer token".
func WithBearer(token string) Option {
	return WithHeader("Authorization", "Bearer "+token)
}

// WithHeader sends a fixed header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// New returns a client for provider rooted at baseURL. A trailing slash on
// baseURL is ignored.
func New(provider, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   make(http.Header),
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post sends in as JSON to path and returns the body of a 200 reply.
func (c *Client) Post(ctx context.Context, op, path string, in any) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}
	return c.do(ctx, op, http.MethodPost, path, bytes.NewReader(payload))
}

// PostJSON is Post followed by decoding the reply into out.
func (c *Client) PostJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := c.Post(ctx, op, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.ProviderError(op, "decode response", err)
	}
	return nil
}

// Get succeeds when path answers 200. The body is discarded.
func (c *Client) Get(ctx context.Context, op, path string) error {
	_, err := c.do(ctx, op, http.MethodGet, path, nil)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader) ([]byte, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, domain.ConfigurationError(op, fmt.Sprintf("invalid %s URL: %v", c.provider, err))
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.TransportError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, domain.TransportError(op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.ResponseError(op, c.provider, resp, data)
	}
	return data, nil
}
