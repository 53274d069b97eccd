// Package chat sends messages to the marketplace assistant and reconciles the
// streamed response into application state.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/campuschat/internal/errors"
	"github.com/diogo/campuschat/internal/models"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// Streamer opens a streamed chat response
type Streamer interface {
	Stream(ctx context.Context, msgs []models.WireMessage) (io.ReadCloser, error)
}

// Client posts conversations to the chat endpoint
type Client struct {
	httpClient    tls_client.HttpClient
	endpoint      string
	sessionCookie string
	timeout       time.Duration
	headers       map[string]string
	mu            sync.RWMutex
	closed        bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithEndpoint sets the chat endpoint URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithSessionCookie sets the storefront session cookie sent with each request
func WithSessionCookie(value string) ClientOption {
	return func(c *Client) {
		c.sessionCookie = value
	}
}

// WithTimeout bounds connecting and waiting for response headers. Reading
// the streamed body is not covered; the reconciler's idle timeout bounds that.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		endpoint: models.DefaultEndpoint,
		timeout:  models.DefaultRequestTimeout,
		headers:  models.DefaultHeaders(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(0),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the chat endpoint URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close marks the client closed and drops idle connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Stream posts the conversation and returns the response body for incremental
// reading. The caller must close it. Non-OK statuses are returned as typed
// errors and the body is closed.
func (c *Client) Stream(ctx context.Context, msgs []models.WireMessage) (io.ReadCloser, error) {
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	payload, err := json.Marshal(models.ChatRequest{Messages: msgs})
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: models.SessionCookieName, Value: c.sessionCookie})
	}

	var headerTimer *time.Timer
	if c.timeout > 0 {
		headerTimer = time.AfterFunc(c.timeout, cancel)
	}
	resp, err := c.httpClient.Do(req)
	timedOut := headerTimer != nil && !headerTimer.Stop()

	if err != nil {
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if timedOut {
			return nil, c.headerTimeoutError()
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("send message", c.endpoint, err)
	}
	if timedOut {
		_ = resp.Body.Close()
		cancel()
		return nil, c.headerTimeoutError()
	}

	if resp.StatusCode != http.StatusOK {
		defer func() {
			_ = resp.Body.Close()
			cancel()
		}()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.FromStatus(resp.StatusCode, c.endpoint, string(body))
	}

	return &responseBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

func (c *Client) headerTimeoutError() error {
	return apierrors.NewTimeoutError(fmt.Sprintf("no response from %s within %s", c.endpoint, c.timeout))
}

// responseBody releases the request context once the stream is closed
type responseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *responseBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
