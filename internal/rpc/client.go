package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/toolyhq/tooly-storefront/pkg/config"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

const (
	// ChannelTokenHeader carries the tenant/channel identifier on every call.
	ChannelTokenHeader = "channel-token"

	responseBodyReadLimit int64 = 4 << 20
)

var errEndpointRequired = errors.New("commerce endpoint url is required")

// Request is the query/mutation envelope sent to the commerce backend.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// ResponseError is one entry of the envelope's errors array.
type ResponseError struct {
	Message string `json:"message"`
}

// Response is the envelope the commerce backend returns.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors,omitempty"`
}

// TokenStore persists the backend's order-session token per storefront session.
type TokenStore interface {
	BackendToken(ctx context.Context, sessionID string) (string, error)
	SetBackendToken(ctx context.Context, sessionID, token string) error
}

// Client executes typed query/mutation envelopes against the commerce backend.
// It injects the channel token, forwards the session's backend cookie, and
// captures a rotated cookie from the response.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	channelToken string
	cookieName   string
	tokens       TokenStore
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the commerce RPC client.
func NewClient(cfg config.CommerceConfig, tokens TokenStore, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.EndpointURL)
	if endpoint == "" {
		return nil, errEndpointRequired
	}
	if tokens == nil {
		return nil, errors.New("token store is required")
	}

	timeout := cfg.RPCTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		endpoint:     endpoint,
		channelToken: strings.TrimSpace(cfg.ChannelToken),
		cookieName:   cfg.SessionCookie,
		tokens:       tokens,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Exec sends one envelope and decodes the data payload into out. Any failure
// to complete or parse the call is returned as a plain error; classification
// into domain vs transport happens one layer up.
func (c *Client) Exec(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(Request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding rpc envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.channelToken != "" {
		req.Header.Set(ChannelTokenHeader, c.channelToken)
	}

	sessionID := session.IDFromContext(ctx)
	if sessionID != "" {
		token, err := c.tokens.BackendToken(ctx, sessionID)
		if err == nil && token != "" {
			req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling commerce backend: %w", err)
	}
	defer resp.Body.Close()

	c.captureSessionToken(ctx, sessionID, resp)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return fmt.Errorf("reading rpc response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("commerce backend returned status %d", resp.StatusCode)
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding rpc envelope: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("commerce backend error: %s", envelope.Errors[0].Message)
	}
	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 {
		return errors.New("commerce backend returned no data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decoding rpc data: %w", err)
	}
	return nil
}

// Forward sends a caller-supplied envelope verbatim and returns the raw
// response body and status. The channel token and session cookie handling
// match Exec; the payload is never inspected beyond being valid JSON.
func (c *Client) Forward(ctx context.Context, payload []byte) ([]byte, int, error) {
	if !json.Valid(payload) {
		return nil, 0, errors.New("request body is not valid json")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("building rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.channelToken != "" {
		req.Header.Set(ChannelTokenHeader, c.channelToken)
	}

	sessionID := session.IDFromContext(ctx)
	if sessionID != "" {
		token, err := c.tokens.BackendToken(ctx, sessionID)
		if err == nil && token != "" {
			req.AddCookie(&http.Cookie{Name: c.cookieName, Value: token})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("calling commerce backend: %w", err)
	}
	defer resp.Body.Close()

	c.captureSessionToken(ctx, sessionID, resp)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, 0, fmt.Errorf("reading rpc response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

// Ping checks that the commerce endpoint is reachable. Any HTTP response
// counts; the endpoint rejecting an empty envelope still proves liveness.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("building ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce backend unreachable: %w", err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	resp.Body.Close()
	return nil
}

// captureSessionToken stores a rotated backend cookie so the next call from
// this session stays bound to the same in-progress order.
func (c *Client) captureSessionToken(ctx context.Context, sessionID string, resp *http.Response) {
	if sessionID == "" {
		return
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name != c.cookieName || cookie.Value == "" {
			continue
		}
		// best effort: a failed store means the next call starts a fresh
		// backend session, which the snapshot-replacement model tolerates
		_ = c.tokens.SetBackendToken(ctx, sessionID, cookie.Value)
		return
	}
}
