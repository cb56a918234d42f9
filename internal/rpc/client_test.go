package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/toolyhq/tooly-storefront/pkg/config"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryTokens() *memoryTokens {
	return &memoryTokens{tokens: make(map[string]string)}
}

func (m *memoryTokens) BackendToken(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[sessionID], nil
}

func (m *memoryTokens) SetBackendToken(ctx context.Context, sessionID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sessionID] = token
	return nil
}

func testConfig() config.CommerceConfig {
	return config.CommerceConfig{
		EndpointURL:   "http://commerce.test/shop-api",
		ChannelToken:  "channel-abc",
		SessionCookie: "session",
		RPCTimeout:    time.Second,
	}
}

func newTestClient(t *testing.T, tokens TokenStore, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(testConfig(), tokens, WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string, headers http.Header) *http.Response {
	if headers == nil {
		headers = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     headers,
	}
}

func TestExecSendsEnvelopeWithChannelTokenAndCookie(t *testing.T) {
	tokens := newMemoryTokens()
	tokens.SetBackendToken(context.Background(), "sess-1", "backend-token")

	var captured *http.Request
	var capturedBody map[string]any
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(raw, &capturedBody); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"data":{"activeOrder":null}}`, nil), nil
	})

	client := newTestClient(t, tokens, rt)
	ctx := session.WithID(context.Background(), "sess-1")

	var out struct {
		ActiveOrder any `json:"activeOrder"`
	}
	if err := client.Exec(ctx, "query { activeOrder { id } }", nil, &out); err != nil {
		t.Fatalf("exec: %v", err)
	}

	if captured.Header.Get(ChannelTokenHeader) != "channel-abc" {
		t.Fatalf("channel token header missing")
	}
	cookie, err := captured.Cookie("session")
	if err != nil || cookie.Value != "backend-token" {
		t.Fatalf("expected backend cookie forwarded, got %v err=%v", cookie, err)
	}
	if capturedBody["query"] != "query { activeOrder { id } }" {
		t.Fatalf("unexpected query in envelope: %v", capturedBody["query"])
	}
}

func TestExecCapturesRotatedSessionCookie(t *testing.T) {
	tokens := newMemoryTokens()
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		headers := http.Header{}
		headers.Add("Set-Cookie", "session=rotated-token; Path=/; HttpOnly")
		return jsonResponse(http.StatusOK, `{"data":{}}`, headers), nil
	})

	client := newTestClient(t, tokens, rt)
	ctx := session.WithID(context.Background(), "sess-2")

	if err := client.Exec(ctx, "query { activeOrder { id } }", nil, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got, _ := tokens.BackendToken(context.Background(), "sess-2"); got != "rotated-token" {
		t.Fatalf("expected rotated token captured, got %q", got)
	}
}

func TestExecReturnsErrorOnEnvelopeErrors(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"errors":[{"message":"something broke"}]}`, nil), nil
	})
	client := newTestClient(t, newMemoryTokens(), rt)

	err := client.Exec(context.Background(), "query { activeOrder { id } }", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "something broke") {
		t.Fatalf("expected envelope error surfaced, got %v", err)
	}
}

func TestExecReturnsErrorOnHTTPFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `upstream died`, nil), nil
	})
	client := newTestClient(t, newMemoryTokens(), rt)

	err := client.Exec(context.Background(), "query { activeOrder { id } }", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestExecReturnsErrorOnMalformedBody(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not json at all`, nil), nil
	})
	client := newTestClient(t, newMemoryTokens(), rt)

	if err := client.Exec(context.Background(), "query { activeOrder { id } }", nil, nil); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(config.CommerceConfig{}, newMemoryTokens()); err == nil {
		t.Fatalf("expected error for missing endpoint")
	}
	if _, err := NewClient(testConfig(), nil); err == nil {
		t.Fatalf("expected error for missing token store")
	}
}
