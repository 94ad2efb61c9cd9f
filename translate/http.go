package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minios-linux/transkit/guard"
)

// ---------------------------------------------------------------------------
// Bearer tokens
// ---------------------------------------------------------------------------

// TokenSource supplies the bearer token for the translation service.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken returns a TokenSource that always yields tok.
func StaticToken(tok string) TokenSource {
	return staticToken(tok)
}

type staticToken string

func (t staticToken) Token(context.Context) (string, error) { return string(t), nil }

// RefreshingToken fetches a fresh bearer token on a fixed interval. The
// translation service expires tokens server-side, so a token older than
// Interval is discarded before use.
type RefreshingToken struct {
	// Fetch obtains a new token from the auth endpoint.
	Fetch func(ctx context.Context) (string, error)
	// Interval is how long a fetched token stays usable (default 9 minutes).
	Interval time.Duration

	mu        sync.Mutex
	cached    string
	fetchedAt time.Time
}

func (t *RefreshingToken) interval() time.Duration {
	if t.Interval > 0 {
		return t.Interval
	}
	return 9 * time.Minute
}

// Token returns the cached token, refreshing it when stale.
func (t *RefreshingToken) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cached != "" && time.Since(t.fetchedAt) < t.interval() {
		return t.cached, nil
	}
	tok, err := t.Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	t.cached = tok
	t.fetchedAt = time.Now()
	return tok, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
func (t *RefreshingToken) Invalidate() {
	t.mu.Lock()
	t.cached = ""
	t.mu.Unlock()
}

// ---------------------------------------------------------------------------
// HTTP engine
// ---------------------------------------------------------------------------

// Engine is a translation service client whose Translate method satisfies
// Func. One call translates one guarded string.
type Engine struct {
	// BaseURL is the service base URL.
	BaseURL string
	// Token authenticates requests (optional for local services).
	Token TokenSource
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the per-request timeout.
	Timeout time.Duration

	once   sync.Once
	client *http.Client
}

func (e *Engine) httpClient() *http.Client {
	e.once.Do(func() {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if e.Proxy != "" {
			if parsed, err := url.Parse(e.Proxy); err == nil {
				transport.Proxy = http.ProxyURL(parsed)
			}
		} else {
			transport.Proxy = http.ProxyFromEnvironment
		}
		timeout := e.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		e.client = &http.Client{Transport: transport, Timeout: timeout}
	})
	return e.client
}

type translateRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	Text   string `json:"text"`
}

type translateResponse struct {
	Translation string `json:"translation"`
	Error       string `json:"error,omitempty"`
}

// Translate sends one guarded string to the service and returns its raw
// output. A 401 invalidates a refreshable token and retries once; every
// other failure is returned to the caller, whose fixed-delay retry loop
// owns transient errors.
func (e *Engine) Translate(ctx context.Context, source, target string, format guard.Format, text string) (string, error) {
	for attempt := 0; ; attempt++ {
		out, status, err := e.call(ctx, source, target, format, text)
		if err == nil {
			return out, nil
		}
		if status == http.StatusUnauthorized && attempt == 0 {
			if inv, ok := e.Token.(interface{ Invalidate() }); ok {
				inv.Invalidate()
				continue
			}
		}
		return "", err
	}
}

func (e *Engine) call(ctx context.Context, source, target string, format guard.Format, text string) (string, int, error) {
	body, err := json.Marshal(translateRequest{
		Source: source,
		Target: target,
		Format: format.String(),
		Text:   text,
	})
	if err != nil {
		return "", 0, fmt.Errorf("building request: %w", err)
	}

	endpoint := strings.TrimRight(e.BaseURL, "/") + "/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.Token != nil {
		tok, err := e.Token.Token(ctx)
		if err != nil {
			return "", 0, err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := e.httpClient().Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("translation request: %w", err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("service returned status %d: %s",
			resp.StatusCode, truncate(string(respBody), 300))
	}

	var parsed translateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("invalid JSON response: %w", err)
	}
	if parsed.Error != "" {
		return "", resp.StatusCode, fmt.Errorf("service error: %s", parsed.Error)
	}
	return parsed.Translation, resp.StatusCode, nil
}

// truncate shortens s for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
