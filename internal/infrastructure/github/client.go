package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"BacklogStatus/internal/config"
)

const (
	defaultAPIBase = "https://api.github.com"
	defaultWebBase = "https://github.com"
	userAgent      = "BacklogStatus/1.0"
	sessionCookie  = "user_session"
)

// Client holds the HTTP plumbing shared by the feed, credential and status
// adapters: one cookie jar for the web session and one request pacer.
type Client struct {
	http    *http.Client
	apiBase string
	webBase string
	limiter *rate.Limiter
}

// NewClient builds a client from configuration. A non-empty session cookie is
// planted in the jar for the web base URL.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	apiBase := strings.TrimSuffix(orDefault(cfg.APIBaseURL, defaultAPIBase), "/")
	webBase := strings.TrimSuffix(orDefault(cfg.WebBaseURL, defaultWebBase), "/")

	if cfg.SessionCookie != "" {
		web, err := url.Parse(webBase)
		if err != nil {
			return nil, fmt.Errorf("invalid web base url %s: %w", webBase, err)
		}
		jar.SetCookies(web, []*http.Cookie{{Name: sessionCookie, Value: cfg.SessionCookie, Path: "/"}})
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Client{
		http:    &http.Client{Timeout: timeout, Jar: jar},
		apiBase: apiBase,
		webBase: webBase,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, header http.Header) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	return resp, nil
}

func tokenHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "token "+token)
	h.Set("Accept", "application/vnd.github+json")
	return h
}

// statusText returns the server's reason phrase, or the standard one when the
// response carries none.
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
