package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const maxResponseBodySize = 1 << 20 // 1MB

// warmupTimeout bounds the session warm-up request against the site root.
const warmupTimeout = 10 * time.Second

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// connection pooling limits; every worker talks to the same host
const (
	defaultMaxIdleConns        = 50
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code.
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	// nil means an HTTP response was received, whatever its status.
	Error error
}

// Client is the process-wide HTTP session.
//
// Client is safe for concurrent use: net/http and cookiejar are both
// concurrency-safe and the warm-up state is guarded by a mutex.
type Client struct {
	httpClient *http.Client
	jar        *cookiejar.Jar
	headers    map[string]string
	siteURL    string

	mu     sync.Mutex
	warmed bool
}

// DefaultHeaders returns the browser-like header set sent with every request.
// Referer and Origin are derived from siteURL.
func DefaultHeaders(siteURL string) map[string]string {
	origin := strings.TrimRight(siteURL, "/")
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         origin + "/",
		"Origin":          origin,
	}
}

// NewClient creates a session [Client] for the given site.
//
// siteURL is the page fetched once by [Client.EnsureSession] to pick up
// session cookies. headers are sent with every request; when nil,
// [DefaultHeaders] is used. Timeouts are applied per request, not globally.
func NewClient(siteURL string, headers map[string]string) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if headers == nil {
		headers = DefaultHeaders(siteURL)
	}

	return &Client{
		httpClient: &http.Client{
			Jar: jar,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		jar:     jar,
		headers: headers,
		siteURL: siteURL,
	}, nil
}

// Get performs a GET request with the session headers and cookies.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) Response {
	return c.fetch(ctx, http.MethodGet, rawURL, nil, "", timeout)
}

// PostForm performs a form-encoded POST request with the session headers and cookies.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, timeout time.Duration) Response {
	return c.fetch(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", timeout)
}

// EnsureSession issues the one-time warm-up GET against the site root.
//
// The first successful call marks the session as established; later calls
// are no-ops. A failed warm-up is retried on the next call. Concurrent
// callers wait for the in-flight warm-up instead of issuing their own.
func (c *Client) EnsureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.warmed || c.siteURL == "" {
		return nil
	}

	resp := c.fetch(ctx, http.MethodGet, c.siteURL, nil, "", warmupTimeout)
	if resp.Error != nil {
		return fmt.Errorf("session warm-up failed: %w", resp.Error)
	}
	c.warmed = true
	return nil
}

// cookies returns the cookies the session would send to rawURL.
func (c *Client) cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// fetch performs one request and captures the outcome in a [Response].
//
// fetch always returns a Response; errors are captured in the Error field.
func (c *Client) fetch(ctx context.Context, method, rawURL string, body io.Reader, contentType string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return Response{
		Body:       data,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times and on a nil receiver.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
