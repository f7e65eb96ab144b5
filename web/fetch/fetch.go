// Package fetch retrieves webpage HTML with retries, timeouts and an
// optional scraping-proxy mode.
//
// In proxied mode (the default) requests are routed through a ScraperAPI
// compatible service that receives the target URL as a query parameter; in
// direct mode the target is requested straight away. Transient failures
// (HTTP 429, 5xx and connection errors) are retried with exponential
// backoff; everything else fails fast. All terminal failures are reported
// as a single *Error carrying the target URL and the underlying cause.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultRetryAttempts is the number of retries after the first attempt.
	DefaultRetryAttempts = 3
	// DefaultUserAgent identifies the fetcher to target servers.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// DefaultProxyBaseURL is the scraping proxy endpoint.
	DefaultProxyBaseURL = "http://api.scraperapi.com"
	// MaxBodySize caps the response body (10MB).
	MaxBodySize = 10 * 1024 * 1024

	defaultBackoffInterval = 1 * time.Second
)

// Error is the single terminal failure type of the fetcher: retries
// exhausted, a non-retryable status, or an undecodable body. It carries the
// original target URL, not the proxy URL.
type Error struct {
	URL   string
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause) }

func (e *Error) Unwrap() error { return e.Cause }

// Fetcher retrieves webpages. It holds a shared HTTP client whose connection
// pool is reused across calls; no per-call state lives on the struct, so a
// single Fetcher is safe for concurrent use.
type Fetcher struct {
	client          *http.Client
	proxyBaseURL    string
	proxyAPIKey     string
	userAgent       string
	timeout         time.Duration
	retryAttempts   int
	backoffInterval time.Duration
	maxBodySize     int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithProxyAPIKey sets the scraping-proxy credential.
func WithProxyAPIKey(key string) Option {
	return func(f *Fetcher) { f.proxyAPIKey = key }
}

// WithProxyBaseURL overrides the scraping-proxy endpoint.
func WithProxyBaseURL(base string) Option {
	return func(f *Fetcher) { f.proxyBaseURL = base }
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithRetryAttempts sets how many retries follow a failed first attempt.
func WithRetryAttempts(n int) Option {
	return func(f *Fetcher) { f.retryAttempts = n }
}

// WithBackoffInterval sets the base delay of the exponential backoff.
// The delay doubles on every retry.
func WithBackoffInterval(d time.Duration) Option {
	return func(f *Fetcher) { f.backoffInterval = d }
}

// WithMaxBodySize overrides the response body cap in bytes.
func WithMaxBodySize(n int) Option {
	return func(f *Fetcher) { f.maxBodySize = n }
}

// New creates a Fetcher with a connection-pooled HTTP client. Timeouts on
// dial, TLS handshake and response headers prevent indefinite blocking on
// unresponsive servers.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: DefaultTimeout,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				ForceAttemptHTTP2:     true,
			},
		},
		proxyBaseURL:    DefaultProxyBaseURL,
		userAgent:       DefaultUserAgent,
		timeout:         DefaultTimeout,
		retryAttempts:   DefaultRetryAttempts,
		backoffInterval: defaultBackoffInterval,
		maxBodySize:     MaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// requestOptions holds per-call overrides.
type requestOptions struct {
	headers  map[string]string
	proxy    bool
	timeout  time.Duration
	attempts int
}

// RequestOption configures a single Fetch call.
type RequestOption func(*requestOptions)

// WithHeaders adds headers to the request. Caller values win over the
// default header set on key collision.
func WithHeaders(h map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			o.headers[k] = v
		}
	}
}

// Direct disables the scraping proxy for this call and requests the target
// URL straight away.
func Direct() RequestOption {
	return func(o *requestOptions) { o.proxy = false }
}

// WithRequestTimeout overrides the per-attempt timeout for this call.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithRequestRetries overrides the retry count for this call.
func WithRequestRetries(n int) RequestOption {
	return func(o *requestOptions) { o.attempts = n }
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Fetch retrieves the HTML of target and returns it as a UTF-8 string.
//
// The request is routed through the scraping proxy unless Direct() is given.
// Transient failures are retried with exponential backoff up to the
// configured attempt count; a single attempt never exceeds the configured
// timeout, and exceeding it counts as a transient failure. Non-retryable
// statuses, undecodable bodies and exhausted retries all surface as *Error.
func (f *Fetcher) Fetch(ctx context.Context, target string, opts ...RequestOption) (string, error) {
	ro := requestOptions{
		proxy:    true,
		timeout:  f.timeout,
		attempts: f.retryAttempts,
	}
	for _, opt := range opts {
		opt(&ro)
	}

	requestURL := target
	if ro.proxy {
		requestURL = f.proxyBaseURL + "?api_key=" + url.QueryEscape(f.proxyAPIKey) +
			"&url=" + url.QueryEscape(target)
	}

	headers := map[string]string{"User-Agent": f.userAgent}
	for k, v := range ro.headers {
		headers[k] = v
	}

	slog.Debug("fetching webpage", "url", target, "proxy", ro.proxy)

	attempt := func() (string, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, ro.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, requestURL, nil)
		if err != nil {
			return "", backoff.Permanent(&Error{URL: target, Cause: err})
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				// The caller's context is gone; retrying is pointless.
				return "", backoff.Permanent(&Error{URL: target, Cause: ctx.Err()})
			}
			// Connection-level error or per-attempt timeout: transient.
			return "", err
		}
		defer resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return "", backoff.Permanent(&Error{
				URL:   target,
				Cause: fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			})
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.maxBodySize)+1))
		if err != nil {
			return "", err
		}
		if len(body) > f.maxBodySize {
			return "", backoff.Permanent(&Error{
				URL:   target,
				Cause: fmt.Errorf("response body exceeds %d bytes", f.maxBodySize),
			})
		}
		if !utf8.Valid(body) {
			return "", backoff.Permanent(&Error{
				URL:   target,
				Cause: errors.New("response body is not valid UTF-8"),
			})
		}
		return string(body), nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = f.backoffInterval
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(ro.attempts)), ctx)
	body, err := backoff.RetryWithData(attempt, policy)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			return "", fe
		}
		slog.Warn("fetch failed after retries", "url", target, "error", err)
		return "", &Error{URL: target, Cause: err}
	}
	return body, nil
}
