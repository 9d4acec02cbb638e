package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/indrapalijama/alkitab-api-v3/internal/platform/observability"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultConnectTimeout = 5 * time.Second
	defaultIdleTimeout    = 30 * time.Second
	defaultMaxIdle        = 100
	defaultMaxIdlePerHost = 10
	defaultMaxBodyBytes   = 5 << 20
	defaultUserAgent      = "alkitab-api/3"
)

// Fetch outcomes reported to the Recorder.
const (
	OutcomeSuccess   = "success"
	OutcomeStatus    = "status_error"
	OutcomeTransport = "transport_error"
	OutcomeBody      = "body_error"
	OutcomeCanceled  = "canceled"
)

var (
	// ErrInvalidBaseURL is returned by NewClient for an unusable base URL.
	ErrInvalidBaseURL = errors.New("upstream: invalid base url")
	// ErrBodyTooLarge is returned when a page exceeds the body limit.
	ErrBodyTooLarge = errors.New("upstream: response body too large")
)

// StatusError reports a non-2xx response from the content source.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: %s returned %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Recorder receives one observation per fetch.
type Recorder interface {
	ObserveUpstream(outcome string, elapsed time.Duration)
}

// Client fetches pages from the content source over a pooled connection set.
// It is safe for concurrent use.
type Client struct {
	base         *url.URL
	http         *http.Client
	recorder     Recorder
	logger       *zap.Logger
	tracer       trace.Tracer
	userAgent    string
	maxBodyBytes int64

	timeout        time.Duration
	connectTimeout time.Duration
	maxIdlePerHost int
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeouts sets the overall request timeout and the connect timeout.
func WithTimeouts(request, connect time.Duration) Option {
	return func(c *Client) {
		if request > 0 {
			c.timeout = request
		}
		if connect > 0 {
			c.connectTimeout = connect
		}
	}
}

// WithMaxIdlePerHost bounds idle keep-alive connections per host.
func WithMaxIdlePerHost(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxIdlePerHost = n
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithLogger attaches a logger used for fetch diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxBodyBytes overrides the response size limit.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// NewClient builds a client rooted at baseURL, which must be an absolute
// http or https URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	c := &Client{
		base:           base,
		logger:         zap.NewNop(),
		tracer:         observability.Tracer(),
		userAgent:      defaultUserAgent,
		maxBodyBytes:   defaultMaxBodyBytes,
		timeout:        defaultTimeout,
		connectTimeout: defaultConnectTimeout,
		maxIdlePerHost: defaultMaxIdlePerHost,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = c.pooledClient()
	}
	return c, nil
}

func (c *Client) pooledClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   c.connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   c.connectTimeout,
		MaxIdleConns:          defaultMaxIdle,
		MaxIdleConnsPerHost:   c.maxIdlePerHost,
		IdleConnTimeout:       defaultIdleTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}
}

// URL returns the absolute URL for the given path segments. Each segment is
// escaped on its own.
func (c *Client) URL(segments ...string) string {
	u := *c.base
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = c.base.Path + "/" + strings.Join(segments, "/")
	u.RawPath = c.base.EscapedPath() + "/" + strings.Join(escaped, "/")
	return u.String()
}

// Fetch GETs the page at the given path segments and returns its body decoded
// to UTF-8. One attempt is made. The request is bound to ctx, so cancelling the
// caller cancels the fetch.
func (c *Client) Fetch(ctx context.Context, segments ...string) (string, error) {
	target := c.URL(segments...)
	ctx, span := c.tracer.Start(ctx, "upstream.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	start := time.Now()
	body, outcome, err := c.fetch(ctx, target, span)
	elapsed := time.Since(start)

	if c.recorder != nil {
		c.recorder.ObserveUpstream(outcome, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		c.logger.Warn("upstream fetch failed",
			zap.String("url", target),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return "", err
	}
	c.logger.Debug("upstream fetch",
		zap.String("url", target),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", elapsed),
	)
	return body, nil
}

func (c *Client) fetch(ctx context.Context, target string, span trace.Span) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", OutcomeTransport, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", OutcomeCanceled, fmt.Errorf("upstream: get %s: %w", target, ctx.Err())
		}
		return "", OutcomeTransport, fmt.Errorf("upstream: get %s: %w", target, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", OutcomeStatus, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return "", OutcomeBody, fmt.Errorf("upstream: read %s: %w", target, err)
	}
	if int64(len(raw)) > c.maxBodyBytes {
		return "", OutcomeBody, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, target, c.maxBodyBytes)
	}
	reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", OutcomeBody, fmt.Errorf("upstream: decode %s: %w", target, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", OutcomeBody, fmt.Errorf("upstream: decode %s: %w", target, err)
	}
	return string(data), OutcomeSuccess, nil
}
