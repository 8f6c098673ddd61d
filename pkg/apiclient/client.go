// Package apiclient is the single transport between the console and the UBS REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/ubs-console/pkg/circuitbreaker"
	"github.com/jwalitptl/ubs-console/pkg/logger"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxErrorBody = 1 << 20
)

// Credentials supplies the bearer token of the current session and is told
// when the API rejects it.
type Credentials interface {
	Token() string
	Invalidate(ctx context.Context, reason string)
}

type credentialsKey struct{}

// WithCredentials attaches the session credentials used by authenticated requests.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

// CredentialsFrom returns the credentials attached to ctx.
func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok && creds != nil
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Settings
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	settings := cfg.Breaker
	if settings.Name == "" {
		settings.Name = "ubs-api"
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(settings),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one API call. Body is sent as JSON; Multipart wins when both are set.
type Request struct {
	Method       string
	Path         string
	Query        url.Values
	Body         interface{}
	Multipart    *Multipart
	Header       http.Header
	RequiresAuth bool
}

// URL joins the base URL, path and query.
func (c *Client) URL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// Do sends req and hands a 2xx response to dec. Every request variant goes
// through here so auth and error handling exist once.
func (c *Client) Do(ctx context.Context, req *Request, dec Decoder) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(req.Path, req.Query), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	creds, hasCreds := CredentialsFrom(ctx)
	if req.RequiresAuth && hasCreds {
		if token := creds.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	var resp *http.Response
	err = c.breaker.Execute(func() error {
		var doErr error
		resp, doErr = c.http.Do(httpReq)
		return doErr
	})
	elapsed := time.Since(start)

	if err != nil {
		// a caller that gave up gets its own error back; a passed deadline
		// is a timeout like any other
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		reason := classifyTransportError(err)
		c.observeFailure(reason)
		c.logger.Warn("UBS API unreachable",
			"method", method,
			"path", req.Path,
			"reason", reason,
			"error", err.Error(),
		)
		return &NetworkError{Op: method + " " + req.Path, Reason: reason, Cause: err}
	}
	defer resp.Body.Close()

	c.observe(method, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, defaultMaxErrorBody))
		apiErr := parseError(resp.StatusCode, raw)

		if resp.StatusCode == http.StatusUnauthorized && req.RequiresAuth && hasCreds {
			creds.Invalidate(ctx, "unauthorized")
		}

		c.logger.Debug("UBS API error response",
			"method", method,
			"path", req.Path,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return apiErr
	}

	if dec == nil {
		dec = Discard()
	}
	if err := dec.Decode(resp); err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		} else if ctxErr != nil {
			c.observeFailure("timeout")
			return &NetworkError{Op: method + " " + req.Path, Reason: "timeout", Cause: ctxErr}
		}
		return fmt.Errorf("decode %s %s: %w", method, req.Path, err)
	}
	return nil
}

func encodeBody(req *Request) (io.Reader, string, error) {
	if req.Multipart != nil {
		return req.Multipart.encode()
	}
	if req.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(payload), "application/json", nil
}

func classifyTransportError(err error) string {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return "breaker_open"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "transport"
}

func (c *Client) observe(method string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequests.WithLabelValues(method, strconv.Itoa(status/100)+"xx").Inc()
	c.metrics.UpstreamLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (c *Client) observeFailure(reason string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamFailures.WithLabelValues(reason).Inc()
}

// GetJSON performs an authenticated GET.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query, RequiresAuth: true}, JSON(out))
}

// SendJSON performs an authenticated request with a JSON body.
func (c *Client) SendJSON(ctx context.Context, method, path string, body, out interface{}) error {
	return c.Do(ctx, &Request{Method: method, Path: path, Body: body, RequiresAuth: true}, JSON(out))
}

// Delete performs an authenticated DELETE and ignores the body.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, RequiresAuth: true}, Discard())
}

// Upload sends a multipart form.
func (c *Client) Upload(ctx context.Context, method, path string, form *Multipart, out interface{}) error {
	return c.Do(ctx, &Request{Method: method, Path: path, Multipart: form, RequiresAuth: true}, JSON(out))
}

// Download fetches a binary resource.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*BlobData, error) {
	blob := &BlobData{}
	req := &Request{
		Method:       http.MethodGet,
		Path:         path,
		Query:        query,
		Header:       http.Header{"Accept": []string{"*/*"}},
		RequiresAuth: true,
	}
	if err := c.Do(ctx, req, Blob(blob)); err != nil {
		return nil, err
	}
	return blob, nil
}
