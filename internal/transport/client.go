// Package transport provides the bounded HTTP primitive shared by every upstream
// client. A Client is bound to one Target (base URI, default headers, timeout) and
// converts failures into the caller's error type through an injected ErrorFunc.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single upstream call when the Target leaves Timeout unset.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent on every outbound request.
const UserAgent = "catalogd"

// Target describes one upstream service.
type Target struct {
	// Name labels logs and metrics, e.g. "mlflow".
	Name    string
	BaseURI string
	Headers map[string]string
	Timeout time.Duration
}

// ErrorFunc builds the caller-facing error for a failed call.
type ErrorFunc func(*Error) error

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client issues requests against a single Target. It holds no request-scoped
// state and is safe for concurrent use.
type Client struct {
	target  Target
	baseURL string
	wrap    ErrorFunc
	http    *http.Client
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger installs a structured logger for per-call debug lines.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// WithHTTPClient replaces the underlying *http.Client. Its Timeout is overridden
// by the Target timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.http = &cp
		}
	}
}

// New constructs a Client for target. wrap may be nil, in which case *Error is returned as is.
func New(target Target, wrap ErrorFunc, opts ...Option) *Client {
	if target.Timeout <= 0 {
		target.Timeout = DefaultTimeout
	}
	if wrap == nil {
		wrap = func(e *Error) error { return e }
	}
	c := &Client{
		target:  target,
		baseURL: strings.TrimRight(target.BaseURI, "/"),
		wrap:    wrap,
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.http.Timeout = target.Timeout
	return c
}

// Target returns the upstream this client is bound to.
func (c *Client) Target() Target { return c.target }

// Do performs one round trip. A non-nil body is JSON encoded. Any transport
// failure or non-2xx status is returned through the client's ErrorFunc.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	method = strings.ToUpper(method)
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, c.wrap(&Error{Service: c.target.Name, Method: method, Path: path, Err: fmt.Errorf("encode body: %w", err)})
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, c.wrap(&Error{Service: c.target.Name, Method: method, Path: path, Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range c.target.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observe(c.target.Name, method, 0, time.Since(start))
		c.log.Debug().Str("service", c.target.Name).Str("method", method).Str("path", path).
			Dur("dur", time.Since(start)).Err(err).Msg("upstream unreachable")
		return nil, c.wrap(&Error{Service: c.target.Name, Method: method, Path: path, Err: err})
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	observe(c.target.Name, method, resp.StatusCode, time.Since(start))
	c.log.Debug().Str("service", c.target.Name).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("upstream call")
	if err != nil {
		return nil, c.wrap(&Error{Service: c.target.Name, Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.wrap(&Error{
			Service:    c.target.Name,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		})
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
