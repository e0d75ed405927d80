// Package api implements the HTTP client for the remote settlement service.
//
// Every endpoint wraps its result in the {success, message, data} envelope.
// A 2xx response with success=false is a business failure whose message is
// preserved verbatim; a non-2xx response with a parseable message body is
// treated the same way. Only responses with no usable body become transport
// errors.
package api

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

	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
)

// Client talks to the settlement service. Construct one at application start
// and pass it by reference; it is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
	rec     metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every request issued by the client.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.timeout = t }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) { c.rec = r }
}

// NewClient builds a settlement-service client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &types.PayError{Code: types.ErrConfig, Message: "api base url is required"}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &types.PayError{Code: types.ErrConfig, Message: fmt.Sprintf("invalid api base url: %v", err)}
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: types.DefaultTimeout,
		log:     logger.NoopLogger{},
		rec:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do issues a request and decodes the envelope's data into out. A nil out
// discards the data. operation is the static endpoint name used for metric
// labels; paths carry per-order ids and must never become label values.
func (c *Client) do(ctx context.Context, method, path, operation string, body interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return types.ValidationError("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &types.PayError{Code: types.ErrTransport, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	c.rec.ObserveLatency("api_request", time.Since(started), map[string]string{"operation": operation})
	if err != nil {
		c.rec.IncCounter("api_transport_error", map[string]string{"operation": operation})
		return &types.PayError{Code: types.ErrTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.PayError{Code: types.ErrTransport, Message: fmt.Sprintf("read response: %v", err)}
	}

	var envelope types.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &types.PayError{
				Code:    types.ErrTransport,
				Message: fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode),
			}
		}
		return types.DecodeError("unexpected response shape: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !envelope.Success {
		message := envelope.Message
		if message == "" {
			return &types.PayError{
				Code:    types.ErrTransport,
				Message: fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode),
			}
		}
		c.log.Debug("service rejected request", map[string]any{"path": path, "message": message})
		return &types.PayError{Code: types.ErrBusiness, Message: message}
	}

	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 {
		return types.DecodeError("response data is missing")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		if payErr, ok := err.(*types.PayError); ok {
			return payErr
		}
		return types.DecodeError("decode response data: %v", err)
	}
	return nil
}
