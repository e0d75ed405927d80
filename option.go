package payorder

import (
	"net/http"
	"time"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
)

// Option customizes a PayOrder client at construction.
type Option func(*PayOrder)

// WithLogger replaces the default zap logger.
func WithLogger(l logger.Logger) Option {
	return func(p *PayOrder) { p.log = l }
}

// WithMetrics replaces the metrics recorder chosen by the config.
func WithMetrics(r metrics.Recorder) Option {
	return func(p *PayOrder) { p.rec = r }
}

// WithTimeout overrides the configured default timeout for every network call.
func WithTimeout(t time.Duration) Option {
	return func(p *PayOrder) { p.timeout = t }
}

// WithHTTPClient replaces the http.Client used for settlement-service calls.
func WithHTTPClient(h *http.Client) Option {
	return func(p *PayOrder) { p.httpClient = h }
}

// WithAPIClient injects a preconfigured settlement-service client, mainly for
// tests that point at a local server.
func WithAPIClient(c *api.Client) Option {
	return func(p *PayOrder) { p.api = c }
}
