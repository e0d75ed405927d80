// Package quote prices prospective orders, both one-shot and as a refreshing
// subscription while the user is still editing their inputs.
package quote

import (
	"context"
	"sync"
	"time"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
)

// Result is one priced quote plus the moment it was fetched. Callers decide
// staleness against their configured bound at submission time.
type Result struct {
	Details   *types.QuoteDetails `json:"details"`
	Request   types.QuoteRequest  `json:"-"`
	FetchedAt time.Time           `json:"fetchedAt"`
}

// IsStale reports whether the quote is older than bound.
func (r *Result) IsStale(bound time.Duration) bool {
	if r == nil || r.Details == nil {
		return true
	}
	return time.Since(r.FetchedAt) > bound
}

// Engine prices quote requests against the settlement service.
type Engine struct {
	api      *api.Client
	interval time.Duration
	log      logger.Logger
	rec      metrics.Recorder
}

// NewEngine builds an engine refreshing subscriptions on the given cadence.
func NewEngine(client *api.Client, interval time.Duration, log logger.Logger, rec metrics.Recorder) *Engine {
	if interval <= 0 {
		interval = types.DefaultQuoteRefreshInterval
	}
	return &Engine{
		api:      client,
		interval: interval,
		log:      log,
		rec:      rec,
	}
}

// GetQuote prices a single request. Requests that are not ready to quote
// (absent or zero amount) fail locally without touching the network.
func (e *Engine) GetQuote(ctx context.Context, req types.QuoteRequest) (*Result, error) {
	if req == nil {
		return nil, types.ValidationError("quote request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	details, err := e.api.Quote(ctx, req)
	e.rec.ObserveLatency("quote", time.Since(started), map[string]string{"operation": "quote"})
	if err != nil {
		e.rec.IncCounter("quote_failed", map[string]string{"operation": "quote"})
		return nil, err
	}

	e.rec.IncCounter("quote_fetched", map[string]string{"operation": "quote"})
	return &Result{
		Details:   details,
		Request:   req,
		FetchedAt: time.Now(),
	}, nil
}

// Subscription is a refreshing quote stream for a request the caller may keep
// editing. Each refresh prices the most recently set request; a failed refresh
// surfaces on Errors and the previous quote simply ages out.
type Subscription struct {
	updates  chan *Result
	errs     chan error
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	req types.QuoteRequest
	key string
}

// Updates is the quote stream. Closed when the subscription ends.
func (s *Subscription) Updates() <-chan *Result { return s.updates }

// Errors reports per-refresh failures. The subscription keeps refreshing.
func (s *Subscription) Errors() <-chan error { return s.errs }

// Done is closed when the refresh goroutine has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Stop ends the subscription. Results from an in-flight refresh are discarded.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Update replaces the subscribed request. The next refresh prices the new
// request; a refresh already in flight for the old one is discarded, so a
// newer request always supersedes an older one.
func (s *Subscription) Update(req types.QuoteRequest) error {
	if req == nil {
		return types.ValidationError("quote request is nil")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.req = req
	s.key = req.Key()
	s.mu.Unlock()
	return nil
}

func (s *Subscription) current() (types.QuoteRequest, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req, s.key
}

// Subscribe prices req immediately and then on every refresh interval until
// the context ends or Stop is called.
func (e *Engine) Subscribe(ctx context.Context, req types.QuoteRequest) (*Subscription, error) {
	if req == nil {
		return nil, types.ValidationError("quote request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := &Subscription{
		updates: make(chan *Result),
		errs:    make(chan error, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		req:     req,
		key:     req.Key(),
	}

	go e.run(ctx, sub)
	return sub, nil
}

func (e *Engine) run(ctx context.Context, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.errs)
	defer close(sub.updates)

	for {
		req, key := sub.current()

		result, err := e.GetQuote(ctx, req)

		select {
		case <-ctx.Done():
			return
		case <-sub.stop:
			return
		default:
		}

		// The request changed while this refresh was in flight; the stale
		// price must not be delivered.
		if _, nowKey := sub.current(); nowKey != key {
			continue
		}

		if err != nil {
			e.log.Warn("quote refresh failed", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
			select {
			case sub.errs <- err:
			default:
			}
		} else {
			select {
			case sub.updates <- result:
			case <-ctx.Done():
				return
			case <-sub.stop:
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-sub.stop:
			return
		case <-time.After(e.interval):
		}
	}
}
