// Package payorder implements the client side of a cross-chain payment order
// protocol: quoting prospective orders, building gasless permit signatures,
// submitting orders to the settlement service and tracking them to a terminal
// status.
package payorder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/clients"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/onramp"
	"github.com/vialabs/payorder/order"
	"github.com/vialabs/payorder/permit"
	"github.com/vialabs/payorder/quote"
	"github.com/vialabs/payorder/types"
	"github.com/vialabs/payorder/utils"
)

// PayOrder is the protocol client. Construct one per settlement service with
// New, attach the chains you can read from, and share it freely; it is safe
// for concurrent use.
type PayOrder struct {
	config *types.Config

	api     *api.Client
	quotes  *quote.Engine
	orders  *order.SubmissionService
	tracker *order.Tracker
	permits *permit.Builder
	onramp  *onramp.Resolver

	cache      *lru.Cache
	log        logger.Logger
	rec        metrics.Recorder
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a PayOrder client from explicit configuration. Chains listed in
// config.Chains are attached immediately; more can be added with AddChain.
func New(config *types.Config, opts ...Option) (*PayOrder, error) {
	if config == nil {
		return nil, &types.PayError{Code: types.ErrConfig, Message: "config is required"}
	}
	if err := utils.ValidateStruct(config); err != nil {
		return nil, &types.PayError{Code: types.ErrConfig, Message: err.Error()}
	}

	p := &PayOrder{
		config: config,
		log:    logger.NewZapLogger(config.LogLevel),
		rec:    metrics.NoopRecorder{},
	}
	if config.EnableMetrics {
		p.rec = metrics.NewPrometheusRecorder()
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.timeout <= 0 {
		p.timeout = config.Timeout()
	}

	if p.api == nil {
		apiOpts := []api.Option{
			api.WithTimeout(p.timeout),
			api.WithLogger(p.log),
			api.WithMetrics(p.rec),
		}
		if p.httpClient != nil {
			apiOpts = append(apiOpts, api.WithHTTPClient(p.httpClient))
		}
		client, err := api.NewClient(config.APIBaseURL, apiOpts...)
		if err != nil {
			return nil, err
		}
		p.api = client
	}

	cacheSize := config.OrderCacheSize
	if cacheSize <= 0 {
		cacheSize = types.DefaultOrderCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, &types.PayError{Code: types.ErrConfig, Message: fmt.Sprintf("order cache: %v", err)}
	}
	p.cache = cache

	p.quotes = quote.NewEngine(p.api, config.QuoteRefreshInterval, p.log, p.rec)
	p.orders = order.NewSubmissionService(p.api, config.PartnerID, p.log, p.rec)
	p.tracker = order.NewTracker(p.api, config.TrackInterval, cache, p.log, p.rec)
	p.onramp = onramp.NewResolver(p.api, p.log, p.rec)
	p.permits = permit.NewBuilder(
		permit.WithTimeout(p.timeout),
		permit.WithLogger(p.log),
		permit.WithMetrics(p.rec),
	)

	for chainID, chain := range config.Chains {
		if err := p.AddChain(chainID, chain); err != nil {
			p.permits.Close()
			return nil, err
		}
	}

	return p, nil
}

// AddChain attaches read capability for one chain. Non-programmable chains
// (deposit-only networks) are accepted and simply never serve reads.
func (p *PayOrder) AddChain(chainID int64, config types.ChainConfig) error {
	if !types.IsProgrammableChain(chainID) {
		p.log.Debug("skipping reader for non-programmable chain", map[string]any{"chain": chainID})
		return nil
	}

	reader, err := clients.NewEVMClient(chainID, config.RPCURL)
	if err != nil {
		return fmt.Errorf("create chain reader for %d: %w", chainID, err)
	}
	p.permits.AddChainReader(reader)
	return nil
}

// GetQuote prices a prospective order once.
func (p *PayOrder) GetQuote(ctx context.Context, req types.QuoteRequest) (*quote.Result, error) {
	return p.quotes.GetQuote(ctx, req)
}

// SubscribeQuote prices a request now and on every refresh interval until the
// subscription is stopped.
func (p *PayOrder) SubscribeQuote(ctx context.Context, req types.QuoteRequest) (*quote.Subscription, error) {
	return p.quotes.Subscribe(ctx, req)
}

// StaleQuote reports whether a quote result has aged past the configured
// staleness bound and must be refreshed before it backs an order.
func (p *PayOrder) StaleQuote(result *quote.Result) bool {
	bound := p.config.QuoteStalenessBound
	if bound <= 0 {
		bound = types.DefaultQuoteStalenessBound
	}
	return result.IsStale(bound)
}

// CreateOrder validates and submits a new order.
func (p *PayOrder) CreateOrder(ctx context.Context, params order.CreateOrderParams) (*types.Order, error) {
	created, err := p.orders.CreateOrder(ctx, params)
	if err != nil {
		return nil, err
	}
	p.cache.Add(created.ID, &types.OrderRecord{Order: created})
	return created, nil
}

// Order fetches the current server-side record of an order, including its
// deposit, relay, execute and refund transactions.
func (p *PayOrder) Order(ctx context.Context, orderID string) (*types.OrderRecord, error) {
	record, err := p.api.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	p.cache.Add(orderID, record)
	return record, nil
}

// CachedOrder returns the most recently observed record of an order without a
// network call, or nil when the order was never seen.
func (p *PayOrder) CachedOrder(orderID string) *types.OrderRecord {
	if cached, ok := p.cache.Get(orderID); ok {
		if record, ok := cached.(*types.OrderRecord); ok {
			return record
		}
	}
	return nil
}

// ListOrders pages through the order history of a creator address.
func (p *PayOrder) ListOrders(ctx context.Context, creatorAddress string, limit, offset int) (*types.OrdersPage, error) {
	normalized, err := utils.NormalizeAddress(creatorAddress)
	if err != nil {
		return nil, err
	}
	return p.api.ListOrders(ctx, normalized, limit, offset)
}

// TrackOrder polls an order until it reaches a terminal status.
func (p *PayOrder) TrackOrder(ctx context.Context, orderID string) (*order.Subscription, error) {
	return p.tracker.Track(ctx, orderID)
}

// GetPermitData probes whether owner can sign a gasless approval covering
// amount of the token and assembles the typed message when they can.
func (p *PayOrder) GetPermitData(ctx context.Context, chainID int64, tokenAddress, ownerAddress, amount string) (*permit.Result, error) {
	return p.permits.GetPermitData(ctx, chainID, tokenAddress, ownerAddress, amount)
}

// SignPermit asks the application's wallet to sign permit data assembled by
// GetPermitData and returns the 65-byte signature.
func (p *PayOrder) SignPermit(ctx context.Context, wallet clients.Wallet, data *types.PermitData) ([]byte, error) {
	return permit.SignPermit(ctx, wallet, data)
}

// ResolveOnrampOptions reports which fiat vendors can serve a payment.
func (p *PayOrder) ResolveOnrampOptions(ctx context.Context, isMainnet bool, fiatAmount, country, ipAddress string) (*onramp.VendorOptions, error) {
	return p.onramp.ResolveOptions(ctx, isMainnet, fiatAmount, country, ipAddress)
}

// StripeClientSecret retrieves the payment-element secret for an order's
// payment intent.
func (p *PayOrder) StripeClientSecret(ctx context.Context, paymentIntentID string) (*types.StripeClientSecret, error) {
	return p.api.StripeClientSecret(ctx, paymentIntentID)
}

// Close tears down every chain connection. The client must not be used after
// Close.
func (p *PayOrder) Close() {
	p.permits.Close()
}

// Version information.
const Version = "1.0.0"
