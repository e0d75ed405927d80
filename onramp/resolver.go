// Package onramp resolves which fiat vendors can serve a prospective payment
// before the user commits to one.
package onramp

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
)

// VendorOptions is the resolved availability of every fiat vendor for one
// prospective payment.
type VendorOptions struct {
	// CoinbaseAvailable is true when at least one limit tier admits the
	// requested fiat amount.
	CoinbaseAvailable bool               `json:"coinbaseAvailable"`
	CoinbaseTiers     []types.OnrampTier `json:"coinbaseTiers,omitempty"`
	PaymentMethods    []string           `json:"paymentMethods,omitempty"`

	StripeAvailable bool `json:"stripeAvailable"`
}

// Resolver answers vendor availability questions against the settlement
// service. Fiat vendors only operate against mainnet chains; on test networks
// the resolver answers "nothing available" without issuing any calls.
type Resolver struct {
	api *api.Client
	log logger.Logger
	rec metrics.Recorder
}

// NewResolver builds a resolver over the given API client.
func NewResolver(client *api.Client, log logger.Logger, rec metrics.Recorder) *Resolver {
	return &Resolver{api: client, log: log, rec: rec}
}

// ResolveOptions reports which vendors can serve a payment of fiatAmount (a
// decimal USD string) for a buyer in country coming from ipAddress. Vendor
// checks are independent: a failure on one side disables that vendor and the
// other side still resolves.
//
// An unparseable or absent fiat amount fails closed: no tier can be proven to
// admit it, so the limit-based vendor reports unavailable.
func (r *Resolver) ResolveOptions(ctx context.Context, isMainnet bool, fiatAmount, country, ipAddress string) (*VendorOptions, error) {
	options := &VendorOptions{}

	if !isMainnet {
		return options, nil
	}

	amount, amountOK := parseFiat(fiatAmount)

	if country != "" {
		coinbase, err := r.api.CoinbaseOnrampOptions(ctx, country)
		if err != nil {
			r.rec.IncCounter("onramp_resolve_failed", map[string]string{"operation": "onramp", "type": "coinbase"})
			r.log.Warn("coinbase options unavailable", map[string]any{
				"country": country,
				"error":   err.Error(),
			})
		} else {
			options.CoinbaseTiers = coinbase.Tiers
			options.PaymentMethods = coinbase.PaymentMethods
			if amountOK {
				options.CoinbaseAvailable = tierAdmits(coinbase.Tiers, amount)
			}
		}
	}

	if ipAddress != "" {
		support, err := r.api.StripeSupported(ctx, ipAddress, fiatAmount)
		if err != nil {
			r.rec.IncCounter("onramp_resolve_failed", map[string]string{"operation": "onramp", "type": "stripe"})
			r.log.Warn("stripe support check failed", map[string]any{
				"error": err.Error(),
			})
		} else {
			options.StripeAvailable = support.Supported
		}
	}

	return options, nil
}

func parseFiat(amount string) (decimal.Decimal, bool) {
	if amount == "" {
		return decimal.Zero, false
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil || parsed.Sign() <= 0 {
		return decimal.Zero, false
	}
	return parsed, true
}

// tierAdmits reports whether any tier's [min,max] range contains amount.
// Tiers with malformed bounds are skipped.
func tierAdmits(tiers []types.OnrampTier, amount decimal.Decimal) bool {
	for _, tier := range tiers {
		min, err := decimal.NewFromString(tier.Min)
		if err != nil {
			continue
		}
		max, err := decimal.NewFromString(tier.Max)
		if err != nil {
			continue
		}
		if amount.GreaterThanOrEqual(min) && amount.LessThanOrEqual(max) {
			return true
		}
	}
	return false
}
