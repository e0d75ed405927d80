package api

import (
	"context"
	"net/url"

	"github.com/vialabs/payorder/types"
)

// CoinbaseOnrampOptions reports the limit tiers available in a country.
func (c *Client) CoinbaseOnrampOptions(ctx context.Context, country string) (*types.CoinbaseOnrampOptions, error) {
	if country == "" {
		return nil, types.ValidationError("country is empty")
	}

	query := url.Values{}
	query.Set("country", country)

	var options types.CoinbaseOnrampOptions
	if err := c.do(ctx, "GET", "/onramp/coinbase/options?"+query.Encode(), "coinbase_options", nil, &options); err != nil {
		return nil, err
	}
	return &options, nil
}

// StripeSupported checks redirect-vendor availability for an IP and amount.
// usdAmount may be empty when only the IP check is wanted.
func (c *Client) StripeSupported(ctx context.Context, ipAddress, usdAmount string) (*types.StripeSupport, error) {
	if ipAddress == "" {
		return nil, types.ValidationError("ip address is empty")
	}

	query := url.Values{}
	query.Set("ipAddress", ipAddress)
	if usdAmount != "" {
		query.Set("usdAmount", usdAmount)
	}

	var support types.StripeSupport
	if err := c.do(ctx, "GET", "/onramp/stripe/supported?"+query.Encode(), "stripe_supported", nil, &support); err != nil {
		return nil, err
	}
	return &support, nil
}

// StripeClientSecret retrieves the payment-element secret for an intent.
// Everything past retrieval belongs to the hosted payment flow.
func (c *Client) StripeClientSecret(ctx context.Context, paymentIntentID string) (*types.StripeClientSecret, error) {
	if paymentIntentID == "" {
		return nil, types.ValidationError("payment intent id is empty")
	}

	query := url.Values{}
	query.Set("paymentIntentId", paymentIntentID)

	var secret types.StripeClientSecret
	if err := c.do(ctx, "GET", "/stripe/clientSecret?"+query.Encode(), "stripe_client_secret", nil, &secret); err != nil {
		return nil, err
	}
	return &secret, nil
}
