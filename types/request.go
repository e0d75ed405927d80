package types

import "encoding/json"

// Envelope is the response wrapper used by every settlement-service endpoint.
// A 2xx response with Success=false is a business failure and Message is the
// display text, preserved verbatim.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// CreateOrderRequest is the body of POST /orders. Addresses must be normalized
// before the request is built.
type CreateOrderRequest struct {
	RecipientAddress string          `json:"recipientAddress" validate:"required"`
	Type             OrderType       `json:"type" validate:"required"`
	SrcChain         int64           `json:"srcChain" validate:"required"`
	DstChain         int64           `json:"dstChain" validate:"required"`
	SrcTokenAddress  string          `json:"srcTokenAddress" validate:"required"`
	DstTokenAddress  string          `json:"dstTokenAddress" validate:"required"`
	SrcAmount        string          `json:"srcAmount" validate:"required"`
	Payload          OrderPayload    `json:"payload" validate:"required"`
	Metadata         OrderMetadata   `json:"metadata" validate:"required"`
	Onramp           *OnrampMetadata `json:"onramp,omitempty"`
	CreatorAddress   string          `json:"creatorAddress,omitempty"`
	PartnerID        string          `json:"partnerId,omitempty"`

	// ClientReferenceID is an optional idempotency key. It is dropped, not
	// fatal, when it fails validation.
	ClientReferenceID string `json:"clientReferenceId,omitempty"`
}

// OrdersPage is one page of GET /orders history.
type OrdersPage struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// OnrampTier is a [min,max] fiat range reported by the limit-based vendor,
// in whole-currency units as decimal strings.
type OnrampTier struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// CoinbaseOnrampOptions is the per-country vendor report from
// GET /onramp/coinbase/options.
type CoinbaseOnrampOptions struct {
	Country        string       `json:"country"`
	Tiers          []OnrampTier `json:"tiers"`
	PaymentMethods []string     `json:"paymentMethods,omitempty"`
}

// StripeSupport is the binary availability flag from
// GET /onramp/stripe/supported.
type StripeSupport struct {
	Supported bool `json:"supported"`
}

// StripeClientSecret bridges to the hosted payment-element flow.
type StripeClientSecret struct {
	ClientSecret string `json:"clientSecret"`
}
