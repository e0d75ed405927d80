package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// TradeType selects which side of a swap is fixed.
type TradeType string

const (
	TradeExactInput  TradeType = "EXACT_INPUT"
	TradeExactOutput TradeType = "EXACT_OUTPUT"
)

// Route is the token pair a quote or order moves between. Addresses must be
// normalized before the route enters any request.
type Route struct {
	SrcChain        int64  `json:"srcChain" validate:"required"`
	DstChain        int64  `json:"dstChain" validate:"required"`
	SrcTokenAddress string `json:"srcTokenAddress" validate:"required"`
	DstTokenAddress string `json:"dstTokenAddress" validate:"required"`
}

// Key returns a stable identifier for the route, used to key quote
// subscriptions and caches.
func (r Route) Key() string {
	return fmt.Sprintf("%d:%d:%s:%s", r.SrcChain, r.DstChain, r.SrcTokenAddress, r.DstTokenAddress)
}

// QuoteRequest is the discriminated union of per-type pricing requests.
// A zero or absent priced quantity means "not ready to quote", never a
// zero-price quote.
type QuoteRequest interface {
	QuoteType() OrderType
	QuoteRoute() Route
	// Key identifies the route+amount pair; one request is issued per
	// distinct key and a newer request supersedes the older one.
	Key() string
	// Validate checks the pricing preconditions locally.
	Validate() error
}

// SwapQuoteRequest prices a token swap.
type SwapQuoteRequest struct {
	Type OrderType `json:"type"`
	Route
	TradeType TradeType `json:"tradeType"`
	Amount    string    `json:"amount"`
}

func (q SwapQuoteRequest) QuoteType() OrderType { return OrderTypeSwap }
func (q SwapQuoteRequest) QuoteRoute() Route    { return q.Route }

func (q SwapQuoteRequest) Key() string {
	return fmt.Sprintf("%s:%s:%s", q.Route.Key(), q.TradeType, q.Amount)
}

func (q SwapQuoteRequest) Validate() error {
	if q.TradeType != TradeExactInput && q.TradeType != TradeExactOutput {
		return ValidationError("unknown trade type %q", q.TradeType)
	}
	return validateQuoteAmount(q.Route, q.Amount)
}

// MintNFTQuoteRequest prices an NFT purchase.
type MintNFTQuoteRequest struct {
	Type OrderType `json:"type"`
	Route
	Price string `json:"price"`
}

func (q MintNFTQuoteRequest) QuoteType() OrderType { return OrderTypeMintNFT }
func (q MintNFTQuoteRequest) QuoteRoute() Route    { return q.Route }
func (q MintNFTQuoteRequest) Key() string          { return q.Route.Key() + ":" + q.Price }
func (q MintNFTQuoteRequest) Validate() error      { return validateQuoteAmount(q.Route, q.Price) }

// JoinTournamentQuoteRequest prices a tournament entry.
type JoinTournamentQuoteRequest struct {
	Type OrderType `json:"type"`
	Route
	Price string `json:"price"`
}

func (q JoinTournamentQuoteRequest) QuoteType() OrderType { return OrderTypeJoinTournament }
func (q JoinTournamentQuoteRequest) QuoteRoute() Route    { return q.Route }
func (q JoinTournamentQuoteRequest) Key() string          { return q.Route.Key() + ":" + q.Price }
func (q JoinTournamentQuoteRequest) Validate() error      { return validateQuoteAmount(q.Route, q.Price) }

// FundTournamentQuoteRequest prices a prize-pool contribution.
type FundTournamentQuoteRequest struct {
	Type OrderType `json:"type"`
	Route
	FundAmount string `json:"fundAmount"`
}

func (q FundTournamentQuoteRequest) QuoteType() OrderType { return OrderTypeFundTournament }
func (q FundTournamentQuoteRequest) QuoteRoute() Route    { return q.Route }
func (q FundTournamentQuoteRequest) Key() string          { return q.Route.Key() + ":" + q.FundAmount }
func (q FundTournamentQuoteRequest) Validate() error      { return validateQuoteAmount(q.Route, q.FundAmount) }

// CustomQuoteRequest prices an arbitrary destination call from its raw payload.
type CustomQuoteRequest struct {
	Type OrderType `json:"type"`
	Route
	Payload json.RawMessage `json:"payload"`
}

func (q CustomQuoteRequest) QuoteType() OrderType { return OrderTypeCustom }
func (q CustomQuoteRequest) QuoteRoute() Route    { return q.Route }
func (q CustomQuoteRequest) Key() string          { return q.Route.Key() + ":" + string(q.Payload) }

func (q CustomQuoteRequest) Validate() error {
	if err := validateRoute(q.Route); err != nil {
		return err
	}
	if len(q.Payload) == 0 {
		return &PayError{Code: ErrQuoteNotReady, Message: "custom payload is empty"}
	}
	return nil
}

func validateRoute(r Route) error {
	if r.SrcChain == 0 || r.DstChain == 0 {
		return ValidationError("quote route is missing a chain")
	}
	if r.SrcTokenAddress == "" || r.DstTokenAddress == "" {
		return ValidationError("quote route is missing a token address")
	}
	return nil
}

func validateQuoteAmount(r Route, amount string) error {
	if err := validateRoute(r); err != nil {
		return err
	}
	if amount == "" {
		return &PayError{Code: ErrQuoteNotReady, Message: "amount is not set"}
	}
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return ValidationError("amount %q is not a base-10 integer", amount)
	}
	if n.Sign() < 0 {
		return ValidationError("amount %q is negative", amount)
	}
	if n.Sign() == 0 {
		return &PayError{Code: ErrQuoteNotReady, Message: "amount is zero"}
	}
	return nil
}
