// Package types defines the wire types of the cross-chain payment order
// protocol: tokens, orders, quotes, permits and the envelope the settlement
// service wraps every response in.
package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderType discriminates the closed set of order variants. The payload and
// metadata shapes of an Order are determined by its type.
type OrderType string

const (
	OrderTypeSwap           OrderType = "swap"
	OrderTypeMintNFT        OrderType = "mint_nft"
	OrderTypeJoinTournament OrderType = "join_tournament"
	OrderTypeFundTournament OrderType = "fund_tournament"
	OrderTypeCustom         OrderType = "custom"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeSwap, OrderTypeMintNFT, OrderTypeJoinTournament,
		OrderTypeFundTournament, OrderTypeCustom:
		return true
	}
	return false
}

func (t OrderType) String() string {
	return string(t)
}

// Token describes an asset on a specific chain. Immutable value type.
type Token struct {
	ChainID  int64  `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// Equal reports token identity: same chain and same address ignoring case.
func (t Token) Equal(other Token) bool {
	return t.ChainID == other.ChainID &&
		strings.EqualFold(t.Address, other.Address)
}

// Order is the central entity of the protocol. Orders are created through the
// submission service and mutated only by the remote settlement service; every
// read replaces the local copy.
type Order struct {
	ID   string    `json:"id"`
	Type OrderType `json:"type"`

	RecipientAddress string `json:"recipientAddress"`
	CreatorAddress   string `json:"creatorAddress,omitempty"`
	PartnerID        string `json:"partnerId,omitempty"`

	SrcChain        int64  `json:"srcChain"`
	DstChain        int64  `json:"dstChain"`
	SrcTokenAddress string `json:"srcTokenAddress"`
	DstTokenAddress string `json:"dstTokenAddress"`
	SrcAmount       string `json:"srcAmount"`

	// GlobalAddress is the per-order deposit address assigned by the
	// settlement service.
	GlobalAddress string `json:"globalAddress"`

	Status       OrderStatus `json:"status"`
	ErrorDetails string      `json:"errorDetails,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	ExpiredAt    time.Time   `json:"expiredAt"`

	Payload  OrderPayload  `json:"payload"`
	Metadata OrderMetadata `json:"metadata"`

	OnrampMetadata        *OnrampMetadata `json:"onrampMetadata,omitempty"`
	StripePaymentIntentID string          `json:"stripePaymentIntentId,omitempty"`
	OneClickBuyURL        string          `json:"oneClickBuyUrl,omitempty"`
	Permit                *PermitData     `json:"permit,omitempty"`
}

// OnrampVendor identifies a fiat payment provider.
type OnrampVendor string

const (
	OnrampVendorCoinbase OnrampVendor = "coinbase"
	OnrampVendorStripe   OnrampVendor = "stripe"
)

// OnrampMetadata records how a fiat-funded order is paid for.
type OnrampMetadata struct {
	Vendor        OnrampVendor `json:"vendor"`
	Country       string       `json:"country,omitempty"`
	PaymentMethod string       `json:"paymentMethod,omitempty"`
}

// DepositTransaction is an on-chain deposit observed for an order.
// Transaction records are append-only facts; the client only reads them.
type DepositTransaction struct {
	OrderID   string    `json:"orderId"`
	Chain     int64     `json:"chain"`
	From      string    `json:"from"`
	TxHash    string    `json:"txHash"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// RelayTxStatus is the lifecycle of the relay leg.
type RelayTxStatus string

const (
	RelayStatusRefund  RelayTxStatus = "refund"
	RelayStatusDelayed RelayTxStatus = "delayed"
	RelayStatusWaiting RelayTxStatus = "waiting"
	RelayStatusFailure RelayTxStatus = "failure"
	RelayStatusPending RelayTxStatus = "pending"
	RelayStatusSuccess RelayTxStatus = "success"
)

// RelayTransaction is the cross-chain relay transaction for an order.
type RelayTransaction struct {
	OrderID string        `json:"orderId"`
	Chain   int64         `json:"chain"`
	TxHash  string        `json:"txHash"`
	Status  RelayTxStatus `json:"status"`
}

// ExecuteTransaction is the destination-chain execution transaction.
type ExecuteTransaction struct {
	OrderID string `json:"orderId"`
	Chain   int64  `json:"chain"`
	TxHash  string `json:"txHash"`
}

// RefundTxStatus is the outcome of a refund transaction.
type RefundTxStatus string

const (
	RefundStatusSuccess RefundTxStatus = "success"
	RefundStatusFailure RefundTxStatus = "failure"
)

// RefundTransaction is a refund sent back to the depositor.
type RefundTransaction struct {
	OrderID string         `json:"orderId"`
	Chain   int64          `json:"chain"`
	TxHash  string         `json:"txHash"`
	Amount  string         `json:"amount"`
	Status  RefundTxStatus `json:"status"`
}

// OrderRecord is the combined order + transaction view returned by
// GET /orders/{orderId}.
type OrderRecord struct {
	Order      *Order               `json:"order"`
	DepositTxs []DepositTransaction `json:"depositTxs"`
	RelayTx    *RelayTransaction    `json:"relayTx,omitempty"`
	ExecuteTx  *ExecuteTransaction  `json:"executeTx,omitempty"`
	RefundTxs  []RefundTransaction  `json:"refundTxs"`
}

// QuoteCurrency is one side of a priced route.
type QuoteCurrency struct {
	// Amount in the token's smallest unit, base-10 integer string.
	Amount    string          `json:"amount"`
	AmountUSD decimal.Decimal `json:"amountUsd"`
}

// QuoteDetails is the priced result of a quote request. All values are
// display-only; the authoritative destination amount for settlement is the
// expectedDstAmount snapshotted into the order payload at creation time.
type QuoteDetails struct {
	CurrencyIn  QuoteCurrency   `json:"currencyIn"`
	CurrencyOut QuoteCurrency   `json:"currencyOut"`
	Rate        decimal.Decimal `json:"rate"`
	PriceImpact decimal.Decimal `json:"priceImpact"`
}

// PermitDomain are the EIP-712 signing-domain parameters discovered from the
// token contract.
type PermitDomain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

// PermitTypeField is a single field of an EIP-712 type definition.
type PermitTypeField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PermitMessage is the EIP-2612 permit message body.
type PermitMessage struct {
	Owner    string `json:"owner"`
	Spender  string `json:"spender"`
	Value    string `json:"value"`
	Nonce    string `json:"nonce"`
	Deadline string `json:"deadline"`
}

// PermitData is a fully assembled gasless-approval message, valid only for the
// token/owner/amount tuple it was computed for.
type PermitData struct {
	Domain  PermitDomain                 `json:"domain"`
	Types   map[string][]PermitTypeField `json:"types"`
	Message PermitMessage                `json:"message"`
}

// PayError is the error type shared by every component. Code identifies the
// taxonomy bucket; Message is safe to render.
type PayError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *PayError) Error() string {
	return e.Message
}

// Error codes. Validation and decode errors are resolved locally and never
// reach the network; transport and business errors propagate to the caller.
const (
	ErrValidation       = "VALIDATION_ERROR"
	ErrDecode           = "DECODE_ERROR"
	ErrTransport        = "NETWORK_ERROR"
	ErrBusiness         = "BUSINESS_ERROR"
	ErrUnsupportedChain = "UNSUPPORTED_CHAIN"
	ErrQuoteNotReady    = "QUOTE_NOT_READY"
	ErrConfig           = "CONFIG_ERROR"
)

// ValidationError builds a PayError for malformed local input.
func ValidationError(format string, args ...interface{}) *PayError {
	return &PayError{Code: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// DecodeError builds a PayError for a response that does not match the
// expected shape for its discriminant.
func DecodeError(format string, args ...interface{}) *PayError {
	return &PayError{Code: ErrDecode, Message: fmt.Sprintf(format, args...)}
}
