// Package clients provides the chain capability the order protocol consumes.
// The core never assumes a specific chain SDK; it programs against the two
// interfaces here and ships an EVM implementation.
package clients

import (
	"context"
	"math/big"

	"github.com/vialabs/payorder/types"
)

// ChainReader is the read-only capability used by the permit builder:
// contract field reads, token balances and permit nonces. Implementations
// must be safe for concurrent use.
type ChainReader interface {
	ChainID() int64

	// BalanceOf returns the token balance of owner in smallest units.
	BalanceOf(ctx context.Context, token, owner string) (*big.Int, error)

	// PermitNonce returns the current EIP-2612 nonce of owner on the token.
	PermitNonce(ctx context.Context, token, owner string) (*big.Int, error)

	// SigningDomain performs the single "describe yourself" read
	// (eip712Domain per EIP-5267). Tokens that predate it return an error
	// and callers fall back to TokenName/TokenVersion.
	SigningDomain(ctx context.Context, token string) (*types.PermitDomain, error)

	// TokenName reads the token's name field.
	TokenName(ctx context.Context, token string) (string, error)

	// TokenVersion reads the token's version field. Tokens without one
	// return an error; the documented standard default is "1".
	TokenVersion(ctx context.Context, token string) (string, error)

	Close()
}

// Wallet is the write-side capability: it belongs to the embedding
// application, which signs typed data and submits transactions. The protocol
// client only ever consumes it.
type Wallet interface {
	// Address returns the account the wallet signs for.
	Address() string

	// SignTypedData signs an EIP-712 message and returns the 65-byte
	// signature.
	SignTypedData(ctx context.Context, data *types.PermitData) ([]byte, error)

	// SendTransaction submits a prepared transaction and returns its hash.
	SendTransaction(ctx context.Context, chainID int64, to string, value *big.Int, input []byte) (string, error)

	// WaitForConfirmation blocks until the transaction is mined or ctx ends.
	WaitForConfirmation(ctx context.Context, chainID int64, txHash string) error
}
