// Package permit assembles EIP-2612 gasless-approval messages. The builder
// performs read calls only; signing and submission belong to the wallet.
package permit

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/vialabs/payorder/clients"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
	"github.com/vialabs/payorder/utils"
)

// deadlineWindow is how long a permit signature stays valid.
const deadlineWindow = 60 * time.Minute

// Result is the outcome of a permit probe. CanPermit=false is a valid
// terminal answer (native asset, non-programmable chain, short balance),
// never an error.
type Result struct {
	CanPermit bool              `json:"canPermit"`
	Data      *types.PermitData `json:"data"`
}

// Builder computes permit data against the chains it has readers for.
type Builder struct {
	readers map[int64]clients.ChainReader
	timeout time.Duration
	log     logger.Logger
	rec     metrics.Recorder
}

// Option configures a Builder.
type Option func(*Builder)

func WithTimeout(t time.Duration) Option {
	return func(b *Builder) { b.timeout = t }
}

func WithLogger(l logger.Logger) Option {
	return func(b *Builder) { b.log = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(b *Builder) { b.rec = r }
}

// NewBuilder creates a Builder with no chains attached.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		readers: make(map[int64]clients.ChainReader),
		timeout: types.DefaultTimeout,
		log:     logger.NoopLogger{},
		rec:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddChainReader attaches the read capability for one chain.
func (b *Builder) AddChainReader(reader clients.ChainReader) {
	b.readers[reader.ChainID()] = reader
}

// Close tears down every attached reader.
func (b *Builder) Close() {
	for _, reader := range b.readers {
		reader.Close()
	}
}

// GetPermitData probes whether the owner can sign a gasless approval for
// amount of the token, and assembles the typed message when they can.
//
// The ineligibility short-circuits issue no reads at all. Balance, domain and
// nonce reads happen in that order, each under its own bounded timeout so a
// hung read cannot starve the ones after it; only domain discovery has a
// defined fallback, every other read failure propagates.
func (b *Builder) GetPermitData(ctx context.Context, chainID int64, tokenAddress, ownerAddress, amount string) (*Result, error) {
	started := time.Now()
	defer func() {
		b.rec.ObserveLatency("permit_build", time.Since(started), map[string]string{"operation": "permit"})
	}()

	if !types.IsProgrammableChain(chainID) || ownerAddress == "" || utils.IsNativeToken(tokenAddress) {
		return &Result{CanPermit: false, Data: nil}, nil
	}

	token, err := utils.NormalizeAddress(tokenAddress)
	if err != nil {
		return nil, err
	}
	owner, err := utils.NormalizeAddress(ownerAddress)
	if err != nil {
		return nil, err
	}
	value, err := utils.ValidateIntegerAmount(amount)
	if err != nil {
		return nil, types.ValidationError("permit amount: %v", err)
	}

	reader, ok := b.readers[chainID]
	if !ok {
		return nil, &types.PayError{
			Code:    types.ErrUnsupportedChain,
			Message: fmt.Sprintf("no chain reader configured for chain %d", chainID),
		}
	}

	balance, err := b.readBalance(ctx, reader, token, owner)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	if balance.Cmp(value) < 0 {
		b.log.Debug("permit unavailable, balance below amount", map[string]any{
			"chain": chainID, "token": token, "owner": owner,
		})
		return &Result{CanPermit: false, Data: nil}, nil
	}

	domain, err := b.discoverDomain(ctx, reader, chainID, token)
	if err != nil {
		return nil, err
	}

	nonce, err := b.readNonce(ctx, reader, token, owner)
	if err != nil {
		return nil, fmt.Errorf("read permit nonce: %w", err)
	}

	deadline := time.Now().Add(deadlineWindow).Unix()
	spender := types.ForwarderAddress(chainID)
	if spender == "" {
		return &Result{CanPermit: false, Data: nil}, nil
	}

	data := &types.PermitData{
		Domain: *domain,
		Types:  permitTypes(),
		Message: types.PermitMessage{
			Owner:    owner,
			Spender:  spender,
			Value:    value.String(),
			Nonce:    nonce.String(),
			Deadline: strconv.FormatInt(deadline, 10),
		},
	}

	b.rec.IncCounter("permit_built", map[string]string{"operation": "permit"})
	return &Result{CanPermit: true, Data: data}, nil
}

func (b *Builder) readBalance(ctx context.Context, reader clients.ChainReader, token, owner string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return reader.BalanceOf(ctx, token, owner)
}

func (b *Builder) readNonce(ctx context.Context, reader clients.ChainReader, token, owner string) (*big.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return reader.PermitNonce(ctx, token, owner)
}

// domainStrategy is one attempt at determining the signing domain. Strategies
// are read-only, so trying the next one after a failure is always safe.
type domainStrategy func(ctx context.Context, reader clients.ChainReader, chainID int64, token string) (*types.PermitDomain, error)

// discoverDomain tries each strategy in order and short-circuits on the first
// success. Each strategy runs under its own bounded timeout, so one that times
// out fails over to the next exactly as a reverted call would.
func (b *Builder) discoverDomain(ctx context.Context, reader clients.ChainReader, chainID int64, token string) (*types.PermitDomain, error) {
	strategies := []domainStrategy{
		describedDomain,
		legacyDomain,
	}

	var lastErr error
	for _, strategy := range strategies {
		strategyCtx, cancel := context.WithTimeout(ctx, b.timeout)
		domain, err := strategy(strategyCtx, reader, chainID, token)
		cancel()
		if err == nil {
			return domain, nil
		}
		lastErr = err
		b.log.Debug("domain discovery strategy failed", map[string]any{
			"chain": chainID, "token": token, "error": err.Error(),
		})
	}

	return nil, fmt.Errorf("discover signing domain for %s: %w", token, lastErr)
}

// describedDomain uses the token's self-reported eip712Domain() bundle.
func describedDomain(ctx context.Context, reader clients.ChainReader, chainID int64, token string) (*types.PermitDomain, error) {
	domain, err := reader.SigningDomain(ctx, token)
	if err != nil {
		return nil, err
	}

	if domain.ChainID == 0 {
		domain.ChainID = chainID
	}
	if domain.VerifyingContract == "" {
		domain.VerifyingContract = token
	}
	return domain, nil
}

// legacyDomain reads name() and version() separately. A missing version()
// means the documented standard default "1".
func legacyDomain(ctx context.Context, reader clients.ChainReader, chainID int64, token string) (*types.PermitDomain, error) {
	name, err := reader.TokenName(ctx, token)
	if err != nil {
		return nil, err
	}

	version, err := reader.TokenVersion(ctx, token)
	if err != nil {
		version = "1"
	}

	return &types.PermitDomain{
		Name:              name,
		Version:           version,
		ChainID:           chainID,
		VerifyingContract: token,
	}, nil
}

// permitTypes is the EIP-2612 type set.
func permitTypes() map[string][]types.PermitTypeField {
	return map[string][]types.PermitTypeField{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		"Permit": {
			{Name: "owner", Type: "address"},
			{Name: "spender", Type: "address"},
			{Name: "value", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
		},
	}
}

// CoversAmount reports whether existing permit data still covers a requested
// amount. Permit data is recomputed whenever token, owner or amount change.
func CoversAmount(data *types.PermitData, amount string) bool {
	if data == nil {
		return false
	}
	have, ok := new(big.Int).SetString(data.Message.Value, 10)
	if !ok {
		return false
	}
	want, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return false
	}
	return have.Cmp(want) >= 0
}
