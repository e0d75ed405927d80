package types

import "time"

// Well-known EVM chain ids.
const (
	ChainEthereum    int64 = 1
	ChainOptimism    int64 = 10
	ChainBNB         int64 = 56
	ChainPolygon     int64 = 137
	ChainBase        int64 = 8453
	ChainArbitrum    int64 = 42161
	ChainSepolia     int64 = 11155111
	ChainBaseSepolia int64 = 84532

	// ChainBitcoin is a non-programmable deposit-only chain; no contract
	// reads or permits are possible there.
	ChainBitcoin int64 = -1
)

// multicallForwarder is the canonical multicall forwarder deployed at the same
// address on every supported EVM chain. It is the spender of every permit.
const multicallForwarder = "0xca11bde05977b3631167028862be2a173976ca11"

var programmableChains = map[int64]bool{
	ChainEthereum:    true,
	ChainOptimism:    true,
	ChainBNB:         true,
	ChainPolygon:     true,
	ChainBase:        true,
	ChainArbitrum:    true,
	ChainSepolia:     true,
	ChainBaseSepolia: true,
}

// IsProgrammableChain reports whether contract reads and typed-data signatures
// are possible on the chain.
func IsProgrammableChain(chainID int64) bool {
	return programmableChains[chainID]
}

// ForwarderAddress returns the permit spender for a chain, or "" when the
// chain has no forwarder deployment.
func ForwarderAddress(chainID int64) string {
	if !IsProgrammableChain(chainID) {
		return ""
	}
	return multicallForwarder
}

// ChainConfig configures the read capability for one chain.
type ChainConfig struct {
	RPCURL string `json:"rpcUrl" validate:"required"`
}

// Config is the explicit configuration handed to the client at construction.
// There are no package-level defaults read from the environment.
type Config struct {
	// APIBaseURL is the settlement service root, e.g. "https://api.example.com".
	APIBaseURL string `json:"apiBaseUrl" validate:"required,url"`

	// DefaultTimeout bounds every network call. Zero means 30s.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// QuoteRefreshInterval is the cadence of quote subscriptions. Zero means 10s.
	QuoteRefreshInterval time.Duration `json:"quoteRefreshInterval,omitempty"`

	// TrackInterval is the cadence of order tracking polls. Zero means 3s.
	TrackInterval time.Duration `json:"trackInterval,omitempty"`

	// QuoteStalenessBound is how old a quote may be before it must not be
	// used for submission. Zero means 30s.
	QuoteStalenessBound time.Duration `json:"quoteStalenessBound,omitempty"`

	// Chains maps chain id to its read endpoint.
	Chains map[int64]ChainConfig `json:"chains,omitempty"`

	// PartnerID is attached to created orders when set.
	PartnerID string `json:"partnerId,omitempty"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`

	// OrderCacheSize bounds the local order cache. Zero means 256.
	OrderCacheSize int `json:"orderCacheSize,omitempty"`
}

// Config defaults.
const (
	DefaultTimeout              = 30 * time.Second
	DefaultQuoteRefreshInterval = 10 * time.Second
	DefaultTrackInterval        = 3 * time.Second
	DefaultQuoteStalenessBound  = 30 * time.Second
	DefaultOrderCacheSize       = 256
)

// Timeout returns the configured default timeout or the fallback.
func (c *Config) Timeout() time.Duration {
	if c != nil && c.DefaultTimeout > 0 {
		return c.DefaultTimeout
	}
	return DefaultTimeout
}
