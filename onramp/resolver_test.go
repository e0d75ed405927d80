package onramp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, func() int) {
	t.Helper()
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	count := func() int { return int(atomic.LoadInt64(&calls)) }
	return NewResolver(client, logger.NoopLogger{}, metrics.NoopRecorder{}), count
}

func vendorHandler(t *testing.T, stripeSupported bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/onramp/coinbase/options":
			data, _ := json.Marshal(types.CoinbaseOnrampOptions{
				Country: r.URL.Query().Get("country"),
				Tiers: []types.OnrampTier{
					{Min: "2", Max: "500"},
					{Min: "500", Max: "7500"},
				},
				PaymentMethods: []string{"CARD", "ACH_BANK_ACCOUNT"},
			})
			_ = json.NewEncoder(w).Encode(types.Envelope{Success: true, Data: data})
		case "/onramp/stripe/supported":
			data, _ := json.Marshal(types.StripeSupport{Supported: stripeSupported})
			_ = json.NewEncoder(w).Encode(types.Envelope{Success: true, Data: data})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestResolveOptionsBothAvailable(t *testing.T) {
	resolver, _ := newTestResolver(t, vendorHandler(t, true))

	options, err := resolver.ResolveOptions(context.Background(), true, "100.00", "US", "203.0.113.7")
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if !options.CoinbaseAvailable {
		t.Error("100.00 falls inside the 2..500 tier")
	}
	if !options.StripeAvailable {
		t.Error("stripe reported supported")
	}
	if len(options.CoinbaseTiers) != 2 {
		t.Errorf("tiers = %+v", options.CoinbaseTiers)
	}
}

func TestResolveOptionsAmountOutsideTiers(t *testing.T) {
	resolver, _ := newTestResolver(t, vendorHandler(t, true))

	options, err := resolver.ResolveOptions(context.Background(), true, "9999", "US", "")
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if options.CoinbaseAvailable {
		t.Error("9999 exceeds every tier")
	}
}

func TestResolveOptionsUnparseableAmountFailsClosed(t *testing.T) {
	resolver, _ := newTestResolver(t, vendorHandler(t, true))

	for _, amount := range []string{"", "abc", "-5"} {
		options, err := resolver.ResolveOptions(context.Background(), true, amount, "US", "")
		if err != nil {
			t.Fatalf("ResolveOptions(%q): %v", amount, err)
		}
		if options.CoinbaseAvailable {
			t.Errorf("amount %q must fail closed", amount)
		}
		// The tiers are still reported for display.
		if len(options.CoinbaseTiers) != 2 {
			t.Errorf("amount %q: tiers = %+v", amount, options.CoinbaseTiers)
		}
	}
}

func TestResolveOptionsNonMainnetSkipsNetwork(t *testing.T) {
	resolver, calls := newTestResolver(t, vendorHandler(t, true))

	options, err := resolver.ResolveOptions(context.Background(), false, "100.00", "US", "203.0.113.7")
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if options.CoinbaseAvailable || options.StripeAvailable {
		t.Error("no vendor is available off mainnet")
	}
	if calls() != 0 {
		t.Errorf("non-mainnet resolution must not call out, saw %d calls", calls())
	}
}

func TestResolveOptionsVendorFailureIsIndependent(t *testing.T) {
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/onramp/coinbase/options" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		data, _ := json.Marshal(types.StripeSupport{Supported: true})
		_ = json.NewEncoder(w).Encode(types.Envelope{Success: true, Data: data})
	})

	options, err := resolver.ResolveOptions(context.Background(), true, "100.00", "US", "203.0.113.7")
	if err != nil {
		t.Fatalf("one failing vendor must not fail resolution: %v", err)
	}
	if options.CoinbaseAvailable {
		t.Error("failed vendor must report unavailable")
	}
	if !options.StripeAvailable {
		t.Error("healthy vendor must still resolve")
	}
}

func TestResolveOptionsSkipsVendorsWithoutInputs(t *testing.T) {
	resolver, calls := newTestResolver(t, vendorHandler(t, true))

	options, err := resolver.ResolveOptions(context.Background(), true, "100.00", "", "")
	if err != nil {
		t.Fatalf("ResolveOptions: %v", err)
	}
	if options.CoinbaseAvailable || options.StripeAvailable {
		t.Error("no inputs, no vendors")
	}
	if calls() != 0 {
		t.Errorf("saw %d calls", calls())
	}
}

func TestTierAdmitsBoundaries(t *testing.T) {
	tiers := []types.OnrampTier{{Min: "2", Max: "500"}}

	cases := []struct {
		amount string
		want   bool
	}{
		{"2", true},
		{"500", true},
		{"1.99", false},
		{"500.01", false},
	}
	for _, tt := range cases {
		amount, ok := parseFiat(tt.amount)
		if !ok {
			t.Fatalf("parseFiat(%q) failed", tt.amount)
		}
		if got := tierAdmits(tiers, amount); got != tt.want {
			t.Errorf("tierAdmits(%s) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestTierAdmitsSkipsMalformedTiers(t *testing.T) {
	tiers := []types.OnrampTier{
		{Min: "x", Max: "500"},
		{Min: "2", Max: "500"},
	}
	amount, _ := parseFiat("100")
	if !tierAdmits(tiers, amount) {
		t.Error("well-formed tier after a malformed one must still admit")
	}
}
