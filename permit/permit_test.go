package permit

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/vialabs/payorder/types"
	"github.com/vialabs/payorder/utils"
)

// fakeReader is an in-memory ChainReader with scriptable failures.
type fakeReader struct {
	chainID int64
	balance *big.Int
	nonce   *big.Int

	domain       *types.PermitDomain
	domainErr    error
	domainBlocks bool

	name       string
	version    string
	versionErr error

	balanceReads int
	domainReads  int
	nameReads    int
}

func (f *fakeReader) ChainID() int64 { return f.chainID }

func (f *fakeReader) BalanceOf(ctx context.Context, token, owner string) (*big.Int, error) {
	f.balanceReads++
	return f.balance, nil
}

func (f *fakeReader) PermitNonce(ctx context.Context, token, owner string) (*big.Int, error) {
	return f.nonce, nil
}

func (f *fakeReader) SigningDomain(ctx context.Context, token string) (*types.PermitDomain, error) {
	f.domainReads++
	if f.domainBlocks {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.domainErr != nil {
		return nil, f.domainErr
	}
	return f.domain, nil
}

func (f *fakeReader) TokenName(ctx context.Context, token string) (string, error) {
	f.nameReads++
	return f.name, nil
}

func (f *fakeReader) TokenVersion(ctx context.Context, token string) (string, error) {
	if f.versionErr != nil {
		return "", f.versionErr
	}
	return f.version, nil
}

func (f *fakeReader) Close() {}

const (
	testToken = "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"
	testOwner = "0x28c6c06298d514db089934071355e5743bf21d60"
)

func newTestBuilder(reader *fakeReader) *Builder {
	b := NewBuilder()
	if reader != nil {
		b.AddChainReader(reader)
	}
	return b
}

func TestPermitShortCircuitsWithoutReads(t *testing.T) {
	reader := &fakeReader{chainID: types.ChainBase, balance: big.NewInt(1)}
	builder := newTestBuilder(reader)

	cases := []struct {
		name    string
		chainID int64
		token   string
		owner   string
	}{
		{"non-programmable chain", types.ChainBitcoin, testToken, testOwner},
		{"no owner connected", types.ChainBase, testToken, ""},
		{"native zero address", types.ChainBase, utils.ZeroAddress, testOwner},
		{"native legacy sentinel", types.ChainBase, utils.LegacyNativeSentinel, testOwner},
	}

	for _, tt := range cases {
		result, err := builder.GetPermitData(context.Background(), tt.chainID, tt.token, tt.owner, "100")
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if result.CanPermit || result.Data != nil {
			t.Errorf("%s: expected CanPermit=false with nil data", tt.name)
		}
	}

	if reader.balanceReads != 0 || reader.domainReads != 0 || reader.nameReads != 0 {
		t.Errorf("short circuits must not read the chain: %+v", reader)
	}
}

func TestPermitUnsupportedChain(t *testing.T) {
	builder := newTestBuilder(nil)

	_, err := builder.GetPermitData(context.Background(), types.ChainBase, testToken, testOwner, "100")
	payErr, ok := err.(*types.PayError)
	if !ok {
		t.Fatalf("error is %T, want *PayError", err)
	}
	if payErr.Code != types.ErrUnsupportedChain {
		t.Errorf("code = %s, want %s", payErr.Code, types.ErrUnsupportedChain)
	}
}

func TestPermitInsufficientBalance(t *testing.T) {
	reader := &fakeReader{chainID: types.ChainBase, balance: big.NewInt(99)}
	builder := newTestBuilder(reader)

	result, err := builder.GetPermitData(context.Background(), types.ChainBase, testToken, testOwner, "100")
	if err != nil {
		t.Fatalf("GetPermitData: %v", err)
	}
	if result.CanPermit {
		t.Error("balance below amount must not permit")
	}
	if reader.domainReads != 0 {
		t.Error("domain must not be read when the balance check fails")
	}
}

func TestPermitUsesDescribedDomain(t *testing.T) {
	reader := &fakeReader{
		chainID: types.ChainBase,
		balance: big.NewInt(1000),
		nonce:   big.NewInt(7),
		domain: &types.PermitDomain{
			Name:              "USD Coin",
			Version:           "2",
			ChainID:           types.ChainBase,
			VerifyingContract: testToken,
		},
	}
	builder := newTestBuilder(reader)

	result, err := builder.GetPermitData(context.Background(), types.ChainBase, testToken, testOwner, "100")
	if err != nil {
		t.Fatalf("GetPermitData: %v", err)
	}
	if !result.CanPermit {
		t.Fatal("expected permit")
	}
	if reader.nameReads != 0 {
		t.Error("self-described token must not fall back to name()")
	}

	data := result.Data
	if data.Domain.Name != "USD Coin" || data.Domain.Version != "2" {
		t.Errorf("domain = %+v", data.Domain)
	}
	if data.Message.Spender != types.ForwarderAddress(types.ChainBase) {
		t.Errorf("spender = %s", data.Message.Spender)
	}
	if data.Message.Owner != testOwner || data.Message.Value != "100" || data.Message.Nonce != "7" {
		t.Errorf("message = %+v", data.Message)
	}

	deadline, err := strconv.ParseInt(data.Message.Deadline, 10, 64)
	if err != nil {
		t.Fatalf("deadline %q: %v", data.Message.Deadline, err)
	}
	until := time.Until(time.Unix(deadline, 0))
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("deadline %s from now, want about an hour", until)
	}
}

func TestPermitFallsBackToLegacyDomain(t *testing.T) {
	reader := &fakeReader{
		chainID:    types.ChainBase,
		balance:    big.NewInt(1000),
		nonce:      big.NewInt(0),
		domainErr:  errors.New("execution reverted"),
		name:       "Legacy Token",
		versionErr: errors.New("execution reverted"),
	}
	builder := newTestBuilder(reader)

	result, err := builder.GetPermitData(context.Background(), types.ChainBase, testToken, testOwner, "100")
	if err != nil {
		t.Fatalf("GetPermitData: %v", err)
	}
	if !result.CanPermit {
		t.Fatal("expected permit via fallback")
	}

	domain := result.Data.Domain
	if domain.Name != "Legacy Token" {
		t.Errorf("name = %q", domain.Name)
	}
	if domain.Version != "1" {
		t.Errorf("version = %q, want the standard default", domain.Version)
	}
	if domain.ChainID != types.ChainBase || domain.VerifyingContract != testToken {
		t.Errorf("domain = %+v", domain)
	}
}

func TestPermitHungDomainReadFallsBack(t *testing.T) {
	// eip712Domain() never answers; the timeout must count as that strategy
	// failing and the legacy reads must start with a fresh deadline.
	reader := &fakeReader{
		chainID:      types.ChainBase,
		balance:      big.NewInt(1000),
		nonce:        big.NewInt(3),
		domainBlocks: true,
		name:         "Slow Token",
		versionErr:   errors.New("execution reverted"),
	}
	builder := NewBuilder(WithTimeout(20 * time.Millisecond))
	builder.AddChainReader(reader)

	result, err := builder.GetPermitData(context.Background(), types.ChainBase, testToken, testOwner, "100")
	if err != nil {
		t.Fatalf("hung domain read must fall back, got %v", err)
	}
	if !result.CanPermit {
		t.Fatal("expected permit via fallback")
	}
	domain := result.Data.Domain
	if domain.Name != "Slow Token" || domain.Version != "1" {
		t.Errorf("domain = %+v, want the legacy fallback", domain)
	}
	if reader.nameReads == 0 {
		t.Error("legacy strategy never ran")
	}
}

func TestPermitTypeSet(t *testing.T) {
	typeSet := permitTypes()

	permitFields, ok := typeSet["Permit"]
	if !ok {
		t.Fatal("type set missing Permit")
	}
	want := []string{"owner", "spender", "value", "nonce", "deadline"}
	if len(permitFields) != len(want) {
		t.Fatalf("permit fields = %+v", permitFields)
	}
	for i, field := range permitFields {
		if field.Name != want[i] {
			t.Errorf("field %d = %s, want %s", i, field.Name, want[i])
		}
	}
	if _, ok := typeSet["EIP712Domain"]; !ok {
		t.Error("type set missing EIP712Domain")
	}
}

func TestCoversAmount(t *testing.T) {
	data := &types.PermitData{Message: types.PermitMessage{Value: "100"}}

	if !CoversAmount(data, "100") {
		t.Error("equal amount is covered")
	}
	if !CoversAmount(data, "50") {
		t.Error("smaller amount is covered")
	}
	if CoversAmount(data, "101") {
		t.Error("larger amount is not covered")
	}
	if CoversAmount(nil, "1") {
		t.Error("nil data covers nothing")
	}
	if CoversAmount(data, "abc") {
		t.Error("malformed amount is not covered")
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	data := &types.PermitData{
		Domain: types.PermitDomain{
			Name:              "USD Coin",
			Version:           "2",
			ChainID:           types.ChainBase,
			VerifyingContract: testToken,
		},
		Types: permitTypes(),
		Message: types.PermitMessage{
			Owner:    testOwner,
			Spender:  types.ForwarderAddress(types.ChainBase),
			Value:    "100",
			Nonce:    "7",
			Deadline: "1790000000",
		},
	}

	first, err := Digest(data)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if len(first) != 32 {
		t.Fatalf("digest length = %d", len(first))
	}

	second, err := Digest(data)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if string(first) != string(second) {
		t.Error("digest not deterministic")
	}

	data.Message.Value = "101"
	changed, err := Digest(data)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if string(first) == string(changed) {
		t.Error("digest must change with the message")
	}
}
