package order

import (
	"testing"

	"github.com/vialabs/payorder/types"
)

func TestBuildPayloadSwap(t *testing.T) {
	payload, err := BuildPayload(types.OrderTypeSwap, Context{ExpectedDstAmount: "990000"})
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	swap, ok := payload.(types.SwapPayload)
	if !ok {
		t.Fatalf("payload is %T", payload)
	}
	if swap.ExpectedDstAmount != "990000" {
		t.Errorf("ExpectedDstAmount = %q", swap.ExpectedDstAmount)
	}
	if swap.PayloadType() != types.OrderTypeSwap {
		t.Errorf("tag = %s", swap.PayloadType())
	}
}

func TestBuildPayloadSwapRequiresDstAmount(t *testing.T) {
	if _, err := BuildPayload(types.OrderTypeSwap, Context{}); err == nil {
		t.Fatal("swap without expected destination amount should fail")
	}
}

func TestBuildPayloadMintRequiresContractAndPrice(t *testing.T) {
	cases := []Context{
		{},
		{NFT: &NFTDescriptor{Contract: "0xabc"}},
		{NFT: &NFTDescriptor{Price: "1"}},
	}
	for i, ctx := range cases {
		if _, err := BuildPayload(types.OrderTypeMintNFT, ctx); err == nil {
			t.Errorf("case %d: incomplete mint context should fail", i)
		}
	}

	payload, err := BuildPayload(types.OrderTypeMintNFT, Context{
		NFT: &NFTDescriptor{Contract: "0xabc", Price: "1000000", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	mint := payload.(types.MintNFTPayload)
	if mint.Contract != "0xabc" || mint.Quantity != 2 {
		t.Errorf("payload = %+v", mint)
	}
}

func TestBuildPayloadTournament(t *testing.T) {
	for _, orderType := range []types.OrderType{types.OrderTypeJoinTournament, types.OrderTypeFundTournament} {
		if _, err := BuildPayload(orderType, Context{}); err == nil {
			t.Errorf("%s without a tournament should fail", orderType)
		}

		payload, err := BuildPayload(orderType, Context{
			Tournament: &TournamentDescriptor{ID: "t-1", Name: "Cup", Amount: "5000000"},
		})
		if err != nil {
			t.Fatalf("BuildPayload(%s): %v", orderType, err)
		}
		if payload.PayloadType() != orderType {
			t.Errorf("tag = %s, want %s", payload.PayloadType(), orderType)
		}
	}
}

func TestBuildPayloadCustomRequiresTarget(t *testing.T) {
	if _, err := BuildPayload(types.OrderTypeCustom, Context{Custom: &CustomCall{CallData: "0x01"}}); err == nil {
		t.Fatal("custom without target should fail")
	}

	payload, err := BuildPayload(types.OrderTypeCustom, Context{
		Custom: &CustomCall{Target: "0xdef", CallData: "0x01", Value: "0"},
	})
	if err != nil {
		t.Fatalf("BuildPayload: %v", err)
	}
	custom := payload.(types.CustomPayload)
	if custom.Target != "0xdef" {
		t.Errorf("payload = %+v", custom)
	}
}

func TestBuildPayloadUnknownType(t *testing.T) {
	if _, err := BuildPayload(types.OrderType("lend"), Context{}); err == nil {
		t.Fatal("unknown order type should fail")
	}
}

func TestBuildMetadataTotalOverTypes(t *testing.T) {
	ctx := Context{
		NFT:        &NFTDescriptor{Name: "Piece"},
		Tournament: &TournamentDescriptor{Name: "Cup"},
		Custom:     &CustomCall{Description: "payout"},
	}

	for _, orderType := range []types.OrderType{
		types.OrderTypeSwap,
		types.OrderTypeMintNFT,
		types.OrderTypeJoinTournament,
		types.OrderTypeFundTournament,
		types.OrderTypeCustom,
	} {
		metadata, err := BuildMetadata(orderType, ctx)
		if err != nil {
			t.Errorf("BuildMetadata(%s): %v", orderType, err)
			continue
		}
		if metadata.MetadataType() != orderType {
			t.Errorf("tag = %s, want %s", metadata.MetadataType(), orderType)
		}
	}
}

func TestDecodeOrderPropagatesVariantError(t *testing.T) {
	doc := []byte(`{"id":"x","type":"swap","payload":{"type":"custom"},"metadata":{"type":"swap"}}`)
	_, err := DecodeOrder(doc)
	if err == nil {
		t.Fatal("expected decode error")
	}
	payErr, ok := err.(*types.PayError)
	if !ok {
		t.Fatalf("error is %T, want *PayError", err)
	}
	if payErr.Code != types.ErrDecode {
		t.Errorf("code = %s", payErr.Code)
	}
}
