// Package order implements the client side of the order lifecycle: building
// and validating order variants, submitting them to the settlement service
// and tracking them until a terminal status.
package order

import (
	"encoding/json"

	"github.com/vialabs/payorder/types"
)

// NFTDescriptor carries the inputs for a mint order.
type NFTDescriptor struct {
	Contract string
	TokenID  string
	Price    string
	Quantity int
	Name     string
	ImageURL string
}

// TournamentDescriptor carries the inputs for tournament orders.
type TournamentDescriptor struct {
	ID     string
	Name   string
	Amount string
}

// CustomCall carries the inputs for a custom order.
type CustomCall struct {
	Target      string
	CallData    string
	Value       string
	Description string
}

// Context carries the order-type-specific inputs consumed by the registry.
// Only the field matching the order type needs to be set.
type Context struct {
	// ExpectedDstAmount is the destination amount snapshot for swaps, taken
	// from the quote the user accepted.
	ExpectedDstAmount string
	TradeType         types.TradeType
	SrcToken          *types.Token
	DstToken          *types.Token

	NFT        *NFTDescriptor
	Tournament *TournamentDescriptor
	Custom     *CustomCall
}

// BuildPayload constructs the payload for an order type from its context.
// It is total over the five order types; missing required inputs fail fast
// before anything reaches the network.
func BuildPayload(t types.OrderType, ctx Context) (types.OrderPayload, error) {
	switch t {
	case types.OrderTypeSwap:
		if ctx.ExpectedDstAmount == "" {
			return nil, types.ValidationError("swap order requires an expected destination amount")
		}
		return types.SwapPayload{
			Type:              types.OrderTypeSwap,
			ExpectedDstAmount: ctx.ExpectedDstAmount,
		}, nil

	case types.OrderTypeMintNFT:
		if ctx.NFT == nil || ctx.NFT.Contract == "" || ctx.NFT.Price == "" {
			return nil, types.ValidationError("mint order requires an NFT contract and price")
		}
		return types.MintNFTPayload{
			Type:     types.OrderTypeMintNFT,
			Contract: ctx.NFT.Contract,
			TokenID:  ctx.NFT.TokenID,
			Price:    ctx.NFT.Price,
			Quantity: ctx.NFT.Quantity,
		}, nil

	case types.OrderTypeJoinTournament:
		if ctx.Tournament == nil || ctx.Tournament.ID == "" || ctx.Tournament.Amount == "" {
			return nil, types.ValidationError("join order requires a tournament id and entry fee")
		}
		return types.JoinTournamentPayload{
			Type:         types.OrderTypeJoinTournament,
			TournamentID: ctx.Tournament.ID,
			EntryFee:     ctx.Tournament.Amount,
		}, nil

	case types.OrderTypeFundTournament:
		if ctx.Tournament == nil || ctx.Tournament.ID == "" || ctx.Tournament.Amount == "" {
			return nil, types.ValidationError("fund order requires a tournament id and amount")
		}
		return types.FundTournamentPayload{
			Type:         types.OrderTypeFundTournament,
			TournamentID: ctx.Tournament.ID,
			FundAmount:   ctx.Tournament.Amount,
		}, nil

	case types.OrderTypeCustom:
		if ctx.Custom == nil || ctx.Custom.Target == "" || ctx.Custom.CallData == "" {
			return nil, types.ValidationError("custom order requires a target and call data")
		}
		return types.CustomPayload{
			Type:     types.OrderTypeCustom,
			Target:   ctx.Custom.Target,
			CallData: ctx.Custom.CallData,
			Value:    ctx.Custom.Value,
		}, nil

	default:
		return nil, types.ValidationError("unknown order type %q", t)
	}
}

// BuildMetadata constructs the display metadata for an order type.
func BuildMetadata(t types.OrderType, ctx Context) (types.OrderMetadata, error) {
	switch t {
	case types.OrderTypeSwap:
		return types.SwapMetadata{
			Type:      types.OrderTypeSwap,
			SrcToken:  ctx.SrcToken,
			DstToken:  ctx.DstToken,
			TradeType: ctx.TradeType,
		}, nil

	case types.OrderTypeMintNFT:
		if ctx.NFT == nil {
			return nil, types.ValidationError("mint order requires an NFT descriptor")
		}
		return types.MintNFTMetadata{
			Type:     types.OrderTypeMintNFT,
			Name:     ctx.NFT.Name,
			ImageURL: ctx.NFT.ImageURL,
		}, nil

	case types.OrderTypeJoinTournament:
		if ctx.Tournament == nil {
			return nil, types.ValidationError("join order requires a tournament descriptor")
		}
		return types.JoinTournamentMetadata{
			Type:           types.OrderTypeJoinTournament,
			TournamentName: ctx.Tournament.Name,
		}, nil

	case types.OrderTypeFundTournament:
		if ctx.Tournament == nil {
			return nil, types.ValidationError("fund order requires a tournament descriptor")
		}
		return types.FundTournamentMetadata{
			Type:           types.OrderTypeFundTournament,
			TournamentName: ctx.Tournament.Name,
		}, nil

	case types.OrderTypeCustom:
		description := ""
		if ctx.Custom != nil {
			description = ctx.Custom.Description
		}
		return types.CustomMetadata{
			Type:        types.OrderTypeCustom,
			Description: description,
		}, nil

	default:
		return nil, types.ValidationError("unknown order type %q", t)
	}
}

// DecodeOrder decodes a raw order document with strict variant dispatch.
func DecodeOrder(raw []byte) (*types.Order, error) {
	var decoded types.Order
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if payErr, ok := err.(*types.PayError); ok {
			return nil, payErr
		}
		return nil, types.DecodeError("decode order: %v", err)
	}
	return &decoded, nil
}
