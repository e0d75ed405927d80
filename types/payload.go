package types

import (
	"encoding/json"
	"fmt"
)

// OrderPayload is the variant-specific body of an order. The concrete shape is
// determined by the order type; decoding rejects any tag mismatch instead of
// coercing.
type OrderPayload interface {
	PayloadType() OrderType
}

// OrderMetadata is the variant-specific display metadata of an order.
type OrderMetadata interface {
	MetadataType() OrderType
}

// SwapPayload carries the destination amount snapshot taken at order-creation
// time. It is never re-derived from a later quote.
type SwapPayload struct {
	Type              OrderType `json:"type"`
	ExpectedDstAmount string    `json:"expectedDstAmount"`
}

func (p SwapPayload) PayloadType() OrderType { return OrderTypeSwap }

// MintNFTPayload describes the NFT being purchased.
type MintNFTPayload struct {
	Type     OrderType `json:"type"`
	Contract string    `json:"contract"`
	TokenID  string    `json:"tokenId,omitempty"`
	Price    string    `json:"price"`
	Quantity int       `json:"quantity,omitempty"`
}

func (p MintNFTPayload) PayloadType() OrderType { return OrderTypeMintNFT }

// JoinTournamentPayload describes the tournament entry being paid for.
type JoinTournamentPayload struct {
	Type         OrderType `json:"type"`
	TournamentID string    `json:"tournamentId"`
	EntryFee     string    `json:"entryFee"`
}

func (p JoinTournamentPayload) PayloadType() OrderType { return OrderTypeJoinTournament }

// FundTournamentPayload describes a prize-pool contribution.
type FundTournamentPayload struct {
	Type         OrderType `json:"type"`
	TournamentID string    `json:"tournamentId"`
	FundAmount   string    `json:"fundAmount"`
}

func (p FundTournamentPayload) PayloadType() OrderType { return OrderTypeFundTournament }

// CustomPayload carries an arbitrary destination-chain call.
type CustomPayload struct {
	Type     OrderType `json:"type"`
	Target   string    `json:"target"`
	CallData string    `json:"callData"`
	Value    string    `json:"value,omitempty"`
}

func (p CustomPayload) PayloadType() OrderType { return OrderTypeCustom }

// SwapMetadata is the display metadata for a swap order.
type SwapMetadata struct {
	Type      OrderType `json:"type"`
	SrcToken  *Token    `json:"srcToken,omitempty"`
	DstToken  *Token    `json:"dstToken,omitempty"`
	TradeType TradeType `json:"tradeType,omitempty"`
}

func (m SwapMetadata) MetadataType() OrderType { return OrderTypeSwap }

// MintNFTMetadata is the display metadata for an NFT mint order.
type MintNFTMetadata struct {
	Type     OrderType `json:"type"`
	Name     string    `json:"name"`
	ImageURL string    `json:"imageUrl,omitempty"`
}

func (m MintNFTMetadata) MetadataType() OrderType { return OrderTypeMintNFT }

// JoinTournamentMetadata is the display metadata for a tournament entry.
type JoinTournamentMetadata struct {
	Type           OrderType `json:"type"`
	TournamentName string    `json:"tournamentName"`
}

func (m JoinTournamentMetadata) MetadataType() OrderType { return OrderTypeJoinTournament }

// FundTournamentMetadata is the display metadata for a prize-pool contribution.
type FundTournamentMetadata struct {
	Type           OrderType `json:"type"`
	TournamentName string    `json:"tournamentName"`
}

func (m FundTournamentMetadata) MetadataType() OrderType { return OrderTypeFundTournament }

// CustomMetadata is the display metadata for a custom order.
type CustomMetadata struct {
	Type        OrderType `json:"type"`
	Description string    `json:"description,omitempty"`
}

func (m CustomMetadata) MetadataType() OrderType { return OrderTypeCustom }

// DecodePayload decodes raw into the payload shape for t. The literal type tag
// inside raw must match t exactly; a mismatch or unknown tag is a decode error.
func DecodePayload(t OrderType, raw json.RawMessage) (OrderPayload, error) {
	if len(raw) == 0 {
		return nil, DecodeError("order payload is missing")
	}

	if err := checkTag(t, raw, "payload"); err != nil {
		return nil, err
	}

	switch t {
	case OrderTypeSwap:
		var p SwapPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, DecodeError("invalid %s payload: %v", t, err)
		}
		return p, nil
	case OrderTypeMintNFT:
		var p MintNFTPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, DecodeError("invalid %s payload: %v", t, err)
		}
		return p, nil
	case OrderTypeJoinTournament:
		var p JoinTournamentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, DecodeError("invalid %s payload: %v", t, err)
		}
		return p, nil
	case OrderTypeFundTournament:
		var p FundTournamentPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, DecodeError("invalid %s payload: %v", t, err)
		}
		return p, nil
	case OrderTypeCustom:
		var p CustomPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, DecodeError("invalid %s payload: %v", t, err)
		}
		return p, nil
	default:
		return nil, DecodeError("unknown order type %q", t)
	}
}

// DecodeMetadata decodes raw into the metadata shape for t, with the same
// strict tag checking as DecodePayload.
func DecodeMetadata(t OrderType, raw json.RawMessage) (OrderMetadata, error) {
	if len(raw) == 0 {
		return nil, DecodeError("order metadata is missing")
	}

	if err := checkTag(t, raw, "metadata"); err != nil {
		return nil, err
	}

	switch t {
	case OrderTypeSwap:
		var m SwapMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, DecodeError("invalid %s metadata: %v", t, err)
		}
		return m, nil
	case OrderTypeMintNFT:
		var m MintNFTMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, DecodeError("invalid %s metadata: %v", t, err)
		}
		return m, nil
	case OrderTypeJoinTournament:
		var m JoinTournamentMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, DecodeError("invalid %s metadata: %v", t, err)
		}
		return m, nil
	case OrderTypeFundTournament:
		var m FundTournamentMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, DecodeError("invalid %s metadata: %v", t, err)
		}
		return m, nil
	case OrderTypeCustom:
		var m CustomMetadata
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, DecodeError("invalid %s metadata: %v", t, err)
		}
		return m, nil
	default:
		return nil, DecodeError("unknown order type %q", t)
	}
}

// checkTag verifies the embedded discriminant before committing to a shape.
func checkTag(t OrderType, raw json.RawMessage, what string) error {
	var probe struct {
		Type OrderType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return DecodeError("invalid order %s: %v", what, err)
	}
	if probe.Type == "" {
		return DecodeError("order %s has no type tag", what)
	}
	if probe.Type != t {
		return DecodeError("order %s tag %q does not match order type %q", what, probe.Type, t)
	}
	return nil
}

// UnmarshalJSON decodes an order with strict payload/metadata dispatch on the
// order type.
func (o *Order) UnmarshalJSON(data []byte) error {
	type orderAlias Order
	aux := struct {
		*orderAlias
		Payload  json.RawMessage `json:"payload"`
		Metadata json.RawMessage `json:"metadata"`
	}{orderAlias: (*orderAlias)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode order: %w", err)
	}
	if !o.Type.Valid() {
		return DecodeError("unknown order type %q", o.Type)
	}

	payload, err := DecodePayload(o.Type, aux.Payload)
	if err != nil {
		return err
	}
	metadata, err := DecodeMetadata(o.Type, aux.Metadata)
	if err != nil {
		return err
	}

	o.Payload = payload
	o.Metadata = metadata
	return nil
}
