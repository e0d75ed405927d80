package order

import (
	"context"
	"time"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
	"github.com/vialabs/payorder/utils"
)

// OnrampOptions selects a fiat vendor for a created order. Each vendor has
// its own required fields: the limit-based vendor needs the buyer's country,
// the redirect vendor needs the caller's IP address. A missing required field
// is a local validation error, never silently defaulted.
type OnrampOptions struct {
	Vendor        types.OnrampVendor
	Country       string
	PaymentMethod string
	IPAddress     string
}

// CreateOrderParams are the inputs to order submission. Route addresses may
// arrive unnormalized; submission normalizes everything before transmission.
type CreateOrderParams struct {
	Type             types.OrderType
	RecipientAddress string
	Route            types.Route
	SrcAmount        string
	Context          Context

	// Payload and Metadata override the registry build when set, for
	// callers that constructed variants up front. Their tags must match
	// Type.
	Payload  types.OrderPayload
	Metadata types.OrderMetadata

	Onramp         *OnrampOptions
	CreatorAddress string

	// ClientReferenceID is an optional idempotency key. An invalid key
	// degrades to no idempotency; it never aborts creation.
	ClientReferenceID string
}

// SubmissionService turns quotes plus user inputs into created orders.
type SubmissionService struct {
	api       *api.Client
	partnerID string
	log       logger.Logger
	rec       metrics.Recorder
}

// NewSubmissionService builds a submission service over the given API client.
func NewSubmissionService(client *api.Client, partnerID string, log logger.Logger, rec metrics.Recorder) *SubmissionService {
	return &SubmissionService{
		api:       client,
		partnerID: partnerID,
		log:       log,
		rec:       rec,
	}
}

// CreateOrder validates and submits a new order. Validation failures are
// resolved locally; business failures carry the server message verbatim.
func (s *SubmissionService) CreateOrder(ctx context.Context, params CreateOrderParams) (*types.Order, error) {
	started := time.Now()
	defer func() {
		s.rec.ObserveLatency("order_create", time.Since(started), map[string]string{"operation": "create"})
	}()

	if !params.Type.Valid() {
		return nil, types.ValidationError("unknown order type %q", params.Type)
	}

	recipient, err := utils.NormalizeAddress(params.RecipientAddress)
	if err != nil {
		return nil, err
	}
	srcToken, err := utils.NormalizeAddress(params.Route.SrcTokenAddress)
	if err != nil {
		return nil, err
	}
	dstToken, err := utils.NormalizeAddress(params.Route.DstTokenAddress)
	if err != nil {
		return nil, err
	}

	creator := ""
	if params.CreatorAddress != "" {
		creator, err = utils.NormalizeAddress(params.CreatorAddress)
		if err != nil {
			return nil, err
		}
	}

	if _, err := utils.ValidateIntegerAmount(params.SrcAmount); err != nil {
		return nil, types.ValidationError("source amount: %v", err)
	}

	onramp, err := validateOnramp(params.Onramp)
	if err != nil {
		return nil, err
	}

	payload, metadata, err := resolveVariant(params)
	if err != nil {
		return nil, err
	}

	reference := ""
	if params.ClientReferenceID != "" {
		reference, err = utils.ValidateClientReferenceID(params.ClientReferenceID)
		if err != nil {
			// A bad idempotency key degrades to "no idempotency".
			s.log.Warn("dropping invalid client reference id", map[string]any{
				"error": err.Error(),
			})
			reference = ""
		}
	}

	request := &types.CreateOrderRequest{
		RecipientAddress:  recipient,
		Type:              params.Type,
		SrcChain:          params.Route.SrcChain,
		DstChain:          params.Route.DstChain,
		SrcTokenAddress:   srcToken,
		DstTokenAddress:   dstToken,
		SrcAmount:         params.SrcAmount,
		Payload:           payload,
		Metadata:          metadata,
		Onramp:            onramp,
		CreatorAddress:    creator,
		PartnerID:         s.partnerID,
		ClientReferenceID: reference,
	}

	if err := utils.ValidateStruct(request); err != nil {
		return nil, err
	}

	created, err := s.api.CreateOrder(ctx, request)
	if err != nil {
		s.rec.IncCounter("order_create_failed", map[string]string{"operation": "create"})
		return nil, err
	}

	s.rec.IncCounter("order_created", map[string]string{"operation": "create"})
	s.log.Info("order created", map[string]any{
		"orderId": created.ID,
		"type":    created.Type.String(),
		"status":  created.Status.String(),
	})
	return created, nil
}

// resolveVariant builds payload and metadata from the registry, or checks a
// caller-provided pair against the order type. Mismatches fail before any
// network call.
func resolveVariant(params CreateOrderParams) (types.OrderPayload, types.OrderMetadata, error) {
	payload := params.Payload
	metadata := params.Metadata

	if payload == nil {
		built, err := BuildPayload(params.Type, params.Context)
		if err != nil {
			return nil, nil, err
		}
		payload = built
	} else if payload.PayloadType() != params.Type {
		return nil, nil, types.ValidationError(
			"payload variant %q does not match order type %q",
			payload.PayloadType(), params.Type,
		)
	}

	if metadata == nil {
		built, err := BuildMetadata(params.Type, params.Context)
		if err != nil {
			return nil, nil, err
		}
		metadata = built
	} else if metadata.MetadataType() != params.Type {
		return nil, nil, types.ValidationError(
			"metadata variant %q does not match order type %q",
			metadata.MetadataType(), params.Type,
		)
	}

	return payload, metadata, nil
}

// validateOnramp enforces per-vendor required fields.
func validateOnramp(opts *OnrampOptions) (*types.OnrampMetadata, error) {
	if opts == nil {
		return nil, nil
	}

	switch opts.Vendor {
	case types.OnrampVendorCoinbase:
		if opts.Country == "" {
			return nil, types.ValidationError("coinbase onramp requires a country")
		}
	case types.OnrampVendorStripe:
		if opts.IPAddress == "" {
			return nil, types.ValidationError("stripe onramp requires an ip address")
		}
	default:
		return nil, types.ValidationError("unknown onramp vendor %q", opts.Vendor)
	}

	return &types.OnrampMetadata{
		Vendor:        opts.Vendor,
		Country:       opts.Country,
		PaymentMethod: opts.PaymentMethod,
	}, nil
}
