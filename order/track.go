package order

import (
	"context"
	"reflect"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vialabs/payorder/api"
	"github.com/vialabs/payorder/logger"
	"github.com/vialabs/payorder/metrics"
	"github.com/vialabs/payorder/types"
	"github.com/vialabs/payorder/utils"
)

// Tracker polls the settlement service for order progress until a terminal
// status. Each subscription owns one polling goroutine; polls never overlap
// because the next one is only scheduled after the previous resolves.
type Tracker struct {
	api      *api.Client
	interval time.Duration
	cache    *lru.Cache
	log      logger.Logger
	rec      metrics.Recorder
}

// NewTracker builds a tracker polling on the given cadence. cache may be nil.
func NewTracker(client *api.Client, interval time.Duration, cache *lru.Cache, log logger.Logger, rec metrics.Recorder) *Tracker {
	if interval <= 0 {
		interval = types.DefaultTrackInterval
	}
	return &Tracker{
		api:      client,
		interval: interval,
		cache:    cache,
		log:      log,
		rec:      rec,
	}
}

// Subscription is a cancellable order-tracking stream. Updates are delivered
// in poll order; a snapshot structurally equal to the previous one is not
// re-emitted. The stream ends when the order reaches a terminal status, the
// context ends, or Stop is called.
type Subscription struct {
	updates  chan *types.OrderRecord
	errs     chan error
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Updates is the snapshot stream. Closed when the subscription ends.
func (s *Subscription) Updates() <-chan *types.OrderRecord { return s.updates }

// Errors reports per-tick transport failures. A delivered error does not end
// the subscription; polling continues on the next tick.
func (s *Subscription) Errors() <-chan error { return s.errs }

// Done is closed when the polling goroutine has fully exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Stop cancels the subscription before its next tick. A result from an
// in-flight poll is discarded, never delivered after Stop.
func (s *Subscription) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Track starts polling orderID.
func (t *Tracker) Track(ctx context.Context, orderID string) (*Subscription, error) {
	if orderID == "" {
		return nil, types.ValidationError("order id is empty")
	}

	sub := &Subscription{
		updates: make(chan *types.OrderRecord),
		errs:    make(chan error, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go t.run(ctx, orderID, sub)
	return sub, nil
}

func (t *Tracker) run(ctx context.Context, orderID string, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.errs)
	defer close(sub.updates)

	var last *types.OrderRecord

	for {
		record, err := t.api.Order(ctx, orderID)

		if cancelled(ctx, sub) {
			return
		}

		if err != nil {
			// The poller never gives up on its own; pending orders are
			// expected to eventually resolve.
			t.rec.IncCounter("track_poll_failed", map[string]string{"operation": "track"})
			t.log.Warn("order poll failed", map[string]any{
				"orderId": orderID,
				"error":   err.Error(),
			})
			select {
			case sub.errs <- err:
			default:
			}
		} else {
			t.rec.IncCounter("track_poll", map[string]string{"operation": "track"})

			if !equalSnapshots(last, record) {
				last = record
				if t.cache != nil {
					t.cache.Add(orderID, record)
				}
				select {
				case sub.updates <- record:
				case <-ctx.Done():
					return
				case <-sub.stop:
					return
				}
			}

			if record.Order.Status.IsTerminal() {
				t.log.Info("order reached terminal status", map[string]any{
					"orderId": orderID,
					"status":  record.Order.Status.String(),
					"bucket":  string(record.Order.Status.Classify()),
				})
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-sub.stop:
			return
		case <-time.After(t.interval):
		}
	}
}

func cancelled(ctx context.Context, sub *Subscription) bool {
	select {
	case <-ctx.Done():
		return true
	case <-sub.stop:
		return true
	default:
		return false
	}
}

// equalSnapshots reports structural equality of two poll results. Amount
// fields compare numerically so that differently formatted big integers do
// not produce spurious emissions.
func equalSnapshots(a, b *types.OrderRecord) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !equalOrders(a.Order, b.Order) {
		return false
	}
	if len(a.DepositTxs) != len(b.DepositTxs) {
		return false
	}
	for i := range a.DepositTxs {
		if !equalDeposits(a.DepositTxs[i], b.DepositTxs[i]) {
			return false
		}
	}
	if !reflect.DeepEqual(a.RelayTx, b.RelayTx) {
		return false
	}
	if !reflect.DeepEqual(a.ExecuteTx, b.ExecuteTx) {
		return false
	}
	if len(a.RefundTxs) != len(b.RefundTxs) {
		return false
	}
	for i := range a.RefundTxs {
		if !equalRefunds(a.RefundTxs[i], b.RefundTxs[i]) {
			return false
		}
	}
	return true
}

func equalOrders(a, b *types.Order) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Type != b.Type || a.Status != b.Status {
		return false
	}
	if a.RecipientAddress != b.RecipientAddress ||
		a.CreatorAddress != b.CreatorAddress ||
		a.GlobalAddress != b.GlobalAddress ||
		a.ErrorDetails != b.ErrorDetails {
		return false
	}
	if a.SrcChain != b.SrcChain || a.DstChain != b.DstChain ||
		a.SrcTokenAddress != b.SrcTokenAddress ||
		a.DstTokenAddress != b.DstTokenAddress {
		return false
	}
	if !utils.EqualAmount(a.SrcAmount, b.SrcAmount) {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) || !a.ExpiredAt.Equal(b.ExpiredAt) {
		return false
	}
	// The fiat-payment fields typically appear on a later poll than the
	// order itself; their arrival is an update the consumer is waiting for.
	if a.StripePaymentIntentID != b.StripePaymentIntentID ||
		a.OneClickBuyURL != b.OneClickBuyURL {
		return false
	}
	return reflect.DeepEqual(a.Payload, b.Payload) &&
		reflect.DeepEqual(a.Metadata, b.Metadata) &&
		reflect.DeepEqual(a.OnrampMetadata, b.OnrampMetadata) &&
		reflect.DeepEqual(a.Permit, b.Permit)
}

func equalDeposits(a, b types.DepositTransaction) bool {
	return a.OrderID == b.OrderID &&
		a.Chain == b.Chain &&
		a.From == b.From &&
		a.TxHash == b.TxHash &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		utils.EqualAmount(a.Amount, b.Amount)
}

func equalRefunds(a, b types.RefundTransaction) bool {
	return a.OrderID == b.OrderID &&
		a.Chain == b.Chain &&
		a.TxHash == b.TxHash &&
		a.Status == b.Status &&
		utils.EqualAmount(a.Amount, b.Amount)
}
