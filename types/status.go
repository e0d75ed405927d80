package types

// OrderStatus is a lifecycle state reported by the settlement service. The
// client never computes transitions itself; it only classifies the status it
// received.
type OrderStatus string

const (
	StatusScanningDepositTransaction OrderStatus = "ScanningDepositTransaction"
	StatusWaitingStripePayment       OrderStatus = "WaitingStripePayment"
	StatusObtainToken                OrderStatus = "ObtainToken"
	StatusObtainFailed               OrderStatus = "ObtainFailed"
	StatusExpired                    OrderStatus = "Expired"
	StatusSendingTokenFromVault      OrderStatus = "SendingTokenFromVault"
	StatusRelay                      OrderStatus = "Relay"
	StatusExecuted                   OrderStatus = "Executed"
	StatusRefunding                  OrderStatus = "Refunding"
	StatusRefunded                   OrderStatus = "Refunded"
	StatusFailure                    OrderStatus = "Failure"
)

// StatusBucket groups statuses for control flow and display.
type StatusBucket string

const (
	BucketPending         StatusBucket = "pending"
	BucketSuccessTerminal StatusBucket = "success"
	BucketFailureTerminal StatusBucket = "failure"
	BucketRefundTerminal  StatusBucket = "refund"
)

// Classify maps a status into exactly one bucket. Statuses the client does not
// recognize classify as pending so that a server-added state keeps the order
// tracked instead of failing it.
func (s OrderStatus) Classify() StatusBucket {
	switch s {
	case StatusExecuted:
		return BucketSuccessTerminal
	case StatusFailure, StatusExpired, StatusObtainFailed:
		return BucketFailureTerminal
	case StatusRefunded:
		return BucketRefundTerminal
	}
	return BucketPending
}

// IsTerminal reports whether no further transition is expected; tracking stops
// once a terminal status is observed.
func (s OrderStatus) IsTerminal() bool {
	return s.Classify() != BucketPending
}

func (s OrderStatus) String() string {
	return string(s)
}
