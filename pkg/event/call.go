package event

import "time"

const (
	OrdersTopic = "orders.status"
	CallsTopic  = "calls.audit"

	EventOrderCancelled = "order.cancelled"
	EventOrderRefunded  = "order.refunded"
	EventCallLogged     = "call.logged"
)

// OrderStatusEvent is published when a tool call mutates an order
// (cancellation or refund approval).
type OrderStatusEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        string    `json:"order_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	RefundAmount   float64   `json:"refund_amount,omitempty"`
}

// CallLoggedEvent is the audit record behind the log_call tool. The
// gateway itself keeps no call history; downstream consumers may.
type CallLoggedEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	CallSummary string    `json:"call_summary"`
	Sentiment   string    `json:"sentiment"`
	Timestamp   string    `json:"timestamp"`
}
