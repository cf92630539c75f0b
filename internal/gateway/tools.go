package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/voicedesk/voicedesk/internal/store"
	"github.com/voicedesk/voicedesk/pkg/event"
)

// refundUnitRate is the fixed mock rate applied per item unit when
// computing refund amounts. The dataset carries no real pricing.
const refundUnitRate = 4.50

// ToolFunc is one callable action exposed to the voice agent. Tools are
// pure over (store state, args); the two mutating ones (cancel_order,
// request_refund) apply their state flip inside the store lock.
type ToolFunc func(ctx context.Context, args Args) (map[string]any, *CallError)

type Tools struct {
	store     *store.Store
	publisher events.Publisher
	logger    aqm.Logger
	registry  map[string]ToolFunc
}

func NewTools(st *store.Store, publisher events.Publisher, logger aqm.Logger) *Tools {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	t := &Tools{
		store:     st,
		publisher: publisher,
		logger:    logger,
	}

	t.registry = map[string]ToolFunc{
		"check_order_status":   t.CheckOrderStatus,
		"cancel_order":         t.CancelOrder,
		"request_refund":       t.RequestRefund,
		"create_ticket":        t.CreateTicket,
		"log_call":             t.LogCall,
		"get_current_datetime": t.GetCurrentDatetime,
		"end_call":             t.EndCall,
	}

	return t
}

// Names returns the registered tool names in stable order, for route
// registration.
func (t *Tools) Names() []string {
	names := make([]string, 0, len(t.registry))
	for name := range t.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch invokes the named tool. An unrecognized name is an envelope
// error, never a crash.
func (t *Tools) Dispatch(ctx context.Context, name string, args Args) (map[string]any, *CallError) {
	fn, ok := t.registry[name]
	if !ok {
		return nil, &CallError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("unknown function: %s", name),
		}
	}
	return fn(ctx, args)
}

func (t *Tools) CheckOrderStatus(ctx context.Context, args Args) (map[string]any, *CallError) {
	if cerr := args.Require("order_id"); cerr != nil {
		return nil, cerr
	}

	orderID := args.String("order_id")
	order, ok := t.store.Find(orderID)
	if !ok {
		return nil, orderNotFound(orderID)
	}

	data := map[string]any{
		"order_id":     order.OrderID,
		"status":       order.Status,
		"delivery_eta": order.DeliveryETA,
		"eta":          order.DeliveryETA,
		"delivered_at": order.DeliveredAt,
	}
	if order.VendorName != "" {
		data["vendor_name"] = order.VendorName
	}
	return data, nil
}

func (t *Tools) CancelOrder(ctx context.Context, args Args) (map[string]any, *CallError) {
	if cerr := args.Require("order_id"); cerr != nil {
		return nil, cerr
	}

	orderID := args.String("order_id")

	var cancelled bool
	var previousStatus string
	order, ok := t.store.Mutate(orderID, func(o *store.Order) {
		if !o.Cancellable() {
			return
		}
		previousStatus = o.Status
		o.Status = store.StatusCancelled
		o.CanCancel = false
		cancelled = true
	})
	if !ok {
		return nil, orderNotFound(orderID)
	}

	if !cancelled {
		return map[string]any{
			"order_id": order.OrderID,
			"success":  false,
			"status":   order.Status,
			"message":  fmt.Sprintf("Order %s can no longer be cancelled.", orderID),
		}, nil
	}

	t.publishOrderStatus(ctx, event.EventOrderCancelled, order, previousStatus, 0)

	return map[string]any{
		"order_id": order.OrderID,
		"success":  true,
		"status":   order.Status,
		"message":  fmt.Sprintf("Order %s has been cancelled successfully.", orderID),
	}, nil
}

func (t *Tools) RequestRefund(ctx context.Context, args Args) (map[string]any, *CallError) {
	if cerr := args.Require("order_id", "reason"); cerr != nil {
		return nil, cerr
	}

	orderID := args.String("order_id")
	reason := args.String("reason")

	var approved bool
	var amount float64
	order, ok := t.store.Mutate(orderID, func(o *store.Order) {
		if !o.EligibleForRefund {
			return
		}
		amount = refundAmount(o.Items)
		o.EligibleForRefund = false
		approved = true
	})
	if !ok {
		return nil, orderNotFound(orderID)
	}

	if !approved {
		return map[string]any{
			"order_id": order.OrderID,
			"approved": false,
			"message":  fmt.Sprintf("Order %s is not eligible for a refund based on current policy.", orderID),
		}, nil
	}

	t.publishOrderStatus(ctx, event.EventOrderRefunded, order, order.Status, amount)

	return map[string]any{
		"order_id":      order.OrderID,
		"approved":      true,
		"refund_amount": amount,
		"reason":        reason,
		"message":       fmt.Sprintf("Refund for order %s has been processed.", orderID),
	}, nil
}

func (t *Tools) CreateTicket(ctx context.Context, args Args) (map[string]any, *CallError) {
	if cerr := args.Require("issue_type", "user_notes"); cerr != nil {
		return nil, cerr
	}

	orderID := args.String("order_id")
	if orderID == "" {
		orderID = "unknown"
	}

	return map[string]any{
		"ticket_id":  uuid.New().String(),
		"issue_type": args.String("issue_type"),
		"user_notes": args.String("user_notes"),
		"order_id":   orderID,
		"message":    "Ticket has been created.",
	}, nil
}

func (t *Tools) LogCall(ctx context.Context, args Args) (map[string]any, *CallError) {
	if cerr := args.Require("call_summary", "sentiment", "timestamp"); cerr != nil {
		return nil, cerr
	}

	evt := event.CallLoggedEvent{
		EventType:   event.EventCallLogged,
		OccurredAt:  time.Now(),
		CallSummary: args.String("call_summary"),
		Sentiment:   args.String("sentiment"),
		Timestamp:   args.String("timestamp"),
	}
	t.publish(ctx, event.CallsTopic, evt)

	return map[string]any{
		"stored":  true,
		"message": "Call log recorded.",
	}, nil
}

func (t *Tools) GetCurrentDatetime(ctx context.Context, args Args) (map[string]any, *CallError) {
	now := time.Now().UTC()
	return map[string]any{
		"date": now.Format("2006-01-02"),
		"time": now.Format("15:04:05"),
	}, nil
}

func (t *Tools) EndCall(ctx context.Context, args Args) (map[string]any, *CallError) {
	return map[string]any{
		"hang_up": true,
		"message": "Ending the call now.",
	}, nil
}

func (t *Tools) publishOrderStatus(ctx context.Context, eventType string, order store.Order, previousStatus string, refundAmount float64) {
	evt := event.OrderStatusEvent{
		EventType:      eventType,
		OccurredAt:     time.Now(),
		OrderID:        order.OrderID,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
		RefundAmount:   refundAmount,
	}
	t.publish(ctx, event.OrdersTopic, evt)
}

// publish is best-effort: audit events never affect the caller's outcome.
func (t *Tools) publish(ctx context.Context, topic string, evt any) {
	if t.publisher == nil {
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.logger.Errorf("Failed to marshal %s event: %v", topic, err)
		return
	}
	if err := t.publisher.Publish(ctx, topic, data); err != nil {
		t.logger.Errorf("Failed to publish %s event: %v", topic, err)
	}
}

func refundAmount(items []store.OrderItem) float64 {
	total := 0
	for _, item := range items {
		total += item.Qty
	}
	return math.Round(float64(total)*refundUnitRate*100) / 100
}

func orderNotFound(orderID string) *CallError {
	return &CallError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("order not found: %s", orderID),
	}
}
