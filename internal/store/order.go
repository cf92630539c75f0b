package store

// Order status codes. Orders move preparing -> dispatched -> delivered,
// or terminate at cancelled. Cancelled is final.
const (
	StatusPreparing  = "preparing"
	StatusDispatched = "dispatched"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

type OrderItem struct {
	ProductName string `json:"product_name"`
	Qty         int    `json:"qty"`
}

type Order struct {
	OrderID           string      `json:"order_id"`
	Status            string      `json:"status"`
	VendorName        string      `json:"vendor_name,omitempty"`
	DeliveryETA       *string     `json:"delivery_eta"`
	DeliveredAt       *string     `json:"delivered_at"`
	CanCancel         bool        `json:"can_cancel"`
	EligibleForRefund bool        `json:"eligible_for_refund"`
	Items             []OrderItem `json:"items,omitempty"`
}

// Cancellable reports whether the order may still be cancelled. An order
// already dispatched, delivered or cancelled is past the point of no return
// regardless of its can_cancel flag.
func (o *Order) Cancellable() bool {
	if !o.CanCancel {
		return false
	}
	switch o.Status {
	case StatusDispatched, StatusDelivered, StatusCancelled:
		return false
	}
	return true
}
