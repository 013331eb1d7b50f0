package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/turismo-portal/internal/domain/product"
)

// Status is an order's place in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOrderFinal        = errors.New("order is in a terminal status")
	ErrNotCancellable    = errors.New("only pending orders can be cancelled")
)

// validTransitions defines the allowed forward moves. delivered and
// cancelled are terminal: an order never leaves either.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return len(validTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether the lifecycle allows moving from s to
// target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range validTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionError returns the error describing why s cannot move to target.
func (s Status) TransitionError(target Status) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	if s.Terminal() {
		return fmt.Errorf("%w: %s", ErrOrderFinal, s)
	}
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, s, target)
}

// Order is one confirmed checkout. total_amount always equals the sum of its
// items' total_price; both are fixed at submission time from the cart's
// snapshotted prices.
type Order struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	UserID      string    `json:"user_id"`
	Status      Status    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Items       []Item    `json:"items,omitempty"`
}

// CancellableByCustomer reports whether the buyer-facing flow may cancel the
// order. Customers only cancel pending orders; later cancellations belong to
// staff.
func (o *Order) CancellableByCustomer() bool {
	return o.Status == StatusPending
}

// Item is one product line frozen into an order at checkout time.
type Item struct {
	ID         string           `json:"id"`
	OrderID    string           `json:"order_id"`
	ProductID  string           `json:"product_id"`
	Quantity   int              `json:"quantity"`
	UnitPrice  float64          `json:"unit_price"`
	TotalPrice float64          `json:"total_price"`
	Product    *product.Product `json:"product,omitempty"`
}

// WithBuyer is an order joined with its buyer's contact details, used by the
// staff order listing.
type WithBuyer struct {
	Order
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
}
