package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/turismo-portal/internal/domain/cart"
	"github.com/example/turismo-portal/internal/domain/order"
	"github.com/example/turismo-portal/internal/domain/user"
	"github.com/example/turismo-portal/internal/notification"
)

var (
	// ErrNotAuthenticated is returned when checkout is attempted without a
	// signed-in identity.
	ErrNotAuthenticated = errors.New("checkout requires a signed-in user")
	// ErrEmptyCart is returned when checkout is attempted with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCheckoutInFlight is returned when a session submits again while its
	// previous submission is still running.
	ErrCheckoutInFlight = errors.New("a checkout is already in progress for this session")
	// ErrOrderPersist wraps a failed order insert; nothing was written and
	// the cart is untouched.
	ErrOrderPersist = errors.New("order could not be saved")
	// ErrLineItemPersist wraps a failed line-item insert. The order row
	// already exists without its items; the cart is left untouched so the
	// buyer can retry, and the inconsistency is surfaced rather than hidden.
	ErrLineItemPersist = errors.New("order was created but its items could not be saved")
)

// Carts is the slice of the cart engine checkout needs.
type Carts interface {
	Snapshot(sessionID string) []cart.Line
	Clear(sessionID string)
}

// OrderWriter persists orders and their items as two separate writes. There
// is no transaction spanning both; see ErrLineItemPersist.
type OrderWriter interface {
	InsertOrder(ctx context.Context, o *order.Order) error
	InsertItems(ctx context.Context, items []order.Item) error
}

// Service converts a session's cart into a persisted order plus line items
// and fires the confirmation notification.
type Service struct {
	carts      Carts
	orders     OrderWriter
	dispatcher notification.Dispatcher

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(carts Carts, orders OrderWriter, dispatcher notification.Dispatcher) *Service {
	return &Service{
		carts:      carts,
		orders:     orders,
		dispatcher: dispatcher,
		inFlight:   make(map[string]struct{}),
	}
}

// newOrderNumber builds the human-readable order number. The format follows
// the storefront's ORD-<millis> convention; the unique constraint on
// orders.order_number rejects the rare same-millisecond collision, which
// surfaces as ErrOrderPersist and a user-initiated retry.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// Submit runs the order submission flow for one session. On any failure the
// cart is left untouched; it is cleared only after the order and all of its
// items are persisted. The notification is dispatched exactly once per
// successful submission and its failure never fails the checkout.
func (s *Service) Submit(ctx context.Context, buyer *user.User, sessionID string) (*order.Order, error) {
	if buyer == nil || buyer.ID == "" {
		return nil, ErrNotAuthenticated
	}

	if !s.acquire(sessionID) {
		return nil, ErrCheckoutInFlight
	}
	defer s.release(sessionID)

	lines := s.carts.Snapshot(sessionID)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	o := &order.Order{
		ID:          uuid.New().String(),
		OrderNumber: newOrderNumber(now),
		UserID:      buyer.ID,
		Status:      order.StatusPending,
		TotalAmount: cart.Total(lines),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orders.InsertOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderPersist, err)
	}

	items := make([]order.Item, len(lines))
	for i, line := range lines {
		items[i] = order.Item{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			ProductID:  line.Product.ID,
			Quantity:   line.Quantity,
			UnitPrice:  line.Product.Price,
			TotalPrice: line.Product.Price * float64(line.Quantity),
		}
	}
	if err := s.orders.InsertItems(ctx, items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLineItemPersist, err)
	}
	o.Items = items

	if err := s.dispatcher.Dispatch(ctx, buildConfirmation(o, buyer, lines)); err != nil {
		log.Printf("[Checkout] Notification dispatch failed for order %s: %v", o.OrderNumber, err)
	}

	s.carts.Clear(sessionID)
	return o, nil
}

func buildConfirmation(o *order.Order, buyer *user.User, lines []cart.Line) notification.OrderConfirmation {
	items := make([]notification.LineSummary, len(lines))
	for i, line := range lines {
		items[i] = notification.LineSummary{
			Name:     line.Product.Name,
			Quantity: line.Quantity,
			Price:    line.Product.Price,
		}
	}
	return notification.OrderConfirmation{
		OrderNumber: o.OrderNumber,
		UserEmail:   buyer.Email,
		UserName:    buyer.DisplayName(),
		TotalAmount: o.TotalAmount,
		Items:       items,
	}
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
