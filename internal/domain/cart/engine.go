package cart

import (
	"log"
	"sync"

	"github.com/example/turismo-portal/internal/domain/product"
)

// Engine owns the in-memory carts of all live sessions and mirrors every
// mutation to the Store. Mutations always succeed from the caller's point of
// view; a failed flush is logged and the in-memory state stays authoritative
// for the rest of the session, the same way a full local storage would not
// abort a purchase.
type Engine struct {
	mu    sync.Mutex
	store Store
	carts map[string]*Cart
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		carts: make(map[string]*Cart),
	}
}

// cart returns the session's cart, rehydrating it from the store on first
// access. Unreadable or corrupt persisted state silently resets to an empty
// cart rather than failing the session.
func (e *Engine) cart(sessionID string) *Cart {
	if c, ok := e.carts[sessionID]; ok {
		return c
	}
	lines, err := e.store.Load(sessionID)
	if err != nil {
		log.Printf("[Cart] Could not restore cart for session %s, starting empty: %v", sessionID, err)
		lines = nil
	}
	c := Restore(lines)
	e.carts[sessionID] = c
	return c
}

func (e *Engine) flush(sessionID string, c *Cart) {
	if err := e.store.Save(sessionID, c.Lines()); err != nil {
		log.Printf("[Cart] Failed to persist cart for session %s: %v", sessionID, err)
	}
}

// Add puts qty units of p into the session's cart and reports whether the
// quantity was merged into an existing line.
func (e *Engine) Add(sessionID string, p product.Product, qty int) (merged bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.cart(sessionID)
	merged = c.Add(p, qty)
	e.flush(sessionID, c)
	return merged
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (e *Engine) UpdateQuantity(sessionID, productID string, qty int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.cart(sessionID)
	c.UpdateQuantity(productID, qty)
	e.flush(sessionID, c)
}

// Remove deletes a line; absent lines are a no-op.
func (e *Engine) Remove(sessionID, productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.cart(sessionID)
	c.Remove(productID)
	e.flush(sessionID, c)
}

// Clear empties the session's cart.
func (e *Engine) Clear(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.cart(sessionID)
	c.Clear()
	e.flush(sessionID, c)
}

// Snapshot returns a copy of the session's lines.
func (e *Engine) Snapshot(sessionID string) []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart(sessionID).Lines()
}

// TotalItems returns the item count of the session's cart.
func (e *Engine) TotalItems(sessionID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart(sessionID).TotalItems()
}

// TotalPrice returns the snapshot-priced total of the session's cart.
func (e *Engine) TotalPrice(sessionID string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart(sessionID).TotalPrice()
}
