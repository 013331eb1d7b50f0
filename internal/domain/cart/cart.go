package cart

import (
	"github.com/example/turismo-portal/internal/domain/product"
)

// Line is one product-quantity pairing in a cart. The product fields are a
// snapshot taken when the line was first added; later catalog edits do not
// touch lines already in a cart.
type Line struct {
	Product  product.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart holds a buyer's pending selection. Lines keep insertion order and
// there is at most one line per product id. A line with quantity <= 0 never
// exists: UpdateQuantity turns such a request into a removal.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Restore builds a cart from previously persisted lines, dropping any line
// that violates the invariants (non-positive quantity, duplicate product).
func Restore(lines []Line) *Cart {
	c := &Cart{}
	for _, l := range lines {
		if l.Quantity <= 0 || l.Product.ID == "" {
			continue
		}
		c.Add(l.Product, l.Quantity)
	}
	return c
}

// Add puts qty units of p into the cart. If a line for p already exists its
// quantity is incremented, never duplicated. The returned flag tells the
// caller which branch happened so the UI can word its feedback; it is not
// part of the cart state.
func (c *Cart) Add(p product.Product, qty int) (merged bool) {
	if qty <= 0 {
		qty = 1
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == p.ID {
			c.lines[i].Quantity += qty
			return true
		}
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: qty})
	return false
}

// UpdateQuantity sets the quantity of the line for productID. A quantity of
// zero or less removes the line. An unknown product id is a no-op.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines[i].Quantity = qty
			return
		}
	}
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID string) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems returns the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	return Count(c.lines)
}

// TotalPrice returns the sum of unit price times quantity across all lines,
// using the snapshotted prices.
func (c *Cart) TotalPrice() float64 {
	return Total(c.lines)
}

// Count sums the quantities of a set of lines.
func Count(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// Total sums unit price times quantity over a set of lines.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}
