package cart

import (
	"fmt"
	"strings"
	"sync"

	"cafe-frontdesk/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddRequest is a menu item being put in the cart.
type AddRequest struct {
	CatalogID           models.CatalogID `json:"catalogId" validate:"required"`
	Name                string           `json:"name" validate:"required"`
	Price               decimal.Decimal  `json:"price"`
	Image               string           `json:"image,omitempty"`
	Quantity            int              `json:"quantity" validate:"gte=1"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
}

// Cart holds one customer's lines. The checkout workflow only reads it and
// calls Clear; every other mutation comes from the customer.
type Cart struct {
	mu    sync.Mutex
	items []models.CartItem
}

func New() *Cart {
	return &Cart{}
}

// Add merges into an existing line with the same product and instructions,
// otherwise appends a new line.
func (c *Cart) Add(req AddRequest) (models.CartItem, error) {
	if req.Quantity < 1 {
		return models.CartItem{}, fmt.Errorf("cart.Add: %w: quantity must be at least 1", models.ErrValidation)
	}
	if req.CatalogID <= 0 {
		return models.CartItem{}, fmt.Errorf("cart.Add: %w: catalog id is required", models.ErrValidation)
	}
	if req.Price.IsNegative() {
		return models.CartItem{}, fmt.Errorf("cart.Add: %w: price must not be negative", models.ErrValidation)
	}
	instr := strings.TrimSpace(req.SpecialInstructions)

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		it := &c.items[i]
		if it.CatalogID == req.CatalogID && it.SpecialInstructions == instr {
			it.Quantity += req.Quantity
			return *it, nil
		}
	}
	item := models.CartItem{
		CatalogID:           req.CatalogID,
		LineID:              uuid.NewString(),
		Name:                strings.TrimSpace(req.Name),
		Price:               req.Price,
		Image:               req.Image,
		Quantity:            req.Quantity,
		SpecialInstructions: instr,
	}
	c.items = append(c.items, item)
	return item, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (c *Cart) UpdateQuantity(lineID string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(lineID)
	if idx < 0 {
		return models.ErrNotFound
	}
	if qty <= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return nil
	}
	c.items[idx].Quantity = qty
	return nil
}

func (c *Cart) Remove(lineID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(lineID)
	if idx < 0 {
		return models.ErrNotFound
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return nil
}

func (c *Cart) indexOf(lineID string) int {
	for i, it := range c.items {
		if it.LineID == lineID {
			return i
		}
	}
	return -1
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return
	}
	c.items = nil
}

// Snapshot is the JSON view of a cart.
type Snapshot struct {
	Items []models.CartItem `json:"items"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}

// Snapshot reads lines, total and unit count under one lock.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{Items: make([]models.CartItem, len(c.items)), Total: decimal.Zero}
	copy(snap.Items, c.items)
	for _, it := range c.items {
		snap.Total = snap.Total.Add(it.LineTotal())
		snap.Count += it.Quantity
	}
	return snap
}
