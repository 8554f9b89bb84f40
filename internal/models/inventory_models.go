package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem is a purchasable stock item (beans, milk, cups...).
type InventoryItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name" validate:"required"`
	Category     string          `json:"category" validate:"required"`
	Unit         string          `json:"unit" validate:"required"`
	UnitCost     decimal.Decimal `json:"unitCost"`
	CurrentStock float64         `json:"currentStock" validate:"gte=0"`
	MinimumStock float64         `json:"minimumStock" validate:"gte=0"`
}

// LowStock reports whether the item is at or below its minimum level.
func (i InventoryItem) LowStock() bool {
	return i.CurrentStock <= i.MinimumStock
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseOrdered   PurchaseStatus = "ordered"
	PurchaseReceived  PurchaseStatus = "received"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// InventoryOrder is a purchase order placed with a supplier.
type InventoryOrder struct {
	ID           int64                `json:"id"`
	SupplierName string               `json:"supplierName" validate:"required"`
	Status       PurchaseStatus       `json:"status" validate:"omitempty,oneof=pending ordered received cancelled"`
	OrderDate    time.Time            `json:"orderDate"`
	ExpectedDate *time.Time           `json:"expectedDate,omitempty"`
	Items        []InventoryOrderLine `json:"items" validate:"required,min=1,dive"`
	TotalCost    decimal.Decimal      `json:"totalCost"`
	Notes        *string              `json:"notes,omitempty"`
}

type InventoryOrderLine struct {
	ItemID    int64           `json:"itemId" validate:"gt=0"`
	ItemName  string          `json:"itemName"`
	Quantity  float64         `json:"quantity" validate:"gt=0"`
	Unit      string          `json:"unit"`
	UnitCost  decimal.Decimal `json:"unitCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

type InventoryOrderFilter struct {
	Page   int
	Limit  int
	Status PurchaseStatus
}

type InventoryOrderPage struct {
	Orders      []InventoryOrder `json:"orders"`
	TotalCount  int              `json:"totalCount"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// InventoryInsights is the backend's purchasing summary.
type InventoryInsights struct {
	TotalSpend      decimal.Decimal            `json:"totalSpend"`
	OrdersThisMonth int                        `json:"ordersThisMonth"`
	SpendByCategory map[string]decimal.Decimal `json:"spendByCategory"`
	TopSuppliers    []SupplierSpend            `json:"topSuppliers"`
	LowStockItems   []InventoryItem            `json:"lowStockItems"`
}

type SupplierSpend struct {
	SupplierName string          `json:"supplierName"`
	Orders       int             `json:"orders"`
	Spend        decimal.Decimal `json:"spend"`
}
