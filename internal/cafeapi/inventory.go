package cafeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"
)

func (c *Client) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	var recs []inventoryItemRecord
	if err := c.do(ctx, "ListInventoryItems", call{method: http.MethodGet, path: "/inventory/items", auth: true}, &recs); err != nil {
		return nil, err
	}
	out := make([]models.InventoryItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toItem())
	}
	return out, nil
}

func (c *Client) CreateInventoryItem(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error) {
	if _, err := validation.Struct(item); err != nil {
		return nil, fmt.Errorf("cafeapi.CreateInventoryItem: %w: %v", models.ErrValidation, err)
	}
	var rec inventoryItemRecord
	if err := c.do(ctx, "CreateInventoryItem", call{method: http.MethodPost, path: "/inventory/items", body: item, auth: true}, &rec); err != nil {
		return nil, err
	}
	out := rec.toItem()
	return &out, nil
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id int64, item models.InventoryItem) (*models.InventoryItem, error) {
	if _, err := validation.Struct(item); err != nil {
		return nil, fmt.Errorf("cafeapi.UpdateInventoryItem: %w: %v", models.ErrValidation, err)
	}
	var rec inventoryItemRecord
	path := fmt.Sprintf("/inventory/items/%d", id)
	if err := c.do(ctx, "UpdateInventoryItem", call{method: http.MethodPut, path: path, body: item, auth: true}, &rec); err != nil {
		return nil, err
	}
	out := rec.toItem()
	return &out, nil
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/inventory/items/%d", id)
	return c.do(ctx, "DeleteInventoryItem", call{method: http.MethodDelete, path: path, auth: true}, nil)
}

func (c *Client) ListInventoryOrders(ctx context.Context, f models.InventoryOrderFilter) (*models.InventoryOrderPage, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	var rec inventoryOrderPageRecord
	if err := c.do(ctx, "ListInventoryOrders", call{method: http.MethodGet, path: "/inventory/orders", query: q, auth: true}, &rec); err != nil {
		return nil, err
	}
	page := &models.InventoryOrderPage{
		Orders:      make([]models.InventoryOrder, 0, len(rec.Orders)),
		TotalCount:  rec.TotalCount,
		TotalPages:  rec.TotalPages,
		CurrentPage: rec.CurrentPage,
	}
	for _, r := range rec.Orders {
		page.Orders = append(page.Orders, r.toInventoryOrder())
	}
	return page, nil
}

func (c *Client) CreateInventoryOrder(ctx context.Context, o models.InventoryOrder) (*models.InventoryOrder, error) {
	if _, err := validation.Struct(o); err != nil {
		return nil, fmt.Errorf("cafeapi.CreateInventoryOrder: %w: %v", models.ErrValidation, err)
	}
	var rec inventoryOrderRecord
	if err := c.do(ctx, "CreateInventoryOrder", call{method: http.MethodPost, path: "/inventory/orders", body: o, auth: true}, &rec); err != nil {
		return nil, err
	}
	out := rec.toInventoryOrder()
	return &out, nil
}

func (c *Client) UpdateInventoryOrder(ctx context.Context, id int64, o models.InventoryOrder) (*models.InventoryOrder, error) {
	if _, err := validation.Struct(o); err != nil {
		return nil, fmt.Errorf("cafeapi.UpdateInventoryOrder: %w: %v", models.ErrValidation, err)
	}
	var rec inventoryOrderRecord
	path := fmt.Sprintf("/inventory/orders/%d", id)
	if err := c.do(ctx, "UpdateInventoryOrder", call{method: http.MethodPut, path: path, body: o, auth: true}, &rec); err != nil {
		return nil, err
	}
	out := rec.toInventoryOrder()
	return &out, nil
}

func (c *Client) DeleteInventoryOrder(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/inventory/orders/%d", id)
	return c.do(ctx, "DeleteInventoryOrder", call{method: http.MethodDelete, path: path, auth: true}, nil)
}

func (c *Client) InventoryInsights(ctx context.Context) (*models.InventoryInsights, error) {
	var rec inventoryInsightsRecord
	if err := c.do(ctx, "InventoryInsights", call{method: http.MethodGet, path: "/inventory/orders/insights", auth: true}, &rec); err != nil {
		return nil, err
	}
	out := &models.InventoryInsights{
		TotalSpend:      rec.TotalSpend,
		OrdersThisMonth: rec.OrdersThisMonth,
		SpendByCategory: rec.SpendByCategory,
	}
	for _, s := range rec.TopSuppliers {
		out.TopSuppliers = append(out.TopSuppliers, models.SupplierSpend{
			SupplierName: s.SupplierName,
			Orders:       s.Orders,
			Spend:        s.Spend,
		})
	}
	for _, it := range rec.LowStockItems {
		out.LowStockItems = append(out.LowStockItems, it.toItem())
	}
	return out, nil
}
