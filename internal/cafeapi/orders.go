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

// CreateOrder places an order. Public endpoint.
func (c *Client) CreateOrder(ctx context.Context, sub models.OrderSubmission) (*models.Order, error) {
	if _, err := validation.Struct(sub); err != nil {
		return nil, fmt.Errorf("cafeapi.CreateOrder: %w: %v", models.ErrValidation, err)
	}
	var rec orderRecord
	err := c.do(ctx, "CreateOrder", call{method: http.MethodPost, path: "/orders", body: sub}, &rec)
	if err != nil {
		return nil, err
	}
	o := rec.toOrder()
	return &o, nil
}

// ListOrders fetches one page of orders for the staff board.
func (c *Client) ListOrders(ctx context.Context, p models.OrderListParams) (*models.OrderPage, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.PaymentStatus != "" {
		q.Set("paymentStatus", string(p.PaymentStatus))
	}
	if p.Phone != "" {
		q.Set("phone", p.Phone)
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.IncludeCancelled {
		q.Set("includeCancelled", "true")
	}

	var rec orderPageRecord
	err := c.do(ctx, "ListOrders", call{method: http.MethodGet, path: "/orders", query: q, auth: true}, &rec)
	if err != nil {
		return nil, err
	}
	return &models.OrderPage{
		Orders:      toOrders(rec.Orders),
		TotalCount:  rec.TotalCount,
		TotalPages:  rec.TotalPages,
		CurrentPage: rec.CurrentPage,
	}, nil
}

// OrdersByPhone looks up a customer's orders. Public endpoint.
func (c *Client) OrdersByPhone(ctx context.Context, phone string, includeCancelled bool) ([]models.Order, error) {
	q := url.Values{}
	q.Set("includeCancelled", strconv.FormatBool(includeCancelled))
	var recs []orderRecord
	path := "/orders/customer/" + url.PathEscape(phone)
	if err := c.do(ctx, "OrdersByPhone", call{method: http.MethodGet, path: path, query: q}, &recs); err != nil {
		return nil, err
	}
	return toOrders(recs), nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, req models.StatusUpdateRequest) error {
	if _, err := validation.Struct(req); err != nil {
		return fmt.Errorf("cafeapi.UpdateOrderStatus: %w: %v", models.ErrValidation, err)
	}
	path := fmt.Sprintf("/orders/%d/status", id)
	return c.do(ctx, "UpdateOrderStatus", call{method: http.MethodPut, path: path, body: req, auth: true}, nil)
}

func (c *Client) UpdatePayment(ctx context.Context, id int64, req models.PaymentUpdateRequest) error {
	if _, err := validation.Struct(req); err != nil {
		return fmt.Errorf("cafeapi.UpdatePayment: %w: %v", models.ErrValidation, err)
	}
	path := fmt.Sprintf("/orders/%d/payment", id)
	return c.do(ctx, "UpdatePayment", call{method: http.MethodPut, path: path, body: req, auth: true}, nil)
}

func (c *Client) CancelOrder(ctx context.Context, id int64, req models.CancelRequest) error {
	if _, err := validation.Struct(req); err != nil {
		return fmt.Errorf("cafeapi.CancelOrder: %w: %v", models.ErrValidation, err)
	}
	path := fmt.Sprintf("/orders/%d/cancel", id)
	return c.do(ctx, "CancelOrder", call{method: http.MethodPost, path: path, body: req, auth: true}, nil)
}
