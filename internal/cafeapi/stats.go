package cafeapi

import (
	"context"
	"net/http"
	"net/url"

	"cafe-frontdesk/internal/models"
)

func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var rec dashboardRecord
	if err := c.do(ctx, "DashboardStats", call{method: http.MethodGet, path: "/stats/dashboard", auth: true}, &rec); err != nil {
		return nil, err
	}
	return &models.DashboardStats{
		TotalOrders:       rec.TotalOrders,
		TotalRevenue:      rec.TotalRevenue,
		PendingOrders:     rec.PendingOrders,
		TodayOrders:       rec.TodayOrders,
		TodayRevenue:      rec.TodayRevenue,
		AverageOrderValue: rec.AverageOrderValue,
	}, nil
}

// Revenue returns the revenue series for period (day, week, month, year).
func (c *Client) Revenue(ctx context.Context, period string) ([]models.RevenuePoint, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	var points []models.RevenuePoint
	if err := c.do(ctx, "Revenue", call{method: http.MethodGet, path: "/stats/revenue", query: q, auth: true}, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) OrderStats(ctx context.Context) (*models.OrderStats, error) {
	var rec orderStatsRecord
	if err := c.do(ctx, "OrderStats", call{method: http.MethodGet, path: "/orders/stats/orders", auth: true}, &rec); err != nil {
		return nil, err
	}
	out := &models.OrderStats{
		ByStatus:        rec.ByStatus,
		ByPaymentStatus: rec.ByPaymentStatus,
		CancelledRate:   rec.CancelledRate,
	}
	for _, p := range rec.PopularItems {
		out.PopularItems = append(out.PopularItems, models.PopularItem{
			ItemName: p.ItemName,
			Quantity: p.Quantity,
			Revenue:  p.Revenue,
		})
	}
	return out, nil
}
