package models

import "github.com/shopspring/decimal"

// DashboardStats backs the staff dashboard header cards.
type DashboardStats struct {
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	PendingOrders     int             `json:"pendingOrders"`
	TodayOrders       int             `json:"todayOrders"`
	TodayRevenue      decimal.Decimal `json:"todayRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type OrderStats struct {
	ByStatus        map[string]int  `json:"byStatus"`
	ByPaymentStatus map[string]int  `json:"byPaymentStatus"`
	PopularItems    []PopularItem   `json:"popularItems"`
	CancelledRate   decimal.Decimal `json:"cancelledRate"`
}

type PopularItem struct {
	ItemName string          `json:"itemName"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}
