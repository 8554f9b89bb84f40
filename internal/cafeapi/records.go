package cafeapi

import (
	"strings"
	"time"

	"cafe-frontdesk/internal/models"

	"github.com/shopspring/decimal"
)

// Backend records use snake_case; these mirror them and map onto the
// camelCase view models without recomputing anything.

type orderRecord struct {
	ID                    int64             `json:"id"`
	CustomerName          string            `json:"customer_name"`
	CustomerPhone         string            `json:"customer_phone"`
	CustomerEmail         *string           `json:"customer_email"`
	TotalAmount           decimal.Decimal   `json:"total_amount"`
	OrderStatus           string            `json:"order_status"`
	PaymentStatus         string            `json:"payment_status"`
	PaymentMethod         *string           `json:"payment_method"`
	OrderInstructions     *string           `json:"order_instructions"`
	DeliveryInstructions  *string           `json:"delivery_instructions"`
	OrderDate             time.Time         `json:"order_date"`
	EstimatedDeliveryTime *time.Time        `json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time        `json:"actual_delivery_time"`
	CancelledAt           *time.Time        `json:"cancelled_at"`
	CancellationReason    *string           `json:"cancellation_reason"`
	CancelledBy           *string           `json:"cancelled_by"`
	Items                 []orderItemRecord `json:"items"`
}

type orderItemRecord struct {
	ItemName            string          `json:"item_name"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions *string         `json:"special_instructions"`
	Subtotal            decimal.Decimal `json:"subtotal"`
}

func (r orderRecord) toOrder() models.Order {
	o := models.Order{
		ID:                    r.ID,
		CustomerName:          r.CustomerName,
		CustomerPhone:         r.CustomerPhone,
		CustomerEmail:         optional(r.CustomerEmail),
		TotalAmount:           r.TotalAmount,
		OrderStatus:           models.OrderStatus(r.OrderStatus),
		PaymentStatus:         models.PaymentStatus(r.PaymentStatus),
		OrderInstructions:     optional(r.OrderInstructions),
		DeliveryInstructions:  optional(r.DeliveryInstructions),
		OrderDate:             r.OrderDate,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		ActualDeliveryTime:    r.ActualDeliveryTime,
		CancelledAt:           r.CancelledAt,
		CancellationReason:    optional(r.CancellationReason),
		CancelledBy:           optional(r.CancelledBy),
		Items:                 make([]models.OrderItem, 0, len(r.Items)),
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = models.PaymentPending
	}
	if m := optional(r.PaymentMethod); m != nil {
		pm := models.PaymentMethod(*m)
		o.PaymentMethod = &pm
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, models.OrderItem{
			ItemName:            it.ItemName,
			Price:               it.Price,
			Quantity:            it.Quantity,
			SpecialInstructions: optional(it.SpecialInstructions),
			Subtotal:            it.Subtotal,
		})
	}
	return o
}

// optional drops blank values and the backend's "Not provided" placeholder.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, models.NotProvided) {
		return nil
	}
	return &v
}

func toOrders(recs []orderRecord) []models.Order {
	out := make([]models.Order, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toOrder())
	}
	return out
}

type pageMeta struct {
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
}

type orderPageRecord struct {
	Orders []orderRecord `json:"orders"`
	pageMeta
}

type feedbackRecord struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	Email        *string   `json:"email"`
	Rating       int       `json:"rating"`
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	OrderID      *int64    `json:"order_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r feedbackRecord) toFeedback() models.FeedbackItem {
	name := strings.TrimSpace(r.CustomerName)
	if name == "" {
		name = "Anonymous"
	}
	return models.FeedbackItem{
		ID:           r.ID,
		CustomerName: name,
		Email:        optional(r.Email),
		Rating:       r.Rating,
		Category:     r.Category,
		Message:      r.Message,
		OrderID:      r.OrderID,
		CreatedAt:    r.CreatedAt,
	}
}

type feedbackPageRecord struct {
	Feedback []feedbackRecord `json:"feedback"`
	pageMeta
}

type feedbackStatsRecord struct {
	TotalFeedback      int            `json:"total_feedback"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	ByCategory         map[string]int `json:"by_category"`
}

type inventoryItemRecord struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	CurrentStock float64         `json:"current_stock"`
	MinimumStock float64         `json:"minimum_stock"`
}

func (r inventoryItemRecord) toItem() models.InventoryItem {
	return models.InventoryItem{
		ID:           r.ID,
		Name:         r.Name,
		Category:     r.Category,
		Unit:         r.Unit,
		UnitCost:     r.UnitCost,
		CurrentStock: r.CurrentStock,
		MinimumStock: r.MinimumStock,
	}
}

type inventoryOrderRecord struct {
	ID           int64                     `json:"id"`
	SupplierName string                    `json:"supplier_name"`
	Status       string                    `json:"status"`
	OrderDate    time.Time                 `json:"order_date"`
	ExpectedDate *time.Time                `json:"expected_date"`
	Items        []inventoryOrderLineRecord `json:"items"`
	TotalCost    decimal.Decimal           `json:"total_cost"`
	Notes        *string                   `json:"notes"`
}

type inventoryOrderLineRecord struct {
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  float64         `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

func (r inventoryOrderRecord) toInventoryOrder() models.InventoryOrder {
	o := models.InventoryOrder{
		ID:           r.ID,
		SupplierName: r.SupplierName,
		Status:       models.PurchaseStatus(r.Status),
		OrderDate:    r.OrderDate,
		ExpectedDate: r.ExpectedDate,
		TotalCost:    r.TotalCost,
		Notes:        optional(r.Notes),
		Items:        make([]models.InventoryOrderLine, 0, len(r.Items)),
	}
	for _, l := range r.Items {
		o.Items = append(o.Items, models.InventoryOrderLine{
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			Quantity:  l.Quantity,
			Unit:      l.Unit,
			UnitCost:  l.UnitCost,
			TotalCost: l.TotalCost,
		})
	}
	return o
}

type inventoryOrderPageRecord struct {
	Orders []inventoryOrderRecord `json:"orders"`
	pageMeta
}

type inventoryInsightsRecord struct {
	TotalSpend      decimal.Decimal            `json:"total_spend"`
	OrdersThisMonth int                        `json:"orders_this_month"`
	SpendByCategory map[string]decimal.Decimal `json:"spend_by_category"`
	TopSuppliers    []struct {
		SupplierName string          `json:"supplier_name"`
		Orders       int             `json:"orders"`
		Spend        decimal.Decimal `json:"spend"`
	} `json:"top_suppliers"`
	LowStockItems []inventoryItemRecord `json:"low_stock_items"`
}

type dashboardRecord struct {
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	PendingOrders     int             `json:"pending_orders"`
	TodayOrders       int             `json:"today_orders"`
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type orderStatsRecord struct {
	ByStatus        map[string]int `json:"by_status"`
	ByPaymentStatus map[string]int `json:"by_payment_status"`
	PopularItems    []struct {
		ItemName string          `json:"item_name"`
		Quantity int             `json:"quantity"`
		Revenue  decimal.Decimal `json:"revenue"`
	} `json:"popular_items"`
	CancelledRate decimal.Decimal `json:"cancelled_rate"`
}
