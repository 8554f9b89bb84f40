package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the kitchen-facing lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled,
}

// Terminal reports whether no further transitions are offered for s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodCard   PaymentMethod = "card"
	MethodUPI    PaymentMethod = "upi"
	MethodOnline PaymentMethod = "online"
)

// NotProvided is sent for blank phone/email fields; the backend expects both
// to be non-null.
const NotProvided = "Not provided"

// Order is the client view of a placed order. TotalAmount mirrors the backend
// value and is never recomputed here.
type Order struct {
	ID                    int64           `json:"id"`
	CustomerName          string          `json:"customerName"`
	CustomerPhone         string          `json:"customerPhone"`
	CustomerEmail         *string         `json:"customerEmail,omitempty"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	OrderStatus           OrderStatus     `json:"orderStatus"`
	PaymentStatus         PaymentStatus   `json:"paymentStatus"`
	PaymentMethod         *PaymentMethod  `json:"paymentMethod,omitempty"`
	OrderInstructions     *string         `json:"orderInstructions,omitempty"`
	DeliveryInstructions  *string         `json:"deliveryInstructions,omitempty"`
	OrderDate             time.Time       `json:"orderDate"`
	EstimatedDeliveryTime *time.Time      `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time      `json:"actualDeliveryTime,omitempty"`
	CancelledAt           *time.Time      `json:"cancelledAt,omitempty"`
	CancellationReason    *string         `json:"cancellationReason,omitempty"`
	CancelledBy           *string         `json:"cancelledBy,omitempty"`
	Items                 []OrderItem     `json:"items"`
}

// OrderItem is one purchased line of an Order.
type OrderItem struct {
	ItemName            string          `json:"itemName"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions *string         `json:"specialInstructions,omitempty"`
	Subtotal            decimal.Decimal `json:"subtotal"`
}

// OrderSubmission is the outbound create-order payload.
type OrderSubmission struct {
	CustomerName      string                `json:"customerName" validate:"required,min=2"`
	CustomerPhone     string                `json:"customerPhone" validate:"required"`
	CustomerEmail     string                `json:"customerEmail" validate:"required"`
	Items             []OrderSubmissionItem `json:"items" validate:"required,min=1,dive"`
	OrderInstructions string                `json:"orderInstructions,omitempty"`
}

type OrderSubmissionItem struct {
	MenuItemID          int64  `json:"menuItemId" validate:"gt=0"`
	Quantity            int    `json:"quantity" validate:"gte=1"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// OrderListParams parameterizes GET /orders.
type OrderListParams struct {
	Page             int
	Limit            int
	Status           OrderStatus
	PaymentStatus    PaymentStatus
	Phone            string
	SortBy           string
	Order            string
	IncludeCancelled bool
}

// OrderPage is one server page of orders.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	TotalCount  int     `json:"totalCount"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
}

type StatusUpdateRequest struct {
	Status    OrderStatus `json:"status" validate:"required,oneof=pending confirmed preparing ready delivered cancelled"`
	ChangedBy string      `json:"changedBy" validate:"required"`
	Notes     string      `json:"notes,omitempty"`
}

type PaymentUpdateRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"required,oneof=pending paid failed refunded"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty" validate:"omitempty,oneof=cash card upi online"`
	Notes         string        `json:"notes,omitempty"`
}

type CancelRequest struct {
	Reason      string `json:"reason" validate:"required"`
	CancelledBy string `json:"cancelledBy,omitempty"`
}
