package orders

import (
	"context"

	"cafe-frontdesk/internal/models"
)

// RepositoryInterface is the slice of the backend API the order board uses.
// *cafeapi.Client implements it.
type RepositoryInterface interface {
	ListOrders(ctx context.Context, p models.OrderListParams) (*models.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, id int64, req models.StatusUpdateRequest) error
	UpdatePayment(ctx context.Context, id int64, req models.PaymentUpdateRequest) error
	CancelOrder(ctx context.Context, id int64, req models.CancelRequest) error
}
