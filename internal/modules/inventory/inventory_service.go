package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RepositoryInterface is the inventory slice of the backend API.
type RepositoryInterface interface {
	ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id int64, item models.InventoryItem) (*models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id int64) error
	ListInventoryOrders(ctx context.Context, f models.InventoryOrderFilter) (*models.InventoryOrderPage, error)
	CreateInventoryOrder(ctx context.Context, o models.InventoryOrder) (*models.InventoryOrder, error)
	UpdateInventoryOrder(ctx context.Context, id int64, o models.InventoryOrder) (*models.InventoryOrder, error)
	DeleteInventoryOrder(ctx context.Context, id int64) error
	InventoryInsights(ctx context.Context) (*models.InventoryInsights, error)
}

// Catalog is the stock list with the items that need reordering.
type Catalog struct {
	Items    []models.InventoryItem `json:"items"`
	LowStock []models.InventoryItem `json:"lowStock"`
}

// Insights is the backend purchasing summary with the low-stock list
// computed from the live item list.
type Insights struct {
	models.InventoryInsights
	LowStock []models.InventoryItem `json:"lowStock"`
}

type Service struct {
	repo  RepositoryInterface
	staff string
	log   *logger.Logger
}

func NewService(repo RepositoryInterface, staff string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, staff: staff, log: log}
}

// LowStock returns items at or below their minimum, worst shortfall first.
func LowStock(items []models.InventoryItem) []models.InventoryItem {
	out := make([]models.InventoryItem, 0)
	for _, it := range items {
		if it.LowStock() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fillRatio(out[i]) < fillRatio(out[j])
	})
	return out
}

func fillRatio(it models.InventoryItem) float64 {
	if it.MinimumStock <= 0 {
		return 1
	}
	return it.CurrentStock / it.MinimumStock
}

func (s *Service) Catalog(ctx context.Context) (*Catalog, error) {
	items, err := s.repo.ListInventoryItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory.Catalog: %w", err)
	}
	return &Catalog{Items: items, LowStock: LowStock(items)}, nil
}

func (s *Service) CreateItem(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	created, err := s.repo.CreateInventoryItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("inventory.CreateItem: %w", err)
	}
	s.log.Info("inventory_item_create", "item created", slog.Int64("item_id", created.ID), slog.String("by", s.staff))
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, item models.InventoryItem) (*models.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Category = strings.TrimSpace(item.Category)
	updated, err := s.repo.UpdateInventoryItem(ctx, id, item)
	if err != nil {
		return nil, fmt.Errorf("inventory.UpdateItem: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInventoryItem(ctx, id); err != nil {
		return fmt.Errorf("inventory.DeleteItem: %w", err)
	}
	s.log.Info("inventory_item_delete", "item deleted", slog.Int64("item_id", id), slog.String("by", s.staff))
	return nil
}

func (s *Service) ListOrders(ctx context.Context, f models.InventoryOrderFilter) (*models.InventoryOrderPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	page, err := s.repo.ListInventoryOrders(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("inventory.ListOrders: %w", err)
	}
	return page, nil
}

// priced fills line totals and the order total from quantities and unit
// costs, so the backend never sees a stale figure typed by hand.
func priced(o models.InventoryOrder) models.InventoryOrder {
	o.SupplierName = strings.TrimSpace(o.SupplierName)
	if o.Status == "" {
		o.Status = models.PurchasePending
	}
	total := decimal.Zero
	lines := make([]models.InventoryOrderLine, len(o.Items))
	for i, l := range o.Items {
		l.TotalCost = l.UnitCost.Mul(decimal.NewFromFloat(l.Quantity)).Round(2)
		total = total.Add(l.TotalCost)
		lines[i] = l
	}
	o.Items = lines
	o.TotalCost = total
	return o
}

func (s *Service) CreateOrder(ctx context.Context, o models.InventoryOrder) (*models.InventoryOrder, error) {
	created, err := s.repo.CreateInventoryOrder(ctx, priced(o))
	if err != nil {
		return nil, fmt.Errorf("inventory.CreateOrder: %w", err)
	}
	s.log.Info("inventory_order_create", "purchase order created",
		slog.Int64("purchase_order_id", created.ID), slog.String("supplier", created.SupplierName), slog.String("by", s.staff))
	return created, nil
}

func (s *Service) UpdateOrder(ctx context.Context, id int64, o models.InventoryOrder) (*models.InventoryOrder, error) {
	updated, err := s.repo.UpdateInventoryOrder(ctx, id, priced(o))
	if err != nil {
		return nil, fmt.Errorf("inventory.UpdateOrder: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.repo.DeleteInventoryOrder(ctx, id); err != nil {
		return fmt.Errorf("inventory.DeleteOrder: %w", err)
	}
	return nil
}

// Insights fetches the backend summary and the item list together.
func (s *Service) Insights(ctx context.Context) (*Insights, error) {
	var (
		summary *models.InventoryInsights
		items   []models.InventoryItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.repo.InventoryInsights(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.ListInventoryItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("inventory.Insights: %w", err)
	}
	return &Insights{InventoryInsights: *summary, LowStock: LowStock(items)}, nil
}
