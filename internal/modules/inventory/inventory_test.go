package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---
// fakeRepo
// ---
type fakeRepo struct {
	mu        sync.Mutex
	items     []models.InventoryItem
	created   []models.InventoryOrder
	deleted   []int64
	insights  models.InventoryInsights
	itemsErr  error
	deleteErr error
}

func (f *fakeRepo) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items, nil
}

func (f *fakeRepo) CreateInventoryItem(ctx context.Context, item models.InventoryItem) (*models.InventoryItem, error) {
	item.ID = 100
	return &item, nil
}

func (f *fakeRepo) UpdateInventoryItem(ctx context.Context, id int64, item models.InventoryItem) (*models.InventoryItem, error) {
	item.ID = id
	return &item, nil
}

func (f *fakeRepo) DeleteInventoryItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) ListInventoryOrders(ctx context.Context, flt models.InventoryOrderFilter) (*models.InventoryOrderPage, error) {
	return &models.InventoryOrderPage{CurrentPage: flt.Page}, nil
}

func (f *fakeRepo) CreateInventoryOrder(ctx context.Context, o models.InventoryOrder) (*models.InventoryOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, o)
	o.ID = 7
	return &o, nil
}

func (f *fakeRepo) UpdateInventoryOrder(ctx context.Context, id int64, o models.InventoryOrder) (*models.InventoryOrder, error) {
	o.ID = id
	return &o, nil
}

func (f *fakeRepo) DeleteInventoryOrder(ctx context.Context, id int64) error { return nil }

func (f *fakeRepo) InventoryInsights(ctx context.Context) (*models.InventoryInsights, error) {
	in := f.insights
	return &in, nil
}

type oneService struct{ s *Service }

func (o oneService) InventoryFor(echo.Context) (*Service, error) { return o.s, nil }

func stock(id int64, name string, current, minimum float64) models.InventoryItem {
	return models.InventoryItem{ID: id, Name: name, Category: "dairy", Unit: "l", CurrentStock: current, MinimumStock: minimum}
}

// ---
// service
// ---
func TestLowStockOrdersByShortfall(t *testing.T) {
	got := LowStock([]models.InventoryItem{
		stock(1, "milk", 4, 10),
		stock(2, "beans", 50, 10),
		stock(3, "cups", 0, 100),
		stock(4, "sugar", 5, 5),
	})
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 1, 4}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestCreateOrderPricesLines(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, "sam", nil)

	_, err := svc.CreateOrder(context.Background(), models.InventoryOrder{
		SupplierName: "  Dairy Co ",
		Items: []models.InventoryOrderLine{
			{ItemID: 1, Quantity: 2.5, UnitCost: decimal.RequireFromString("40")},
			{ItemID: 2, Quantity: 3, UnitCost: decimal.RequireFromString("0.35")},
			{ItemID: 3, Quantity: 1, UnitCost: decimal.RequireFromString("12.50"), TotalCost: decimal.RequireFromString("999")},
		},
	})
	require.NoError(t, err)
	sent := repo.created[0]
	assert.Equal(t, "Dairy Co", sent.SupplierName)
	assert.Equal(t, models.PurchasePending, sent.Status)
	assert.True(t, sent.Items[0].TotalCost.Equal(decimal.RequireFromString("100")))
	assert.True(t, sent.Items[1].TotalCost.Equal(decimal.RequireFromString("1.05")))
	assert.True(t, sent.Items[2].TotalCost.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, sent.TotalCost.Equal(decimal.RequireFromString("113.55")), sent.TotalCost.String())
}

func TestInsightsCombinesSummaryAndLowStock(t *testing.T) {
	repo := &fakeRepo{
		items:    []models.InventoryItem{stock(1, "milk", 1, 10), stock(2, "beans", 20, 5)},
		insights: models.InventoryInsights{OrdersThisMonth: 4, TotalSpend: decimal.RequireFromString("560")},
	}
	in, err := NewService(repo, "sam", nil).Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, in.OrdersThisMonth)
	require.Len(t, in.LowStock, 1)
	assert.Equal(t, "milk", in.LowStock[0].Name)
}

func TestInsightsFailsWhenEitherReadFails(t *testing.T) {
	repo := &fakeRepo{itemsErr: &cafeapi.TransportError{Op: "ListInventoryItems", Err: errors.New("reset")}}
	_, err := NewService(repo, "sam", nil).Insights(context.Background())
	var tErr *cafeapi.TransportError
	assert.ErrorAs(t, err, &tErr)
}

// ---
// handler
// ---
func TestHandlerItems(t *testing.T) {
	repo := &fakeRepo{items: []models.InventoryItem{stock(1, "milk", 1, 10)}}
	h := NewHandler(oneService{NewService(repo, "sam", nil)})
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.ListItems(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	var cat Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.Len(t, cat.LowStock, 1)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","category":"dairy","unit":"l"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	require.NoError(t, h.CreateItem(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Oat milk","category":"dairy","unit":"l","unitCost":"180"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	require.NoError(t, h.CreateItem(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.DeleteItem(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{9}, repo.deleted)
}

func TestHandlerDeleteMissingItemIs404(t *testing.T) {
	repo := &fakeRepo{deleteErr: &cafeapi.APIError{Op: "DeleteInventoryItem", StatusCode: http.StatusNotFound, Message: "Item not found"}}
	h := NewHandler(oneService{NewService(repo, "sam", nil)})
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.DeleteItem(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Item not found"}`, rec.Body.String())
}

func TestHandlerCreateOrderNeedsLines(t *testing.T) {
	h := NewHandler(oneService{NewService(&fakeRepo{}, "sam", nil)})
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"supplierName":"Beans Ltd","items":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateOrder(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
