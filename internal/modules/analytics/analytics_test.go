package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cafe-frontdesk/internal/cafeapi"
	"cafe-frontdesk/internal/export"
	"cafe-frontdesk/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	calls    atomic.Int32
	period   atomic.Value
	statsErr error
}

func (f *fakeStats) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	f.calls.Add(1)
	return &models.DashboardStats{TotalOrders: 12, TotalRevenue: decimal.RequireFromString("1450")}, nil
}

func (f *fakeStats) Revenue(ctx context.Context, period string) ([]models.RevenuePoint, error) {
	f.calls.Add(1)
	f.period.Store(period)
	return []models.RevenuePoint{
		{Date: "2026-03-01", Revenue: decimal.RequireFromString("250.5"), Orders: 3},
		{Date: "2026-03-02", Revenue: decimal.RequireFromString("99.5"), Orders: 1},
	}, nil
}

func (f *fakeStats) OrderStats(ctx context.Context) (*models.OrderStats, error) {
	f.calls.Add(1)
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.OrderStats{ByStatus: map[string]int{"pending": 2}}, nil
}

type oneService struct{ s *Service }

func (o oneService) AnalyticsFor(echo.Context) (*Service, error) { return o.s, nil }

func TestOverviewFetchesAllThree(t *testing.T) {
	repo := &fakeStats{}
	svc := NewService(repo)

	ov, err := svc.Overview(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), repo.calls.Load())
	assert.Equal(t, DefaultPeriod, repo.period.Load())
	assert.Equal(t, 12, ov.Dashboard.TotalOrders)
	assert.True(t, ov.RevenueTotal.Equal(decimal.RequireFromString("350")))
	assert.Equal(t, 2, ov.Orders.ByStatus["pending"])
}

func TestOverviewRejectsUnknownPeriod(t *testing.T) {
	repo := &fakeStats{}
	_, err := NewService(repo).Overview(context.Background(), "fortnight")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Zero(t, repo.calls.Load())
}

func TestOverviewFailsAsAWhole(t *testing.T) {
	repo := &fakeStats{statsErr: &cafeapi.APIError{StatusCode: 500, Message: "stats offline"}}
	svc := NewService(repo)
	_, err := svc.Overview(context.Background(), "month")
	var apiErr *cafeapi.APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = svc.Export(&bytes.Buffer{}, export.CSV)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExportRevenueCSV(t *testing.T) {
	svc := NewService(&fakeStats{})
	svc.now = func() time.Time { return time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC) }
	_, err := svc.Overview(context.Background(), "month")
	require.NoError(t, err)

	var buf bytes.Buffer
	name, err := svc.Export(&buf, export.CSV)
	require.NoError(t, err)
	assert.Equal(t, "revenue-month-2026-03-03.csv", name)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "revenue", "orders"},
		{"2026-03-01", "250.50", "3"},
		{"2026-03-02", "99.50", "1"},
	}, records)
}

func TestHandlerOverviewAndExport(t *testing.T) {
	h := NewHandler(oneService{NewService(&fakeStats{})})
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h.Export(e.NewContext(httptest.NewRequest(http.MethodGet, "/?format=csv", nil), rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, h.Overview(e.NewContext(httptest.NewRequest(http.MethodGet, "/?period=year", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"revenueTotal":"350"`)

	rec = httptest.NewRecorder()
	require.NoError(t, h.Overview(e.NewContext(httptest.NewRequest(http.MethodGet, "/?period=decade", nil), rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, h.Export(e.NewContext(httptest.NewRequest(http.MethodGet, "/?format=json", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "revenue-year-")
}
