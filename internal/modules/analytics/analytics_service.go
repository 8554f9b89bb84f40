package analytics

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"cafe-frontdesk/internal/export"
	"cafe-frontdesk/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// RepositoryInterface is the statistics slice of the backend API.
type RepositoryInterface interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	Revenue(ctx context.Context, period string) ([]models.RevenuePoint, error)
	OrderStats(ctx context.Context) (*models.OrderStats, error)
}

// Periods accepted by the revenue series.
var Periods = []string{"day", "week", "month", "year"}

const DefaultPeriod = "week"

var ErrUnknownPeriod = fmt.Errorf("%w: period must be day, week, month or year", models.ErrValidation)

type Overview struct {
	Period       string                `json:"period"`
	Dashboard    models.DashboardStats `json:"dashboard"`
	Revenue      []models.RevenuePoint `json:"revenue"`
	RevenueTotal decimal.Decimal       `json:"revenueTotal"`
	Orders       models.OrderStats     `json:"orders"`
	GeneratedAt  time.Time             `json:"generatedAt"`
}

// Service keeps the last overview a staff member loaded so exports match
// the screen.
type Service struct {
	repo RepositoryInterface
	now  func() time.Time

	mu   sync.Mutex
	last *Overview
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo, now: time.Now}
}

func validPeriod(p string) bool {
	for _, v := range Periods {
		if v == p {
			return true
		}
	}
	return false
}

// Overview loads the dashboard, revenue series and order stats in parallel.
// Any failure fails the whole overview.
func (s *Service) Overview(ctx context.Context, period string) (*Overview, error) {
	if period == "" {
		period = DefaultPeriod
	}
	if !validPeriod(period) {
		return nil, ErrUnknownPeriod
	}

	var (
		dash   *models.DashboardStats
		series []models.RevenuePoint
		orders *models.OrderStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash, err = s.repo.DashboardStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		series, err = s.repo.Revenue(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.repo.OrderStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analytics.Overview: %w", err)
	}

	total := decimal.Zero
	for _, p := range series {
		total = total.Add(p.Revenue)
	}
	ov := &Overview{
		Period:       period,
		Dashboard:    *dash,
		Revenue:      series,
		RevenueTotal: total,
		Orders:       *orders,
		GeneratedAt:  s.now(),
	}
	s.mu.Lock()
	s.last = ov
	s.mu.Unlock()
	return ov, nil
}

// Export writes the revenue series of the last loaded overview. JSON carries
// the whole overview.
func (s *Service) Export(w io.Writer, f export.Format) (string, error) {
	s.mu.Lock()
	ov := s.last
	s.mu.Unlock()
	if ov == nil {
		return "", fmt.Errorf("analytics.Export: %w: nothing loaded yet", models.ErrNotFound)
	}
	if err := export.Write(w, f, revenueTable(ov.Revenue), ov); err != nil {
		return "", fmt.Errorf("analytics.Export: %w", err)
	}
	return f.Filename("revenue-"+ov.Period, ov.GeneratedAt), nil
}

type revenueTable []models.RevenuePoint

func (t revenueTable) Header() []string { return []string{"date", "revenue", "orders"} }

func (t revenueTable) Rows() [][]string {
	out := make([][]string, 0, len(t))
	for _, p := range t {
		out = append(out, []string{p.Date, p.Revenue.StringFixed(2), strconv.Itoa(p.Orders)})
	}
	return out
}
