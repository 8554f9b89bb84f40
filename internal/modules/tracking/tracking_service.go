package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"
)

// RepositoryInterface is the public order lookup. *cafeapi.Client implements it.
type RepositoryInterface interface {
	OrdersByPhone(ctx context.Context, phone string, includeCancelled bool) ([]models.Order, error)
}

// Query is a customer's "where is my order" search.
type Query struct {
	Phone            string `json:"phone" query:"phone"`
	Name             string `json:"name" query:"name"`
	IncludeCancelled bool   `json:"includeCancelled" query:"includeCancelled"`
}

// Step is one point on the order timeline.
type Step struct {
	Status models.OrderStatus `json:"status"`
	Label  string             `json:"label"`
	Done   bool               `json:"done"`
}

// Progress is what the tracking page draws for an order.
type Progress struct {
	Current   int    `json:"current"`
	Cancelled bool   `json:"cancelled"`
	Steps     []Step `json:"steps"`
}

// TrackedOrder pairs an order with its timeline.
type TrackedOrder struct {
	models.Order
	Progress Progress `json:"progress"`
}

var timeline = []Step{
	{Status: models.StatusPending, Label: "Order placed"},
	{Status: models.StatusConfirmed, Label: "Confirmed"},
	{Status: models.StatusPreparing, Label: "Preparing"},
	{Status: models.StatusReady, Label: "Ready"},
	{Status: models.StatusDelivered, Label: "Delivered"},
}

// ProgressFor places status on the timeline. Cancelled orders have no
// current step.
func ProgressFor(status models.OrderStatus) Progress {
	p := Progress{Current: -1, Steps: make([]Step, len(timeline))}
	copy(p.Steps, timeline)
	if status == models.StatusCancelled {
		p.Cancelled = true
		return p
	}
	for i, s := range timeline {
		if s.Status == status {
			p.Current = i
		}
	}
	for i := range p.Steps {
		p.Steps[i].Done = i <= p.Current
	}
	return p
}

type Service struct {
	repo RepositoryInterface
	log  *logger.Logger
}

func NewService(repo RepositoryInterface, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, log: log}
}

// Search looks orders up by phone, optionally narrowed to names containing
// q.Name, newest first.
func (s *Service) Search(ctx context.Context, q Query) ([]TrackedOrder, error) {
	phone := strings.TrimSpace(q.Phone)
	if phone == "" {
		return nil, fmt.Errorf("tracking.Search: %w", &validation.FieldError{Field: validation.FieldPhone, Message: "Phone number is required"})
	}
	if err := validation.Phone(phone); err != nil {
		return nil, fmt.Errorf("tracking.Search: %w", err)
	}

	orders, err := s.repo.OrdersByPhone(ctx, phone, q.IncludeCancelled)
	if err != nil {
		s.log.Warn("tracking_search", "lookup failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("tracking.Search: %w", err)
	}

	name := strings.ToLower(strings.TrimSpace(q.Name))
	out := make([]TrackedOrder, 0, len(orders))
	for _, o := range orders {
		if name != "" && !strings.Contains(strings.ToLower(o.CustomerName), name) {
			continue
		}
		out = append(out, TrackedOrder{Order: o, Progress: ProgressFor(o.OrderStatus)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}
