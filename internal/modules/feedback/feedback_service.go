package feedback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"cafe-frontdesk/internal/export"
	"cafe-frontdesk/internal/logger"
	"cafe-frontdesk/internal/metrics"
	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"
)

// RepositoryInterface is the feedback slice of the backend API.
type RepositoryInterface interface {
	SubmitFeedback(ctx context.Context, fb models.FeedbackSubmission) error
	ListFeedback(ctx context.Context, f models.FeedbackFilter) (*models.FeedbackPage, error)
	FeedbackStats(ctx context.Context) (*models.FeedbackStats, error)
}

const DefaultPageSize = 20

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

// Submit sends a customer's feedback. Name and e-mail are optional; a given
// e-mail must be well formed.
func (s *Service) Submit(ctx context.Context, fb models.FeedbackSubmission) error {
	fb.CustomerName = strings.TrimSpace(fb.CustomerName)
	fb.Email = strings.TrimSpace(fb.Email)
	fb.Message = strings.TrimSpace(fb.Message)
	fb.Category = strings.TrimSpace(fb.Category)

	if err := validation.Email(fb.Email); err != nil {
		return fmt.Errorf("feedback.Submit: %w", err)
	}
	if fb.Message == "" {
		return fmt.Errorf("feedback.Submit: %w", &validation.FieldError{Field: "message", Message: "Please tell us about your experience"})
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return fmt.Errorf("feedback.Submit: %w", &validation.FieldError{Field: "rating", Message: "Please choose a rating from 1 to 5"})
	}
	if err := s.repo.SubmitFeedback(ctx, fb); err != nil {
		return fmt.Errorf("feedback.Submit: %w", err)
	}
	metrics.RecordWorkflowEvent("feedback", "submitted")
	s.log.Info("feedback_submit", "feedback received", slog.Int("rating", fb.Rating), slog.String("category", fb.Category))
	return nil
}

// Viewer is a staff member's feedback table. Export writes exactly the rows
// last loaded.
type Viewer struct {
	mu   sync.Mutex
	repo RepositoryInterface
	page models.FeedbackPage
	now  func() time.Time
}

func NewViewer(repo RepositoryInterface) *Viewer {
	return &Viewer{repo: repo, now: time.Now}
}

func (v *Viewer) Load(ctx context.Context, f models.FeedbackFilter) (*models.FeedbackPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	page, err := v.repo.ListFeedback(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("feedback.Load: %w", err)
	}
	v.mu.Lock()
	v.page = *page
	v.mu.Unlock()
	return page, nil
}

func (v *Viewer) Stats(ctx context.Context) (*models.FeedbackStats, error) {
	st, err := v.repo.FeedbackStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("feedback.Stats: %w", err)
	}
	return st, nil
}

// Rows returns the loaded feedback.
func (v *Viewer) Rows() []models.FeedbackItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.FeedbackItem, len(v.page.Feedback))
	copy(out, v.page.Feedback)
	return out
}

// Export writes the loaded rows and returns the download name.
func (v *Viewer) Export(w io.Writer, f export.Format) (string, error) {
	rows := table(v.Rows())
	if err := export.Write(w, f, rows, rows); err != nil {
		return "", fmt.Errorf("feedback.Export: %w", err)
	}
	return f.Filename("feedback", v.now()), nil
}

type table []models.FeedbackItem

func (t table) Header() []string {
	return []string{"id", "date", "customer", "email", "rating", "category", "order", "message"}
}

func (t table) Rows() [][]string {
	out := make([][]string, 0, len(t))
	for _, fb := range t {
		email, order := "", ""
		if fb.Email != nil {
			email = *fb.Email
		}
		if fb.OrderID != nil {
			order = strconv.FormatInt(*fb.OrderID, 10)
		}
		out = append(out, []string{
			strconv.FormatInt(fb.ID, 10),
			fb.CreatedAt.Format(time.RFC3339),
			export.Text(fb.CustomerName),
			export.Text(email),
			strconv.Itoa(fb.Rating),
			export.Text(fb.Category),
			order,
			export.Text(fb.Message),
		})
	}
	return out
}
