package cafeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cafe-frontdesk/internal/models"
	"cafe-frontdesk/internal/validation"
)

// SubmitFeedback posts customer feedback. Public endpoint.
func (c *Client) SubmitFeedback(ctx context.Context, fb models.FeedbackSubmission) error {
	if _, err := validation.Struct(fb); err != nil {
		return fmt.Errorf("cafeapi.SubmitFeedback: %w: %v", models.ErrValidation, err)
	}
	return c.do(ctx, "SubmitFeedback", call{method: http.MethodPost, path: "/feedback", body: fb}, nil)
}

func (c *Client) ListFeedback(ctx context.Context, f models.FeedbackFilter) (*models.FeedbackPage, error) {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Rating > 0 {
		q.Set("rating", strconv.Itoa(f.Rating))
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	var rec feedbackPageRecord
	if err := c.do(ctx, "ListFeedback", call{method: http.MethodGet, path: "/feedback", query: q, auth: true}, &rec); err != nil {
		return nil, err
	}
	page := &models.FeedbackPage{
		Feedback:    make([]models.FeedbackItem, 0, len(rec.Feedback)),
		TotalCount:  rec.TotalCount,
		TotalPages:  rec.TotalPages,
		CurrentPage: rec.CurrentPage,
	}
	for _, r := range rec.Feedback {
		page.Feedback = append(page.Feedback, r.toFeedback())
	}
	return page, nil
}

func (c *Client) FeedbackStats(ctx context.Context) (*models.FeedbackStats, error) {
	var rec feedbackStatsRecord
	if err := c.do(ctx, "FeedbackStats", call{method: http.MethodGet, path: "/feedback/stats", auth: true}, &rec); err != nil {
		return nil, err
	}
	return &models.FeedbackStats{
		TotalFeedback:      rec.TotalFeedback,
		AverageRating:      rec.AverageRating,
		RatingDistribution: rec.RatingDistribution,
		ByCategory:         rec.ByCategory,
	}, nil
}
