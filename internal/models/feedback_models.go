package models

import "time"

// FeedbackSubmission is posted by customers from the feedback form.
type FeedbackSubmission struct {
	CustomerName string `json:"customerName,omitempty"`
	Email        string `json:"email,omitempty"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Category     string `json:"category,omitempty" validate:"omitempty,oneof=food service ambience delivery other"`
	Message      string `json:"message" validate:"required"`
	OrderID      *int64 `json:"orderId,omitempty"`
}

type FeedbackItem struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customerName"`
	Email        *string   `json:"email,omitempty"`
	Rating       int       `json:"rating"`
	Category     string    `json:"category"`
	Message      string    `json:"message"`
	OrderID      *int64    `json:"orderId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type FeedbackFilter struct {
	Page     int
	Limit    int
	Rating   int
	Category string
}

type FeedbackPage struct {
	Feedback    []FeedbackItem `json:"feedback"`
	TotalCount  int            `json:"totalCount"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

type FeedbackStats struct {
	TotalFeedback      int            `json:"totalFeedback"`
	AverageRating      float64        `json:"averageRating"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
	ByCategory         map[string]int `json:"byCategory"`
}
