package repositories

import "tourly/internal/models"

// RatingSummary is the derived aggregate over a tour's stored reviews.
type RatingSummary struct {
	Count   int
	Average float64
}

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id string) (*models.Review, error)
	// Find lists reviews through the query-string feature chain, optionally
	// scoped to a single tour (nested route).
	Find(params map[string]string, tourID string) ([]models.Review, error)
	Update(review *models.Review) error
	Delete(id string) error

	// Summarize computes count and mean rating over a tour's reviews.
	Summarize(tourID string) (*RatingSummary, error)
}
