package repositories

import (
	"time"

	"tourly/internal/models"
)

// TourStart pairs a tour name with one of its departure dates; raw input to
// the monthly-plan report.
type TourStart struct {
	Name     string
	StartsAt time.Time
}

// TourRepository defines the interface for tour data access.
type TourRepository interface {
	Create(tour *models.Tour) error
	GetByID(id string) (*models.Tour, error)
	GetBySlug(slug string) (*models.Tour, error)
	// Find lists tours through the query-string feature chain. Secret tours
	// are excluded unless includeSecret is set.
	Find(params map[string]string, includeSecret bool) ([]models.Tour, error)
	Update(tour *models.Tour) error
	Delete(id string) error

	// UpdateRatings writes the derived rating aggregate back onto a tour.
	UpdateRatings(id string, average float64, quantity int) error

	// Stats computes the global ratings/price aggregate over non-secret
	// tours with ratings_average >= minRating.
	Stats(minRating float64) (*models.TourStats, error)

	// StartsInYear lists all departures of non-secret tours within a year.
	StartsInYear(year int) ([]TourStart, error)

	// AllWithStartLocation returns tours carrying start coordinates, for the
	// in-process geospatial reports.
	AllWithStartLocation(includeSecret bool) ([]models.Tour, error)
}
