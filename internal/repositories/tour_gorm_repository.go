package repositories

import (
	"errors"
	"fmt"
	"time"

	"tourly/internal/models"
	"tourly/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTourRepository is a GORM implementation of TourRepository.
type GORMTourRepository struct {
	db *gorm.DB
}

// NewGORMTourRepository creates a new instance of GORMTourRepository.
func NewGORMTourRepository(db *gorm.DB) *GORMTourRepository {
	return &GORMTourRepository{
		db: db,
	}
}

// Create creates a new tour together with its start dates and locations.
func (r *GORMTourRepository) Create(tour *models.Tour) error {
	if tour.ID == "" {
		tour.ID = uuid.New().String()
	}
	if err := r.db.Create(tour).Error; err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

// GetByID retrieves a single tour with its related entities expanded.
func (r *GORMTourRepository) GetByID(id string) (*models.Tour, error) {
	var tour models.Tour
	err := r.db.
		Preload("StartDates").
		Preload("Locations").
		Preload("Guides").
		Preload("Reviews").
		Preload("Reviews.User").
		First(&tour, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tour with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tour by ID %s: %w", id, err)
	}
	return &tour, nil
}

// GetBySlug retrieves a single tour by its slug, reviews expanded.
func (r *GORMTourRepository) GetBySlug(slug string) (*models.Tour, error) {
	var tour models.Tour
	err := r.db.
		Preload("Locations").
		Preload("Reviews").
		Preload("Reviews.User").
		First(&tour, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tour with slug %s: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tour by slug %s: %w", slug, err)
	}
	return &tour, nil
}

// Find lists tours through the query-string feature chain.
func (r *GORMTourRepository) Find(params map[string]string, includeSecret bool) ([]models.Tour, error) {
	base := r.db.Model(&models.Tour{})
	if !includeSecret {
		base = base.Where("secret = ?", false)
	}

	var tours []models.Tour
	q := query.New(base, params).
		Filter().
		Sort().
		LimitFields().
		Paginate().
		Query()
	if err := q.Find(&tours).Error; err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}

// Update persists all fields of an existing tour.
func (r *GORMTourRepository) Update(tour *models.Tour) error {
	res := r.db.Save(tour)
	if res.Error != nil {
		return fmt.Errorf("failed to update tour: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tour with ID %s: %w", tour.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a tour by its ID.
func (r *GORMTourRepository) Delete(id string) error {
	res := r.db.Delete(&models.Tour{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tour: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tour with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateRatings writes both aggregate fields in a single UPDATE.
func (r *GORMTourRepository) UpdateRatings(id string, average float64, quantity int) error {
	res := r.db.Model(&models.Tour{}).Where("id = ?", id).Updates(map[string]interface{}{
		"ratings_average":  average,
		"ratings_quantity": quantity,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update tour ratings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("tour with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Stats computes the global ratings/price aggregate with one portable query.
func (r *GORMTourRepository) Stats(minRating float64) (*models.TourStats, error) {
	var stats models.TourStats
	err := r.db.Model(&models.Tour{}).
		Select("COUNT(*) AS num_tours, "+
			"COALESCE(SUM(ratings_quantity), 0) AS num_ratings, "+
			"COALESCE(AVG(ratings_average), 0) AS avg_rating, "+
			"COALESCE(AVG(price), 0) AS avg_price, "+
			"COALESCE(MIN(price), 0) AS min_price, "+
			"COALESCE(MAX(price), 0) AS max_price").
		Where("secret = ?", false).
		Where("ratings_average >= ?", minRating).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute tour stats: %w", err)
	}
	return &stats, nil
}

// StartsInYear lists departures of non-secret tours within the given year.
func (r *GORMTourRepository) StartsInYear(year int) ([]TourStart, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	var starts []TourStart
	err := r.db.Model(&models.TourStartDate{}).
		Select("tours.name AS name, tour_start_dates.starts_at AS starts_at").
		Joins("JOIN tours ON tours.id = tour_start_dates.tour_id").
		Where("tours.secret = ?", false).
		Where("tour_start_dates.starts_at >= ? AND tour_start_dates.starts_at < ?", from, to).
		Scan(&starts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tour starts for %d: %w", year, err)
	}
	return starts, nil
}

// AllWithStartLocation returns tours that carry start coordinates.
func (r *GORMTourRepository) AllWithStartLocation(includeSecret bool) ([]models.Tour, error) {
	q := r.db.Where("start_lat != 0 OR start_lng != 0")
	if !includeSecret {
		q = q.Where("secret = ?", false)
	}

	var tours []models.Tour
	if err := q.Find(&tours).Error; err != nil {
		return nil, fmt.Errorf("failed to list tours with start location: %w", err)
	}
	return tours, nil
}
