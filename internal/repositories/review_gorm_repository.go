package repositories

import (
	"errors"
	"fmt"

	"tourly/internal/models"
	"tourly/internal/query"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{
		db: db,
	}
}

// Create creates a new review. The unique (tour_id, user_id) index rejects a
// second review by the same user on the same tour.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a single review with its author expanded.
func (r *GORMReviewRepository) GetByID(id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.Preload("User").First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, err)
	}
	return &review, nil
}

// Find lists reviews through the query-string feature chain.
func (r *GORMReviewRepository) Find(params map[string]string, tourID string) ([]models.Review, error) {
	base := r.db.Model(&models.Review{}).Preload("User")
	if tourID != "" {
		base = base.Where("tour_id = ?", tourID)
	}

	var reviews []models.Review
	q := query.New(base, params).
		Filter().
		Sort().
		LimitFields().
		Paginate().
		Query()
	if err := q.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Update persists all fields of an existing review.
func (r *GORMReviewRepository) Update(review *models.Review) error {
	res := r.db.Save(review)
	if res.Error != nil {
		return fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s: %w", review.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a review by its ID.
func (r *GORMReviewRepository) Delete(id string) error {
	res := r.db.Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Summarize computes count and mean rating over a tour's stored reviews in
// one query.
func (r *GORMReviewRepository) Summarize(tourID string) (*RatingSummary, error) {
	var summary RatingSummary
	err := r.db.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("tour_id = ?", tourID).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize reviews for tour %s: %w", tourID, err)
	}
	return &summary, nil
}
