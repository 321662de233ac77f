package services

import (
	"fmt"
	"log"

	"tourly/internal/apperrors"
	"tourly/internal/models"
	"tourly/internal/repositories"
)

// ReviewService handles business logic related to reviews and keeps the
// tours' rating aggregates in sync.
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	tourRepo   repositories.TourRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repositories.ReviewRepository, tourRepo repositories.TourRepository) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		tourRepo:   tourRepo,
	}
}

// ListReviews lists reviews, optionally scoped to one tour (nested route).
func (s *ReviewService) ListReviews(params map[string]string, tourID string) ([]models.Review, error) {
	return s.reviewRepo.Find(params, tourID)
}

// GetReview retrieves a single review.
func (s *ReviewService) GetReview(id string) (*models.Review, error) {
	return s.reviewRepo.GetByID(id)
}

// CreateReview persists a review and recomputes the tour's rating aggregate.
func (s *ReviewService) CreateReview(review *models.Review) error {
	if _, err := s.tourRepo.GetByID(review.TourID); err != nil {
		return err
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if apperrors.IsDuplicate(err) {
			return apperrors.BadRequest("You have already reviewed this tour")
		}
		return err
	}
	s.recalcRatings(review.TourID)
	return nil
}

// UpdateReview persists changes to a review and recomputes the aggregate.
func (s *ReviewService) UpdateReview(review *models.Review) error {
	if err := s.reviewRepo.Update(review); err != nil {
		return err
	}
	s.recalcRatings(review.TourID)
	return nil
}

// DeleteReview removes a review and recomputes the aggregate.
func (s *ReviewService) DeleteReview(id string) error {
	review, err := s.reviewRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(id); err != nil {
		return err
	}
	s.recalcRatings(review.TourID)
	return nil
}

// recalcRatings scans the tour's stored reviews and writes the aggregate
// back onto the tour. Concurrent reviews of the same tour can interleave
// between the read and the write; the last recompute wins, which is the
// accepted consistency window here.
func (s *ReviewService) recalcRatings(tourID string) {
	summary, err := s.reviewRepo.Summarize(tourID)
	if err != nil {
		log.Printf("Failed to summarize reviews for tour %s: %v", tourID, err)
		return
	}

	average := models.DefaultRatingsAverage
	if summary.Count > 0 {
		average = roundRating(summary.Average)
	}

	if err := s.tourRepo.UpdateRatings(tourID, average, summary.Count); err != nil {
		log.Printf("Failed to update ratings for tour %s: %v", tourID, err)
	}
}

// Authorize reports whether the user may modify the review: authors manage
// their own reviews, admins manage any.
func (s *ReviewService) Authorize(review *models.Review, user *models.User) error {
	if user.Role == models.RoleAdmin || review.UserID == user.ID {
		return nil
	}
	return apperrors.Forbidden(fmt.Sprintf("You do not have permission to modify review %s", review.ID))
}
