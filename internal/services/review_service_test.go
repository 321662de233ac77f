package services_test

import (
	"testing"
	"time"

	"tourly/internal/models"
	"tourly/internal/repositories"
	"tourly/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(id string) (*models.Review, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) Find(params map[string]string, tourID string) ([]models.Review, error) {
	args := m.Called(params, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockReviewRepository) Summarize(tourID string) (*repositories.RatingSummary, error) {
	args := m.Called(tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.RatingSummary), args.Error(1)
}

// MockTourRepository is a mock implementation of repositories.TourRepository
type MockTourRepository struct {
	mock.Mock
}

func (m *MockTourRepository) Create(tour *models.Tour) error {
	args := m.Called(tour)
	return args.Error(0)
}

func (m *MockTourRepository) GetByID(id string) (*models.Tour, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

func (m *MockTourRepository) GetBySlug(slug string) (*models.Tour, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

func (m *MockTourRepository) Find(params map[string]string, includeSecret bool) ([]models.Tour, error) {
	args := m.Called(params, includeSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tour), args.Error(1)
}

func (m *MockTourRepository) Update(tour *models.Tour) error {
	args := m.Called(tour)
	return args.Error(0)
}

func (m *MockTourRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTourRepository) UpdateRatings(id string, average float64, quantity int) error {
	args := m.Called(id, average, quantity)
	return args.Error(0)
}

func (m *MockTourRepository) Stats(minRating float64) (*models.TourStats, error) {
	args := m.Called(minRating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TourStats), args.Error(1)
}

func (m *MockTourRepository) StartsInYear(year int) ([]repositories.TourStart, error) {
	args := m.Called(year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.TourStart), args.Error(1)
}

func (m *MockTourRepository) AllWithStartLocation(includeSecret bool) ([]models.Tour, error) {
	args := m.Called(includeSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tour), args.Error(1)
}

func TestReviewService_CreateRecomputesRatings(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTours := new(MockTourRepository)
	service := services.NewReviewService(mockReviews, mockTours)

	review := &models.Review{TourID: "tour-1", UserID: "user-1", Rating: 5, Review: "Great trip!"}

	mockTours.On("GetByID", "tour-1").Return(&models.Tour{ID: "tour-1"}, nil).Once()
	mockReviews.On("Create", review).Return(nil).Once()
	mockReviews.On("Summarize", "tour-1").
		Return(&repositories.RatingSummary{Count: 3, Average: 4.266666}, nil).Once()
	// The stored average is rounded to one decimal place.
	mockTours.On("UpdateRatings", "tour-1", 4.3, 3).Return(nil).Once()

	assert.NoError(t, service.CreateReview(review))
	mockReviews.AssertExpectations(t)
	mockTours.AssertExpectations(t)
}

func TestReviewService_CreateRejectsDuplicate(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTours := new(MockTourRepository)
	service := services.NewReviewService(mockReviews, mockTours)

	review := &models.Review{TourID: "tour-1", UserID: "user-1", Rating: 4}

	mockTours.On("GetByID", "tour-1").Return(&models.Tour{ID: "tour-1"}, nil).Once()
	mockReviews.On("Create", review).Return(gorm.ErrDuplicatedKey).Once()

	err := service.CreateReview(review)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already reviewed this tour")
	mockReviews.AssertExpectations(t)
	mockTours.AssertExpectations(t)
}

func TestReviewService_CreateUnknownTour(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTours := new(MockTourRepository)
	service := services.NewReviewService(mockReviews, mockTours)

	mockTours.On("GetByID", "ghost").Return(nil, repositories.ErrNotFound).Once()

	err := service.CreateReview(&models.Review{TourID: "ghost", UserID: "user-1", Rating: 4})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockReviews.AssertNotCalled(t, "Create")
	mockTours.AssertExpectations(t)
}

func TestReviewService_DeleteLastReviewRestoresDefault(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTours := new(MockTourRepository)
	service := services.NewReviewService(mockReviews, mockTours)

	review := &models.Review{ID: "rev-1", TourID: "tour-1", UserID: "user-1"}

	mockReviews.On("GetByID", "rev-1").Return(review, nil).Once()
	mockReviews.On("Delete", "rev-1").Return(nil).Once()
	mockReviews.On("Summarize", "tour-1").
		Return(&repositories.RatingSummary{Count: 0, Average: 0}, nil).Once()
	// With no reviews left the tour falls back to the seed average.
	mockTours.On("UpdateRatings", "tour-1", models.DefaultRatingsAverage, 0).Return(nil).Once()

	assert.NoError(t, service.DeleteReview("rev-1"))
	mockReviews.AssertExpectations(t)
	mockTours.AssertExpectations(t)
}

func TestReviewService_Authorize(t *testing.T) {
	service := services.NewReviewService(new(MockReviewRepository), new(MockTourRepository))

	review := &models.Review{ID: "rev-1", UserID: "user-1", CreatedAt: time.Now()}

	assert.NoError(t, service.Authorize(review, &models.User{ID: "user-1", Role: models.RoleUser}))
	assert.NoError(t, service.Authorize(review, &models.User{ID: "someone-else", Role: models.RoleAdmin}))

	err := service.Authorize(review, &models.User{ID: "someone-else", Role: models.RoleUser})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permission")
}
