package services_test

import (
	"context"
	"testing"
	"time"

	"tourly/internal/models"
	"tourly/internal/repositories"
	"tourly/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTourService_CreateNormalizes(t *testing.T) {
	mockTours := new(MockTourRepository)
	service := services.NewTourService(mockTours, nil)

	tour := &models.Tour{Name: "The Forest Hiker", Price: 497}
	mockTours.On("Create", tour).Return(nil).Once()

	require.NoError(t, service.CreateTour(tour))
	assert.Equal(t, "the-forest-hiker", tour.Slug)
	assert.Equal(t, models.DefaultRatingsAverage, tour.RatingsAverage)
	mockTours.AssertExpectations(t)
}

func TestTourService_CreateRejectsBadDiscount(t *testing.T) {
	mockTours := new(MockTourRepository)
	service := services.NewTourService(mockTours, nil)

	err := service.CreateTour(&models.Tour{Name: "The Sea Explorer", Price: 100, PriceDiscount: 150})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "should be below regular price")
	mockTours.AssertNotCalled(t, "Create")
}

func TestTourService_StatsRoundsAverage(t *testing.T) {
	mockTours := new(MockTourRepository)
	service := services.NewTourService(mockTours, nil)

	// The repository only sees well-rated tours; the service asks with the
	// 4.5 floor and rounds the mean to one decimal.
	mockTours.On("Stats", 4.5).Return(&models.TourStats{
		NumTours:   3,
		NumRatings: 60,
		AvgRating:  4.666666,
		AvgPrice:   500,
		MinPrice:   200,
		MaxPrice:   900,
	}, nil).Once()

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.7, stats.AvgRating)
	assert.Equal(t, 3, stats.NumTours)
	assert.Equal(t, 60, stats.NumRatings)
	mockTours.AssertExpectations(t)
}

func TestTourService_MonthlyPlan(t *testing.T) {
	mockTours := new(MockTourRepository)
	service := services.NewTourService(mockTours, nil)

	date := func(month time.Month) time.Time {
		return time.Date(2026, month, 15, 9, 0, 0, 0, time.UTC)
	}
	mockTours.On("StartsInYear", 2026).Return([]repositories.TourStart{
		{Name: "The Forest Hiker", StartsAt: date(time.July)},
		{Name: "The Sea Explorer", StartsAt: date(time.July)},
		{Name: "The Snow Adventurer", StartsAt: date(time.July)},
		{Name: "The Forest Hiker", StartsAt: date(time.April)},
		{Name: "The Sea Explorer", StartsAt: date(time.April)},
		{Name: "The City Wanderer", StartsAt: date(time.October)},
	}, nil).Once()

	plan, err := service.MonthlyPlan(context.Background(), 2026)
	require.NoError(t, err)
	require.Len(t, plan, 3)

	// Busiest month first.
	assert.Equal(t, 7, plan[0].Month)
	assert.Equal(t, 3, plan[0].NumTourStarts)
	assert.ElementsMatch(t,
		[]string{"The Forest Hiker", "The Sea Explorer", "The Snow Adventurer"},
		plan[0].Tours)
	assert.Equal(t, 4, plan[1].Month)
	assert.Equal(t, 10, plan[2].Month)
	mockTours.AssertExpectations(t)
}

func TestTourService_ToursWithin(t *testing.T) {
	mockTours := new(MockTourRepository)
	service := services.NewTourService(mockTours, nil)

	// Los Angeles, San Francisco and New York start points; searching 500 km
	// around Los Angeles must keep the two west-coast tours only.
	mockTours.On("AllWithStartLocation", false).Return([]models.Tour{
		{ID: "la", Name: "LA Tour", StartLat: 34.0522, StartLng: -118.2437},
		{ID: "sf", Name: "SF Tour", StartLat: 37.7749, StartLng: -122.4194},
		{ID: "ny", Name: "NY Tour", StartLat: 40.7128, StartLng: -74.0060},
	}, nil).Once()

	within, err := service.ToursWithin(560, 34.0522, -118.2437, "km")
	require.NoError(t, err)
	ids := make([]string, 0, len(within))
	for _, tour := range within {
		ids = append(ids, tour.ID)
	}
	assert.ElementsMatch(t, []string{"la", "sf"}, ids)
	mockTours.AssertExpectations(t)
}

func TestTourService_ToursWithinBadUnit(t *testing.T) {
	service := services.NewTourService(new(MockTourRepository), nil)

	_, err := service.ToursWithin(100, 34, -118, "furlongs")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mi or km")
}

func TestTourService_DistancesSortedNearestFirst(t *testing.T) {
	mockTours := new(MockTourRepository)
	service := services.NewTourService(mockTours, nil)

	mockTours.On("AllWithStartLocation", true).Return([]models.Tour{
		{ID: "ny", Name: "NY Tour", StartLat: 40.7128, StartLng: -74.0060},
		{ID: "la", Name: "LA Tour", StartLat: 34.0522, StartLng: -118.2437},
		{ID: "sf", Name: "SF Tour", StartLat: 37.7749, StartLng: -122.4194},
	}, nil).Once()

	distances, err := service.Distances(34.0522, -118.2437, "km")
	require.NoError(t, err)
	require.Len(t, distances, 3)
	assert.Equal(t, "la", distances[0].ID)
	assert.Zero(t, distances[0].Distance)
	assert.Equal(t, "sf", distances[1].ID)
	assert.Equal(t, "ny", distances[2].ID)
	// LA to SF is roughly 560 km by great circle.
	assert.InDelta(t, 560, distances[1].Distance, 15)
	mockTours.AssertExpectations(t)
}
