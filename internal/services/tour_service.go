package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"tourly/internal/apperrors"
	"tourly/internal/models"
	"tourly/internal/repositories"

	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
)

// statsMinRating filters the global stats to well-rated tours, matching the
// report's historical behavior.
const statsMinRating = 4.5

// reportCacheTTL bounds how stale the cached aggregation reports may get.
const reportCacheTTL = 10 * time.Minute

// TourService handles business logic related to tours, including the fixed
// aggregation reports.
type TourService struct {
	repo  repositories.TourRepository
	cache *redis.Client // optional report cache, may be nil
}

// NewTourService creates a new TourService.
func NewTourService(repo repositories.TourRepository, cache *redis.Client) *TourService {
	return &TourService{
		repo:  repo,
		cache: cache,
	}
}

// ListTours lists tours via the query builder. Secret tours never show up in
// listings.
func (s *TourService) ListTours(params map[string]string) ([]models.Tour, error) {
	return s.repo.Find(params, false)
}

// GetTour retrieves a single tour with related entities expanded.
func (s *TourService) GetTour(id string) (*models.Tour, error) {
	return s.repo.GetByID(id)
}

// GetTourBySlug retrieves a single tour by slug, for the rendered views.
func (s *TourService) GetTourBySlug(sl string) (*models.Tour, error) {
	return s.repo.GetBySlug(sl)
}

// CreateTour normalizes and persists a new tour.
func (s *TourService) CreateTour(tour *models.Tour) error {
	if err := s.normalize(tour); err != nil {
		return err
	}
	if err := s.repo.Create(tour); err != nil {
		if apperrors.IsDuplicate(err) {
			return apperrors.BadRequest("A tour with that name already exists")
		}
		return err
	}
	return nil
}

// UpdateTour re-applies the write-time rules and persists the tour.
func (s *TourService) UpdateTour(tour *models.Tour) error {
	if err := s.normalize(tour); err != nil {
		return err
	}
	return s.repo.Update(tour)
}

// DeleteTour deletes a tour by its ID.
func (s *TourService) DeleteTour(id string) error {
	return s.repo.Delete(id)
}

// normalize enforces the cross-field write rules: slug derived from the
// name, discount strictly below price, ratings average clamped and rounded
// to one decimal.
func (s *TourService) normalize(tour *models.Tour) error {
	if tour.PriceDiscount != 0 && tour.PriceDiscount >= tour.Price {
		return apperrors.BadRequest(
			fmt.Sprintf("Discount price (%.2f) should be below regular price", tour.PriceDiscount))
	}

	tour.Slug = slug.Make(tour.Name)

	if tour.RatingsAverage == 0 {
		tour.RatingsAverage = models.DefaultRatingsAverage
	}
	tour.RatingsAverage = roundRating(clampRating(tour.RatingsAverage))
	return nil
}

// Stats returns the global ratings/price aggregate, served from Redis when a
// fresh copy is cached. Cache entries expire by TTL only, so the report may
// trail tour and review writes by up to reportCacheTTL.
func (s *TourService) Stats(ctx context.Context) (*models.TourStats, error) {
	const key = "tourly:report:stats"

	var cached models.TourStats
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	stats, err := s.repo.Stats(statsMinRating)
	if err != nil {
		return nil, err
	}
	stats.AvgRating = roundRating(stats.AvgRating)

	s.cacheSet(ctx, key, stats)
	return stats, nil
}

// MonthlyPlan counts tour starts per month of the given year, busiest months
// first, at most twelve entries. Cached like Stats, with the same staleness
// bound.
func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]models.MonthPlan, error) {
	key := fmt.Sprintf("tourly:report:plan:%d", year)

	var cached []models.MonthPlan
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	starts, err := s.repo.StartsInYear(year)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int][]string)
	for _, start := range starts {
		month := int(start.StartsAt.Month())
		byMonth[month] = append(byMonth[month], start.Name)
	}

	plan := make([]models.MonthPlan, 0, len(byMonth))
	for month, names := range byMonth {
		plan = append(plan, models.MonthPlan{
			Month:         month,
			NumTourStarts: len(names),
			Tours:         names,
		})
	}
	sort.Slice(plan, func(i, j int) bool {
		if plan[i].NumTourStarts != plan[j].NumTourStarts {
			return plan[i].NumTourStarts > plan[j].NumTourStarts
		}
		return plan[i].Month < plan[j].Month
	})
	if len(plan) > 12 {
		plan = plan[:12]
	}

	s.cacheSet(ctx, key, plan)
	return plan, nil
}

// ToursWithin returns the non-secret tours whose start location lies inside
// the given radius around the center point. distance is in the given unit
// ("mi" or "km").
func (s *TourService) ToursWithin(distance, lat, lng float64, unit string) ([]models.Tour, error) {
	radiusKm, err := toKilometers(distance, unit)
	if err != nil {
		return nil, err
	}

	tours, err := s.repo.AllWithStartLocation(false)
	if err != nil {
		return nil, err
	}

	within := make([]models.Tour, 0)
	for _, tour := range tours {
		if haversineKm(lat, lng, tour.StartLat, tour.StartLng) <= radiusKm {
			within = append(within, tour)
		}
	}
	return within, nil
}

// Distances computes the distance from a point to every tour's start
// location, nearest first, scaled to the requested unit. As a pure proximity
// search it does not hide secret tours.
func (s *TourService) Distances(lat, lng float64, unit string) ([]models.TourDistance, error) {
	if unit != "mi" && unit != "km" {
		return nil, apperrors.BadRequest("Unit must be either mi or km")
	}

	tours, err := s.repo.AllWithStartLocation(true)
	if err != nil {
		return nil, err
	}

	distances := make([]models.TourDistance, 0, len(tours))
	for _, tour := range tours {
		d := haversineKm(lat, lng, tour.StartLat, tour.StartLng)
		if unit == "mi" {
			d *= milesPerKm
		}
		distances = append(distances, models.TourDistance{
			ID:       tour.ID,
			Name:     tour.Name,
			Distance: math.Round(d*1000) / 1000,
		})
	}
	sort.Slice(distances, func(i, j int) bool {
		return distances[i].Distance < distances[j].Distance
	})
	return distances, nil
}

func toKilometers(distance float64, unit string) (float64, error) {
	switch unit {
	case "km":
		return distance, nil
	case "mi":
		return distance * kmPerMile, nil
	default:
		return 0, apperrors.BadRequest("Unit must be either mi or km")
	}
}

func clampRating(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// cacheGet loads a cached report into dest; a miss or any cache error just
// means recompute.
func (s *TourService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Report cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Report cache decode failed for %s: %v", key, err)
		return false
	}
	return true
}

func (s *TourService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Report cache encode failed for %s: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, reportCacheTTL).Err(); err != nil {
		log.Printf("Report cache write failed for %s: %v", key, err)
	}
}
