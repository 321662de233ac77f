package handlers

import (
	"errors"
	"strconv"

	"tourly/internal/apperrors"
	"tourly/internal/middleware"
	"tourly/internal/models"
	"tourly/internal/repositories"
	"tourly/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TourHandler handles HTTP requests for tours and the tour reports.
type TourHandler struct {
	tourService *services.TourService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewTourHandler creates a new TourHandler.
func NewTourHandler(tourService *services.TourService, authService *services.AuthService) *TourHandler {
	return &TourHandler{
		tourService: tourService,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the tour routes on the tours group. The fixed
// report routes come before /:id so they are matched first.
func (h *TourHandler) RegisterRoutes(tours fiber.Router) {
	protect := middleware.Protect(h.authService)
	manage := middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide)

	tours.Get("/top-5-cheap", h.HandleTopTours)
	tours.Get("/tour-stats", h.HandleTourStats)
	tours.Get("/monthly-plan/:year",
		protect,
		middleware.RestrictTo(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide),
		h.HandleMonthlyPlan)
	tours.Get("/tours-within/:distance/center/:latlng/unit/:unit", h.HandleToursWithin)
	tours.Get("/distances/:latlng/unit/:unit", h.HandleDistances)

	tours.Get("/", h.HandleGetTours)
	tours.Post("/", protect, manage, h.HandleCreateTour)
	tours.Get("/:id", h.HandleGetTour)
	tours.Patch("/:id", protect, manage, h.HandleUpdateTour)
	tours.Delete("/:id", protect, manage, h.HandleDeleteTour)
}

// HandleGetTours lists tours through the query builder.
func (h *TourHandler) HandleGetTours(c *fiber.Ctx) error {
	tours, err := h.tourService.ListTours(queryParams(c))
	if err != nil {
		return err
	}
	return respondList(c, len(tours), fiber.Map{"tours": tours})
}

// HandleTopTours is the canned "top 5 cheap" listing: it pre-seeds the query
// parameters and reuses the normal list path.
func (h *TourHandler) HandleTopTours(c *fiber.Ctx) error {
	params := map[string]string{
		"limit":  "5",
		"sort":   "-ratings_average,price",
		"fields": "id,name,price,ratings_average,summary,difficulty",
	}
	tours, err := h.tourService.ListTours(params)
	if err != nil {
		return err
	}
	return respondList(c, len(tours), fiber.Map{"tours": tours})
}

// HandleGetTour returns a single tour with its related entities expanded.
func (h *TourHandler) HandleGetTour(c *fiber.Ctx) error {
	tour, err := h.tourService.GetTour(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No tour found with that ID")
		}
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"tour": tour})
}

// HandleCreateTour creates a new tour.
func (h *TourHandler) HandleCreateTour(c *fiber.Ctx) error {
	var tour models.Tour
	if err := c.BodyParser(&tour); err != nil {
		return badBody(err)
	}

	if err := h.validate.Struct(&tour); err != nil {
		return validationError(err)
	}
	if err := h.tourService.CreateTour(&tour); err != nil {
		return err
	}
	return respondData(c, fiber.StatusCreated, fiber.Map{"tour": &tour})
}

// HandleUpdateTour partially updates a tour; absent body fields keep their
// stored values, then all write-time rules run again.
func (h *TourHandler) HandleUpdateTour(c *fiber.Ctx) error {
	tour, err := h.tourService.GetTour(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No tour found with that ID")
		}
		return err
	}

	id := tour.ID
	if err := c.BodyParser(tour); err != nil {
		return badBody(err)
	}
	tour.ID = id

	if err := h.validate.Struct(tour); err != nil {
		return validationError(err)
	}
	if err := h.tourService.UpdateTour(tour); err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"tour": tour})
}

// HandleDeleteTour deletes a tour.
func (h *TourHandler) HandleDeleteTour(c *fiber.Ctx) error {
	if err := h.tourService.DeleteTour(c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No tour found with that ID")
		}
		return err
	}
	return respondNoContent(c)
}

// HandleTourStats returns the global ratings/price aggregate.
func (h *TourHandler) HandleTourStats(c *fiber.Ctx) error {
	stats, err := h.tourService.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"stats": stats})
}

// HandleMonthlyPlan returns the per-month tour start counts for a year.
func (h *TourHandler) HandleMonthlyPlan(c *fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return apperrors.BadRequest("Please provide a valid year")
	}

	plan, err := h.tourService.MonthlyPlan(c.UserContext(), year)
	if err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"plan": plan})
}

// HandleToursWithin lists the tours starting inside the given radius around
// a center point.
func (h *TourHandler) HandleToursWithin(c *fiber.Ctx) error {
	distance, err := strconv.ParseFloat(c.Params("distance"), 64)
	if err != nil {
		return apperrors.BadRequest("Please provide a valid distance")
	}
	lat, lng, err := parseLatLng(c.Params("latlng"))
	if err != nil {
		return err
	}

	tours, err := h.tourService.ToursWithin(distance, lat, lng, c.Params("unit"))
	if err != nil {
		return err
	}
	return respondList(c, len(tours), fiber.Map{"tours": tours})
}

// HandleDistances returns the distance from a point to every tour's start
// location, nearest first.
func (h *TourHandler) HandleDistances(c *fiber.Ctx) error {
	lat, lng, err := parseLatLng(c.Params("latlng"))
	if err != nil {
		return err
	}

	distances, err := h.tourService.Distances(lat, lng, c.Params("unit"))
	if err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"distances": distances})
}
