package handlers

import (
	"errors"

	"tourly/internal/apperrors"
	"tourly/internal/middleware"
	"tourly/internal/repositories"
	"tourly/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ViewHandler serves the site-facing routes. They render the same data the
// API exposes but run behind the soft login check so a broken session never
// blocks browsing.
type ViewHandler struct {
	tourService *services.TourService
	authService *services.AuthService
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(tourService *services.TourService, authService *services.AuthService) *ViewHandler {
	return &ViewHandler{
		tourService: tourService,
		authService: authService,
	}
}

// RegisterRoutes registers the view routes at the application root.
func (h *ViewHandler) RegisterRoutes(root fiber.Router) {
	soft := middleware.IsLoggedIn(h.authService)

	root.Get("/", soft, h.HandleOverview)
	root.Get("/tour/:slug", soft, h.HandleTour)
}

// HandleOverview is the landing page: all public tours plus the logged-in
// user, if any.
func (h *ViewHandler) HandleOverview(c *fiber.Ctx) error {
	tours, err := h.tourService.ListTours(queryParams(c))
	if err != nil {
		return err
	}

	data := fiber.Map{"tours": tours}
	if user := middleware.CurrentUser(c); user != nil {
		data["user"] = user
	}
	return respondData(c, fiber.StatusOK, data)
}

// HandleTour is the tour detail page, looked up by slug.
func (h *ViewHandler) HandleTour(c *fiber.Ctx) error {
	tour, err := h.tourService.GetTourBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("There is no tour with that name")
		}
		return err
	}

	data := fiber.Map{"tour": tour}
	if user := middleware.CurrentUser(c); user != nil {
		data["user"] = user
	}
	return respondData(c, fiber.StatusOK, data)
}
