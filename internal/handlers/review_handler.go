package handlers

import (
	"errors"

	"tourly/internal/apperrors"
	"tourly/internal/middleware"
	"tourly/internal/models"
	"tourly/internal/repositories"
	"tourly/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for reviews, both the flat /reviews
// routes and the ones nested under a tour.
type ReviewHandler struct {
	reviewService *services.ReviewService
	authService   *services.AuthService
	validate      *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService *services.ReviewService, authService *services.AuthService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		authService:   authService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the flat review routes. All of them require
// authentication.
func (h *ReviewHandler) RegisterRoutes(reviews fiber.Router) {
	protect := middleware.Protect(h.authService)

	reviews.Get("/", protect, h.HandleGetReviews)
	reviews.Post("/", protect, middleware.RestrictTo(models.RoleUser), h.HandleCreateReview)
	reviews.Get("/:id", protect, h.HandleGetReview)
	reviews.Patch("/:id", protect, middleware.RestrictTo(models.RoleUser, models.RoleAdmin), h.HandleUpdateReview)
	reviews.Delete("/:id", protect, middleware.RestrictTo(models.RoleUser, models.RoleAdmin), h.HandleDeleteReview)
}

// RegisterNestedRoutes mounts list/create under /tours/:tourId/reviews.
func (h *ReviewHandler) RegisterNestedRoutes(tours fiber.Router) {
	protect := middleware.Protect(h.authService)
	nested := tours.Group("/:tourId/reviews", protect)

	nested.Get("/", h.HandleGetReviews)
	nested.Post("/", middleware.RestrictTo(models.RoleUser), h.HandleCreateReview)
}

// HandleGetReviews lists reviews, scoped to a tour when reached through the
// nested route.
func (h *ReviewHandler) HandleGetReviews(c *fiber.Ctx) error {
	reviews, err := h.reviewService.ListReviews(queryParams(c), c.Params("tourId"))
	if err != nil {
		return err
	}
	return respondList(c, len(reviews), fiber.Map{"reviews": reviews})
}

// HandleGetReview returns a single review.
func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.reviewService.GetReview(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No review found with that ID")
		}
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"review": review})
}

// HandleCreateReview creates a review. Tour and author come from the route
// and the session, never from the body alone.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var review models.Review
	if err := c.BodyParser(&review); err != nil {
		return badBody(err)
	}

	if tourID := c.Params("tourId"); tourID != "" {
		review.TourID = tourID
	}
	review.UserID = middleware.CurrentUser(c).ID
	review.User = nil

	if err := h.validate.Struct(&review); err != nil {
		return validationError(err)
	}
	if err := h.reviewService.CreateReview(&review); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No tour found with that ID")
		}
		return err
	}
	return respondData(c, fiber.StatusCreated, fiber.Map{"review": &review})
}

// HandleUpdateReview updates a review's text/rating. Authors may edit their
// own reviews, admins any.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	review, err := h.reviewService.GetReview(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No review found with that ID")
		}
		return err
	}
	if err := h.reviewService.Authorize(review, middleware.CurrentUser(c)); err != nil {
		return err
	}

	// Only text and rating are editable; the (tour, user) pair is fixed.
	id, tourID, userID := review.ID, review.TourID, review.UserID
	if err := c.BodyParser(review); err != nil {
		return badBody(err)
	}
	review.ID, review.TourID, review.UserID = id, tourID, userID

	if err := h.validate.Struct(review); err != nil {
		return validationError(err)
	}
	if err := h.reviewService.UpdateReview(review); err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"review": review})
}

// HandleDeleteReview removes a review.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	review, err := h.reviewService.GetReview(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No review found with that ID")
		}
		return err
	}
	if err := h.reviewService.Authorize(review, middleware.CurrentUser(c)); err != nil {
		return err
	}

	if err := h.reviewService.DeleteReview(review.ID); err != nil {
		return err
	}
	return respondNoContent(c)
}
