package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"tourly/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondData writes the success envelope around the given payload.
func respondData(c *fiber.Ctx, status int, data fiber.Map) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

// respondList is respondData plus the result count, for collection routes.
func respondList(c *fiber.Ctx, results int, data fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"results": results,
		"data":    data,
	})
}

// respondNoContent is the delete response; no body at all.
func respondNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// badBody converts a body-parse failure into a client error.
func badBody(err error) *apperrors.AppError {
	return apperrors.BadRequest("Invalid request body: " + err.Error())
}

// validationError flattens validator.ValidationErrors into one 400 message.
func validationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.BadRequest(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
	}
	return apperrors.BadRequest("Validation failed: " + strings.Join(messages, "; "))
}

// queryParams snapshots the raw query string as a key-value map for the
// query builder.
func queryParams(c *fiber.Ctx) map[string]string {
	return c.Queries()
}

// parseLatLng splits a "lat,lng" path parameter.
func parseLatLng(raw string) (lat, lng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return 0, 0, apperrors.BadRequest("Please provide latitude and longitude in the format lat,lng")
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return 0, 0, apperrors.BadRequest("Please provide latitude and longitude in the format lat,lng")
	}
	return lat, lng, nil
}
