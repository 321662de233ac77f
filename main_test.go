package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"tourly/internal/apperrors"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	loadConfig()

	assert.Equal(t, ":8080", viper.GetString("APP_PORT"))
	assert.Equal(t, "development", viper.GetString("APP_ENV"))
	assert.Equal(t, 24, viper.GetInt("JWT_EXPIRES_HOURS"))
	assert.Empty(t, viper.GetString("REDIS_ADDR"))
}

func errorHandlerApp(production bool) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: newErrorHandler(production)})
	app.Get("/operational", func(c *fiber.Ctx) error {
		return apperrors.NotFound("No tour found with that ID")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return assert.AnError
	})
	return app
}

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestErrorHandlerOperational(t *testing.T) {
	app := errorHandlerApp(true)

	resp, err := app.Test(httptest.NewRequest("GET", "/operational", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "No tour found with that ID", body["message"])
}

func TestErrorHandlerFiberError(t *testing.T) {
	app := errorHandlerApp(true)

	resp, err := app.Test(httptest.NewRequest("GET", "/fiber", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "short and stout", body["message"])
}

func TestErrorHandlerHidesInternalsInProduction(t *testing.T) {
	app := errorHandlerApp(true)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went very wrong!", body["message"])
}

func TestErrorHandlerLeaksDetailInDevelopment(t *testing.T) {
	app := errorHandlerApp(false)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, assert.AnError.Error(), body["message"])
}
