package handlers

import (
	"errors"
	"time"

	"tourly/internal/apperrors"
	"tourly/internal/middleware"
	"tourly/internal/models"
	"tourly/internal/repositories"
	"tourly/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	production  bool
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler. production toggles the Secure
// flag on the session cookie.
func NewAuthHandler(authService *services.AuthService, production bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		production:  production,
		validate:    validator.New(),
	}
}

// checkEmail rejects anything that does not look like an email address before
// it can reach the account store.
func (h *AuthHandler) checkEmail(email string) error {
	if err := h.validate.Var(email, "required,email"); err != nil {
		return apperrors.BadRequest("Please provide a valid email address")
	}
	return nil
}

// RegisterRoutes registers the authentication routes on the users group.
func (h *AuthHandler) RegisterRoutes(users fiber.Router) {
	users.Post("/signup", h.HandleSignup)
	users.Post("/login", h.HandleLogin)
	users.Get("/logout", h.HandleLogout)
	users.Post("/forgotPassword", h.HandleForgotPassword)
	users.Patch("/resetPassword/:token", h.HandleResetPassword)
	users.Patch("/updatePassword", middleware.Protect(h.authService), h.HandleUpdatePassword)
}

// sendToken issues the JWT for the user and delivers it both as the jwt
// HTTP-only cookie and in the response body.
func (h *AuthHandler) sendToken(c *fiber.Ctx, user *models.User, status int) error {
	token, err := h.authService.SignToken(user.ID)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(h.authService.TokenDuration()),
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   h.production,
	})

	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data":   fiber.Map{"user": user},
	})
}

// HandleSignup registers a new user and logs them in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var input services.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(err)
	}
	if input.Name == "" || input.Email == "" {
		return apperrors.BadRequest("Please provide name and email")
	}
	if err := h.checkEmail(input.Email); err != nil {
		return err
	}

	welcomeURL := c.BaseURL() + "/me"
	user, err := h.authService.Signup(input, welcomeURL)
	if err != nil {
		return err
	}

	return h.sendToken(c, user, fiber.StatusCreated)
}

// loginRequest is the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates a user and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.BadRequest("Please provide email and password")
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return err
	}

	return h.sendToken(c, user, fiber.StatusOK)
}

// HandleLogout overwrites the session cookie with a short-lived dummy value.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"status": "success"})
}

// forgotPasswordRequest is the request body for forgotPassword.
type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// HandleForgotPassword generates a reset token and emails it out-of-band.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}
	if req.Email == "" {
		return apperrors.BadRequest("Please provide your email address")
	}
	if err := h.checkEmail(req.Email); err != nil {
		return err
	}

	resetURLBase := c.BaseURL() + "/api/v1/users/resetPassword"
	if err := h.authService.ForgotPassword(req.Email, resetURLBase); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

// resetPasswordRequest is the request body for resetPassword.
type resetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// HandleResetPassword redeems a raw reset token from the URL and logs the
// user in with their new password.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}

	user, err := h.authService.ResetPassword(c.Params("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}

	return h.sendToken(c, user, fiber.StatusOK)
}

// updatePasswordRequest is the request body for updatePassword.
type updatePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

// HandleUpdatePassword is the self-service password change; it re-issues the
// session token since the old one goes stale immediately.
func (h *AuthHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req updatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(err)
	}

	err := h.authService.UpdatePassword(user, req.CurrentPassword, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No user found with that ID")
		}
		return err
	}

	return h.sendToken(c, user, fiber.StatusOK)
}
