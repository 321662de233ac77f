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

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes on the users group. The "me"
// routes require authentication; the rest is admin only.
func (h *UserHandler) RegisterRoutes(users fiber.Router) {
	protect := middleware.Protect(h.authService)

	users.Get("/me", protect, h.HandleGetMe)
	users.Patch("/updateMe", protect, h.HandleUpdateMe)
	users.Delete("/deleteMe", protect, h.HandleDeleteMe)

	admin := users.Group("", protect, middleware.RestrictTo(models.RoleAdmin))
	admin.Get("/", h.HandleGetUsers)
	admin.Post("/", h.HandleCreateUser)
	admin.Get("/:id", h.HandleGetUser)
	admin.Patch("/:id", h.HandleUpdateUser)
	admin.Delete("/:id", h.HandleDeleteUser)
}

// HandleGetMe returns the authenticated user's own record.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	return respondData(c, fiber.StatusOK, fiber.Map{"user": middleware.CurrentUser(c)})
}

// HandleUpdateMe updates the allowed profile fields of the current user.
// Password fields are rejected here; that change has its own route.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var raw struct {
		services.UpdateMeInput
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.BodyParser(&raw); err != nil {
		return badBody(err)
	}
	if raw.Password != "" || raw.PasswordConfirm != "" {
		return apperrors.BadRequest("This route is not for password updates. Please use /updatePassword")
	}
	if raw.Email != "" {
		if err := h.validate.Var(raw.Email, "email"); err != nil {
			return apperrors.BadRequest("Please provide a valid email address")
		}
	}

	user, err := h.userService.UpdateMe(middleware.CurrentUser(c), raw.UpdateMeInput)
	if err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"user": user})
}

// HandleDeleteMe soft-deletes the current user.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	if err := h.userService.DeactivateMe(middleware.CurrentUser(c).ID); err != nil {
		return err
	}
	return respondNoContent(c)
}

// HandleGetUsers lists users through the query builder (admin).
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers(queryParams(c))
	if err != nil {
		return err
	}
	return respondList(c, len(users), fiber.Map{"users": users})
}

// HandleCreateUser exists for route symmetry only; accounts are created via
// signup so the password flow always applies.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	return apperrors.Internal("This route is not defined! Please use /signup instead")
}

// HandleGetUser returns a single user by ID (admin).
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No user found with that ID")
		}
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"user": user})
}

// HandleUpdateUser partially updates a user record (admin). The stored
// record is fetched first so absent body fields keep their values.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No user found with that ID")
		}
		return err
	}

	id := user.ID
	if err := c.BodyParser(user); err != nil {
		return badBody(err)
	}
	user.ID = id // the identifier in the URL wins

	if err := h.validate.Struct(user); err != nil {
		return validationError(err)
	}
	if err := h.userService.UpdateUser(user); err != nil {
		return err
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"user": user})
}

// HandleDeleteUser deletes a user (admin).
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userService.DeleteUser(c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("No user found with that ID")
		}
		return err
	}
	return respondNoContent(c)
}
