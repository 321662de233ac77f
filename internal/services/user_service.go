package services

import (
	"strings"

	"tourly/internal/apperrors"
	"tourly/internal/models"
	"tourly/internal/repositories"
)

// UserService handles business logic for user management: the self-service
// "me" operations and the admin CRUD.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// ListUsers lists users via the query builder.
func (s *UserService) ListUsers(params map[string]string) ([]models.User, error) {
	return s.repo.Find(params)
}

// GetUser retrieves a single user.
func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.repo.GetByID(id)
}

// UpdateMeInput carries the only fields self-service updates may touch.
// Password changes go through the dedicated password route.
type UpdateMeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// UpdateMe applies the allowed profile fields to the current user.
func (s *UserService) UpdateMe(user *models.User, input UpdateMeInput) (*models.User, error) {
	if input.Name != "" {
		user.Name = strings.TrimSpace(input.Name)
	}
	if input.Email != "" {
		user.Email = normalizeEmail(input.Email)
	}
	if input.Photo != "" {
		user.Photo = input.Photo
	}

	if err := s.repo.Update(user); err != nil {
		if apperrors.IsDuplicate(err) {
			return nil, apperrors.BadRequest("A user with that email already exists")
		}
		return nil, err
	}
	return user, nil
}

// DeactivateMe soft-deletes the current user.
func (s *UserService) DeactivateMe(id string) error {
	return s.repo.Deactivate(id)
}

// UpdateUser is the admin update: persists the given record as-is.
func (s *UserService) UpdateUser(user *models.User) error {
	if err := s.repo.Update(user); err != nil {
		if apperrors.IsDuplicate(err) {
			return apperrors.BadRequest("A user with that email already exists")
		}
		return err
	}
	return nil
}

// DeleteUser deletes a user account (admin only).
func (s *UserService) DeleteUser(id string) error {
	return s.repo.Delete(id)
}
