package repositories

import "tourly/internal/models"

// UserRepository defines the interface for user data access. All lookups
// exclude deactivated (soft-deleted) users.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetByResetTokenHash(hash string) (*models.User, error)
	Find(params map[string]string) ([]models.User, error)
	Update(user *models.User) error
	Deactivate(id string) error
	Delete(id string) error
}
