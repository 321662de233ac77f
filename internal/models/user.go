package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold. Authorization middleware checks against these.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User represents an account on the platform.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Photo    string `json:"photo,omitempty" validate:"omitempty,max=255"`
	Role     string `json:"role" gorm:"type:varchar(20);default:user" validate:"omitempty,oneof=user guide lead-guide admin"`
	Password string `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized

	// Set one second in the past on every password change so tokens issued
	// before the change always fail the staleness check.
	PasswordChangedAt *time.Time `json:"-"`

	// Only the SHA-256 hash of a reset token is stored; the raw token goes
	// out by email and is never persisted.
	PasswordResetToken   string     `json:"-" gorm:"type:varchar(64)"`
	PasswordResetExpires *time.Time `json:"-"`

	// Active is the soft-delete flag. Inactive users are excluded from all
	// repository lookups but the row is retained.
	Active bool `json:"-" gorm:"default:true"`

	gorm.Model // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ChangedPasswordAfter reports whether the password was changed after the
// given token issued-at timestamp (seconds since epoch).
func (u *User) ChangedPasswordAfter(issuedAt int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt < u.PasswordChangedAt.Unix()
}
