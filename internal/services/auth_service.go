package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tourly/internal/apperrors"
	"tourly/internal/models"
	"tourly/internal/repositories"
	"tourly/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately above the library default.
const bcryptCost = 12

// resetTokenTTL bounds how long a password-reset token stays valid.
const resetTokenTTL = 10 * time.Minute

// EmailPublisher enqueues transactional email jobs. Satisfied by
// rabbitmq.Client; mocked in tests.
type EmailPublisher interface {
	PublishEmail(job rabbitmq.EmailJob) error
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	mail       EmailPublisher
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mail EmailPublisher, jwtSecret string, tokenDurat time.Duration) *AuthService {
	if tokenDurat <= 0 {
		tokenDurat = 24 * time.Hour
	}
	return &AuthService{
		userRepo:   userRepo,
		mail:       mail,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDurat,
	}
}

// SignupInput carries the only fields a signup may set; everything else
// (role in particular) gets its default.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Signup registers a new user, hashes their password and queues the welcome
// email. welcomeURL points the mail at the account page.
func (s *AuthService) Signup(input SignupInput, welcomeURL string) (*models.User, error) {
	if err := checkPasswordPair(input.Password, input.PasswordConfirm); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:   strings.TrimSpace(input.Name),
		Email:  normalizeEmail(input.Email),
		Role:   models.RoleUser,
		Active: true,
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.userRepo.Create(user); err != nil {
		if apperrors.IsDuplicate(err) {
			return nil, apperrors.BadRequest("A user with that email already exists")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	// The welcome mail is best effort; a broker hiccup must not undo the
	// signup.
	if s.mail != nil {
		job := rabbitmq.EmailJob{
			Kind: rabbitmq.EmailWelcome,
			To:   user.Email,
			Name: user.Name,
			URL:  welcomeURL,
		}
		if err := s.mail.PublishEmail(job); err != nil {
			log.Printf("Warning: failed to queue welcome email for %s: %v", user.Email, err)
		}
	}

	return user, nil
}

// Login authenticates by email and password. Failures are reported with a
// single generic message so the response never reveals whether the email
// exists.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		return nil, apperrors.Unauthorized("Incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized("Incorrect email or password")
	}

	return user, nil
}

// SignToken issues a signed, time-limited bearer token for the user.
func (s *AuthService) SignToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenDurat).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// TokenDuration reports how long issued tokens stay valid. Handlers use it
// for the cookie expiry.
func (s *AuthService) TokenDuration() time.Duration {
	return s.tokenDurat
}

// ValidateToken parses and validates a JWT, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid token. Please log in again")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.Unauthorized("Invalid token. Please log in again")
}

// UserFromToken runs the full verification chain: signature and expiry, user
// still exists (and is not soft-deleted), password unchanged since issuance.
func (s *AuthService) UserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, _ := claims["user_id"].(string)
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthorized("The user belonging to this token no longer exists")
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}

	if issuedAt, ok := claims["iat"].(float64); ok {
		if user.ChangedPasswordAfter(int64(issuedAt)) {
			return nil, apperrors.Unauthorized("User recently changed password! Please log in again")
		}
	}

	return user, nil
}

// ForgotPassword generates a reset token, persists only its hash with a
// 10-minute expiry and queues the reset email carrying the raw token. If the
// email cannot be queued the token fields are rolled back before the error
// surfaces, so no dangling valid token exists without a matching mail.
func (s *AuthService) ForgotPassword(email, resetURLBase string) error {
	user, err := s.userRepo.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("There is no user with that email address")
		}
		return fmt.Errorf("failed to look up user for password reset: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)

	expires := time.Now().Add(resetTokenTTL)
	user.PasswordResetToken = hashToken(rawToken)
	user.PasswordResetExpires = &expires
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	job := rabbitmq.EmailJob{
		Kind: rabbitmq.EmailPasswordReset,
		To:   user.Email,
		Name: user.Name,
		URL:  resetURLBase + "/" + rawToken,
	}

	var publishErr error
	if s.mail == nil {
		publishErr = fmt.Errorf("email transport is not configured")
	} else {
		publishErr = s.mail.PublishEmail(job)
	}
	if publishErr != nil {
		log.Printf("Failed to queue password reset email for %s: %v", user.Email, publishErr)
		s.clearResetToken(user)
		return apperrors.Internal("There was an error sending the email. Try again later!")
	}

	return nil
}

// ResetPassword redeems a raw reset token: hash it, match the stored hash,
// check expiry, then set the new password and invalidate the token fields.
func (s *AuthService) ResetPassword(rawToken, password, passwordConfirm string) (*models.User, error) {
	user, err := s.userRepo.GetByResetTokenHash(hashToken(rawToken))
	if err != nil {
		return nil, apperrors.BadRequest("Token is invalid or has expired")
	}

	if user.PasswordResetExpires == nil || time.Now().After(*user.PasswordResetExpires) {
		s.clearResetToken(user)
		return nil, apperrors.BadRequest("Token is invalid or has expired")
	}

	if err := checkPasswordPair(password, passwordConfirm); err != nil {
		return nil, err
	}

	if err := s.setPassword(user, password); err != nil {
		return nil, err
	}
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to save new password: %w", err)
	}

	return user, nil
}

// UpdatePassword is the self-service change for a logged-in user. The
// current password must verify and the new one must differ from it.
func (s *AuthService) UpdatePassword(user *models.User, current, newPassword, newPasswordConfirm string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperrors.Unauthorized("Your current password is wrong")
	}
	if current == newPassword {
		return apperrors.BadRequest("New password cannot be the same as the old password")
	}
	if err := checkPasswordPair(newPassword, newPasswordConfirm); err != nil {
		return err
	}

	if err := s.setPassword(user, newPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to save new password: %w", err)
	}
	return nil
}

// setPassword re-hashes and stamps the change one second in the past so
// tokens issued before this moment always read as stale.
func (s *AuthService) setPassword(user *models.User, plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	changedAt := time.Now().Add(-time.Second)
	user.PasswordChangedAt = &changedAt
	return nil
}

// clearResetToken best-effort rollback of the reset token fields.
func (s *AuthService) clearResetToken(user *models.User) {
	user.PasswordResetToken = ""
	user.PasswordResetExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		log.Printf("Failed to clear reset token for %s: %v", user.Email, err)
	}
}

func checkPasswordPair(password, confirm string) error {
	if len(password) < 8 {
		return apperrors.BadRequest("Password must be at least 8 characters long")
	}
	if password != confirm {
		return apperrors.BadRequest("Passwords are not the same")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
