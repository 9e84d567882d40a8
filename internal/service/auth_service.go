package service

import (
	"context"
	"strings"
	"time"

	"dogpark/internal/models"
	"dogpark/internal/observability"
	"dogpark/internal/repository"
	"dogpark/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every failed login.
var ErrInvalidCredentials = models.NewUnauthorizedError("Invalid credentials")

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,password"`
	Username string `json:"username" validate:"required,username"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users       repository.UserRepository
	ownerOpenID string
	bcryptCost  int
	now         func() time.Time
}

func NewAuthService(users repository.UserRepository, ownerOpenID string) *AuthService {
	return &AuthService{
		users:       users,
		ownerOpenID: ownerOpenID,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// WithBcryptCost overrides the hashing cost.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

// OpenIDForEmail is the external identity assigned to email accounts.
func OpenIDForEmail(email string) string {
	return "email_" + email
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		observability.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		observability.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return models.NewConflictError("Email already registered")
	}
	existing, err = s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		observability.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return models.NewConflictError("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	openID := OpenIDForEmail(in.Email)
	role := models.RoleUser
	if s.ownerOpenID != "" && openID == s.ownerOpenID {
		role = models.RoleAdmin
	}
	email, username := in.Email, in.Username
	now := s.now()
	user := &models.User{
		OpenID:       openID,
		Email:        &email,
		Username:     &username,
		Name:         username,
		PasswordHash: string(hash),
		LoginMethod:  models.LoginMethodEmail,
		Role:         role,
		LastSignedIn: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	observability.AuthAttempts.WithLabelValues("register", "success").Inc()
	return nil
}

// Login verifies credentials and stamps lastSignedIn. Unknown email, a missing
// hash and a wrong password all fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		observability.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		observability.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchLastSignedIn(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastSignedIn = now
	observability.AuthAttempts.WithLabelValues("login", "success").Inc()
	return user, nil
}

// Me returns the user for a session, or nil when the account no longer exists.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
