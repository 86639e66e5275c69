package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Elmamis69/ticket-master-api/internal/auth"
	"github.com/Elmamis69/ticket-master-api/internal/config"
	"github.com/Elmamis69/ticket-master-api/internal/domain"
	"github.com/Elmamis69/ticket-master-api/internal/repository"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

const minPasswordLength = 8

// AuthService coordinates registration, login and token resolution.
type AuthService struct {
	users              repository.UserRepository
	tokenMgr           *auth.TokenManager
	bcryptCost         int
	allowRoleSelection bool
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// RegisterInput carries a signup request. Role is optional.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
	Role     *string
}

// LoginResult is a successful authentication.
type LoginResult struct {
	User        *domain.User
	AccessToken string
	ExpiresAt   time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:              deps.UserRepo,
		tokenMgr:           auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost:         cfg.Auth.BcryptCost,
		allowRoleSelection: cfg.Auth.AllowRoleSelection,
	}
}

// Register creates a new active account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)

	problems := fieldErrors{}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		problems["email"] = "must be a valid email address"
	}
	problems.checkLength("full_name", fullName, 1, 100)
	switch {
	case utf8.RuneCountInString(input.Password) < minPasswordLength:
		problems["password"] = "must be at least 8 characters"
	case len(input.Password) > auth.MaxPasswordBytes:
		problems["password"] = "must be at most 72 bytes"
	}
	role := domain.RoleUser
	if input.Role != nil && s.allowRoleSelection {
		parsed, ok := domain.ParseRole(*input.Role)
		if !ok {
			problems["role"] = "must be one of admin, agent, user"
		}
		role = parsed
	}
	if err := problems.err(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("inactive user")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token, ExpiresAt: exp}, nil
}

// WhoAmI resolves a bearer token to the stored user. Role and active flag
// come from the store, not from the token.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("could not validate credentials")
	}
	user, err := s.users.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("could not validate credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewForbidden("inactive user")
	}
	return user, nil
}
