package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arjun/vidtube-backend/internal/config"
	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = domain.ErrNotFound("user does not exist")
	ErrInvalidCredentials  = domain.ErrUnauthorized("invalid user credentials")
	ErrInvalidRefreshToken = domain.ErrUnauthorized("refresh token is expired or already used")
	ErrWrongOldPassword    = domain.ErrUnauthorized("old password is incorrect")
)

// AuthService owns the session lifecycle: login, logout, silent renewal and
// password change. A user has at most one live refresh token; every login or
// renewal overwrites it, which invalidates whatever was issued before.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenManager
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenManager, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// CookieOptions tells the transport layer how to write the token cookies.
// Cookie writing itself stays in the handler.
type CookieOptions struct {
	HTTPOnly   bool
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthResult struct {
	User          domain.User
	AccessToken   string
	RefreshToken  string
	CookieOptions CookieOptions
}

func (s *AuthService) cookieOptions() CookieOptions {
	return CookieOptions{
		HTTPOnly:   true,
		Secure:     s.cfg.Environment == "production",
		AccessTTL:  s.cfg.AccessTokenTTL,
		RefreshTTL: s.cfg.RefreshTokenTTL,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrValidation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, domain.ErrInternal("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Logout clears the persisted refresh token. Clearing an already-absent token
// is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return domain.ErrInternal("failed to clear session", err)
	}
	return nil
}

// Refresh exchanges a still-valid refresh token for a new token pair. The
// incoming token must verify against the refresh secret and textually equal
// the value persisted for the decoded user; on success the stored token is
// rotated so the just-used one is immediately inert.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, domain.ErrInternal("failed to look up user", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return domain.ErrValidation("new password is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return domain.ErrInternal("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("failed to hash password", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return domain.ErrInternal("failed to update password", err)
	}
	return nil
}

// GetUserByID resolves a live user record for the authentication gate.
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, domain.ErrInternal("failed to look up user", err)
	}
	return user, nil
}

// VerifyAccessToken exposes access-token verification to the gate.
func (s *AuthService) VerifyAccessToken(tokenStr string) (uuid.UUID, error) {
	return s.tokens.VerifyAccessToken(tokenStr)
}

// startSession issues a fresh pair and persists the refresh token, replacing
// any prior value. A persistence failure surfaces as an internal error rather
// than handing out tokens the store does not know about.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, domain.ErrInternal("failed to generate access token", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, domain.ErrInternal("failed to generate refresh token", err)
	}

	if err := s.userRepo.UpdateRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, domain.ErrInternal("failed to persist refresh token", err)
	}

	return &AuthResult{
		User:          user.Sanitized(),
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
		CookieOptions: s.cookieOptions(),
	}, nil
}
