package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cinedex/service/internal/config"
	"github.com/cinedex/service/internal/user"
)

const tokenTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials is returned when the username/password pair does not
// match a registered account.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service contains the business logic for password-based authentication.
type Service struct {
	userSvc *user.Service
	cfg     *config.Config
}

// NewService creates a new auth Service.
func NewService(userSvc *user.Service, cfg *config.Config) *Service {
	return &Service{userSvc: userSvc, cfg: cfg}
}

// Register creates a new user account with a hashed password and issues a
// JWT for the fresh account.
func (s *Service) Register(ctx context.Context, username, email, password string, birthday *time.Time) (string, *user.User, error) {
	hash, err := user.HashPassword(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.userSvc.Create(ctx, username, email, hash, birthday)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(u.ID, u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Login verifies the credentials and issues a JWT on success.
func (s *Service) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.userSvc.GetByUsername(ctx, username)
	if err != nil {
		if s.userSvc.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}
	if !user.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(u.ID, u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// IssueToken creates a signed JWT for the given user.
func (s *Service) IssueToken(userID, username string) (string, error) {
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
