package user

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service contains business logic for user management.
type Service struct {
	repo *Repository
}

// NewService creates a new user Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new user account. passwordHash must already be hashed.
func (s *Service) Create(ctx context.Context, username, email, passwordHash string, birthday *time.Time) (*User, error) {
	u, err := s.repo.Create(ctx, username, email, passwordHash, birthday)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetByID returns a user by their UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername returns a user by their username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Update applies profile edits for the given user.
func (s *Service) Update(ctx context.Context, id, email, passwordHash string, birthday *time.Time) (*User, error) {
	return s.repo.Update(ctx, id, email, passwordHash, birthday)
}

// Delete removes the user account.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
