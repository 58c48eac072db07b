package movies

import (
	"context"
	"errors"
)

// Service contains business logic for the catalogue and favorites.
type Service struct {
	repo *Repository
}

// NewService creates a new movies Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns all catalogue movies.
func (s *Service) List(ctx context.Context) ([]*Movie, error) {
	return s.repo.List(ctx)
}

// GetByTitle returns one movie by exact title.
func (s *Service) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	return s.repo.GetByTitle(ctx, title)
}

// GetGenre returns genre details by name.
func (s *Service) GetGenre(ctx context.Context, name string) (*Genre, error) {
	return s.repo.GetGenre(ctx, name)
}

// GetDirector returns director details by name.
func (s *Service) GetDirector(ctx context.Context, name string) (*Director, error) {
	return s.repo.GetDirector(ctx, name)
}

// AddFavorite puts a movie on the user's favorites list. Returns ErrNotFound
// when the movie is not in the catalogue.
func (s *Service) AddFavorite(ctx context.Context, userID, movieID string) error {
	exists, err := s.repo.MovieExists(ctx, movieID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.repo.AddFavorite(ctx, userID, movieID)
}

// RemoveFavorite drops a movie from the user's favorites list.
func (s *Service) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	return s.repo.RemoveFavorite(ctx, userID, movieID)
}

// ListFavoriteIDs returns the user's favorite movie IDs.
func (s *Service) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListFavoriteIDs(ctx, userID)
}

// IsNotFound returns true when the error indicates a missing catalogue entry.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
