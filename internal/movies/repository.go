// Package movies manages the film catalogue and per-user favorites.
package movies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Movie represents one catalogue entry.
type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       Genre    `json:"genre"`
	Director    Director `json:"director"`
	ImageURL    string   `json:"imageUrl"`
	Featured    bool     `json:"featured"`
}

// Genre describes a movie's genre.
type Genre struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Director describes a movie's director.
type Director struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	BirthYear *int   `json:"birthYear,omitempty"`
}

// ErrNotFound is returned when no movie, genre, or director matches.
var ErrNotFound = errors.New("movie not found")

// Repository handles all catalogue database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const movieColumns = `id, title, description, genre_name, genre_description,
	director_name, director_bio, director_birth_year, image_url, featured`

func scanMovie(row pgx.Row) (*Movie, error) {
	m := &Movie{}
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Genre.Name, &m.Genre.Description,
		&m.Director.Name, &m.Director.Bio, &m.Director.BirthYear, &m.ImageURL, &m.Featured)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns all movies ordered by title.
func (r *Repository) List(ctx context.Context) ([]*Movie, error) {
	rows, err := r.db.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := []*Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// GetByTitle fetches one movie by its exact title.
func (r *Repository) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	m, err := scanMovie(r.db.QueryRow(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE title = $1`, title))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get movie by title: %w", err)
	}
	return m, err
}

// GetGenre fetches a genre by name from any movie carrying it.
func (r *Repository) GetGenre(ctx context.Context, name string) (*Genre, error) {
	g := &Genre{}
	err := r.db.QueryRow(ctx,
		`SELECT genre_name, genre_description FROM movies WHERE genre_name = $1 LIMIT 1`,
		name,
	).Scan(&g.Name, &g.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return g, nil
}

// GetDirector fetches a director by name from any movie carrying them.
func (r *Repository) GetDirector(ctx context.Context, name string) (*Director, error) {
	d := &Director{}
	err := r.db.QueryRow(ctx,
		`SELECT director_name, director_bio, director_birth_year FROM movies
		 WHERE director_name = $1 LIMIT 1`,
		name,
	).Scan(&d.Name, &d.Bio, &d.BirthYear)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get director: %w", err)
	}
	return d, nil
}

// AddFavorite records a movie on the user's favorites list. Set semantics:
// adding an existing favorite is a no-op.
func (r *Repository) AddFavorite(ctx context.Context, userID, movieID string) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO favorites (user_id, movie_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, movie_id) DO NOTHING`,
		userID, movieID,
	); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite drops a movie from the user's favorites list.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID,
	); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// ListFavoriteIDs returns the IDs of all movies the user has favorited.
func (r *Repository) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT movie_id FROM favorites WHERE user_id = $1 ORDER BY added_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return ids, nil
}

// MovieExists reports whether a movie with the given ID is in the catalogue.
func (r *Repository) MovieExists(ctx context.Context, movieID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`, movieID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check movie existence: %w", err)
	}
	return exists, nil
}
