package movies

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cinedex/service/internal/middleware"
	"github.com/cinedex/service/internal/response"
)

// CatalogueService is the surface the HTTP layer needs from the movies
// service. Declared as an interface so handler tests can stub it.
type CatalogueService interface {
	List(ctx context.Context) ([]*Movie, error)
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	GetGenre(ctx context.Context, name string) (*Genre, error)
	GetDirector(ctx context.Context, name string) (*Director, error)
	AddFavorite(ctx context.Context, userID, movieID string) error
	RemoveFavorite(ctx context.Context, userID, movieID string) error
}

// Handler holds HTTP handlers for catalogue and favorites endpoints.
type Handler struct {
	svc CatalogueService
}

// NewHandler creates a new movies Handler.
func NewHandler(svc CatalogueService) *Handler {
	return &Handler{svc: svc}
}

// List godoc
//
//	@Summary		List all movies
//	@Tags			movies
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]Movie}
//	@Failure		500	{object}	response.Envelope
//	@Router			/movies [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	movies, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, movies)
}

// GetByTitle godoc
//
//	@Summary		Get a movie by title
//	@Tags			movies
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title	path		string	true	"Movie title"
//	@Success		200		{object}	response.Envelope{data=Movie}
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/movies/{title} [get]
func (h *Handler) GetByTitle(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetByTitle(r.Context(), chi.URLParam(r, "title"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "movie not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, m)
}

// GetGenre godoc
//
//	@Summary		Get genre details by name
//	@Tags			movies
//	@Produce		json
//	@Security		BearerAuth
//	@Param			genreName	path		string	true	"Genre name"
//	@Success		200			{object}	response.Envelope{data=Genre}
//	@Failure		404			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/movies/genre/{genreName} [get]
func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGenre(r.Context(), chi.URLParam(r, "genreName"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "genre not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, g)
}

// GetDirector godoc
//
//	@Summary		Get director details by name
//	@Tags			movies
//	@Produce		json
//	@Security		BearerAuth
//	@Param			directorName	path		string	true	"Director name"
//	@Success		200				{object}	response.Envelope{data=Director}
//	@Failure		404				{object}	response.Envelope
//	@Failure		500				{object}	response.Envelope
//	@Router			/movies/director/{directorName} [get]
func (h *Handler) GetDirector(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetDirector(r.Context(), chi.URLParam(r, "directorName"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "director not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, d)
}

// AddFavorite godoc
//
//	@Summary		Add a movie to favorites
//	@Description	Set semantics: adding a movie that is already a favorite is a no-op success.
//	@Tags			favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username (must match the token)"
//	@Param			movieID		path		string	true	"Movie UUID"
//	@Success		200			{object}	response.Envelope
//	@Failure		400			{object}	response.Envelope
//	@Failure		403			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/users/{username}/movies/{movieID} [post]
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, movieID, ok := h.favoriteParams(w, r)
	if !ok {
		return
	}
	if err := h.svc.AddFavorite(r.Context(), userID, movieID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "movie not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"message": movieID + " was added to your favorite movies list"})
}

// RemoveFavorite godoc
//
//	@Summary		Remove a movie from favorites
//	@Tags			favorites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username (must match the token)"
//	@Param			movieID		path		string	true	"Movie UUID"
//	@Success		200			{object}	response.Envelope
//	@Failure		400			{object}	response.Envelope
//	@Failure		403			{object}	response.Envelope
//	@Router			/users/{username}/movies/{movieID} [delete]
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, movieID, ok := h.favoriteParams(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveFavorite(r.Context(), userID, movieID); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"message": movieID + " was removed from your favorite movies list"})
}

// favoriteParams validates the username/movieID pair shared by the favorites
// routes. It writes the error response itself when validation fails.
func (h *Handler) favoriteParams(w http.ResponseWriter, r *http.Request) (userID, movieID string, ok bool) {
	caller, _ := r.Context().Value(middleware.UsernameKey).(string)
	userID, _ = r.Context().Value(middleware.UserIDKey).(string)
	if chi.URLParam(r, "username") != caller || userID == "" {
		response.Forbidden(w, "users may only edit their own favorites")
		return "", "", false
	}
	movieID = chi.URLParam(r, "movieID")
	if _, err := uuid.Parse(movieID); err != nil {
		response.BadRequest(w, "movieID must be a valid UUID")
		return "", "", false
	}
	return userID, movieID, true
}
