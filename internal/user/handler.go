package user

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/service/internal/middleware"
	"github.com/cinedex/service/internal/response"
)

// FavoritesLister reports the favorite movie IDs of a user. Implemented by
// the movies service; declared here so user reads can include favorites
// without a package cycle.
type FavoritesLister interface {
	ListFavoriteIDs(ctx context.Context, userID string) ([]string, error)
}

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	svc       *Service
	favorites FavoritesLister
}

// NewHandler creates a new user Handler.
func NewHandler(svc *Service, favorites FavoritesLister) *Handler {
	return &Handler{svc: svc, favorites: favorites}
}

type meData struct {
	User           *User    `json:"user"`
	FavoriteMovies []string `json:"favoriteMovies"`
}

type updateRequest struct {
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password,omitempty"`
	Birthday string `json:"birthday,omitempty" example:"1990-04-01"`
}

// GetMe godoc
//
//	@Summary		Get current user
//	@Description	Returns the profile of the currently authenticated user together with their favorite movie IDs.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=meData}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}

	favs, err := h.favorites.ListFavoriteIDs(r.Context(), u.ID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, meData{User: u, FavoriteMovies: favs})
}

// UpdateProfile godoc
//
//	@Summary		Update user profile
//	@Description	Updates email, password, or birthday for the user named in the path. Users may only edit themselves.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string			true	"Username"
//	@Param			request		body		updateRequest	true	"Fields to change"
//	@Success		200			{object}	response.Envelope{data=User}
//	@Failure		400			{object}	response.Envelope
//	@Failure		403			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/users/{username} [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, userID := callerIdentity(r)
	if chi.URLParam(r, "username") != caller {
		response.Forbidden(w, "users may only edit their own profile")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	var birthday *time.Time
	if req.Birthday != "" {
		t, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			response.BadRequest(w, "birthday must be YYYY-MM-DD")
			return
		}
		birthday = &t
	}

	passwordHash := ""
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			response.InternalError(w)
			return
		}
		passwordHash = hash
	}

	u, err := h.svc.Update(r.Context(), userID, req.Email, passwordHash, birthday)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, u)
}

// DeleteAccount godoc
//
//	@Summary		Delete user account
//	@Description	Removes the account and its favorites. Users may only delete themselves.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	response.Envelope
//	@Failure		403			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/users/{username} [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	caller, userID := callerIdentity(r)
	username := chi.URLParam(r, "username")
	if username != caller {
		response.Forbidden(w, "users may only delete their own account")
		return
	}

	if err := h.svc.Delete(r.Context(), userID); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"message": username + " was deleted"})
}

func callerIdentity(r *http.Request) (username, userID string) {
	username, _ = r.Context().Value(middleware.UsernameKey).(string)
	userID, _ = r.Context().Value(middleware.UserIDKey).(string)
	return username, userID
}
