// Package auth handles registration and password-based login.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/cinedex/service/internal/response"
	"github.com/cinedex/service/internal/user"
)

// usernameRegex matches valid usernames: alphanumeric, at least 5 characters.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]{5,}$`)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string `json:"username" example:"alice77"`
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
	Birthday string `json:"birthday,omitempty" example:"1990-04-01"`
}

type loginRequest struct {
	Username string `json:"username" example:"alice77"`
	Password string `json:"password" example:"s3cret-pass"`
}

type authData struct {
	Token string     `json:"token" example:"eyJhbGci..."`
	User  *user.User `json:"user"`
}

// Register godoc
//
//	@Summary		Register new user
//	@Description	Create a new account. Username must be alphanumeric with at least 5 characters. Issues a JWT token on success.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	response.Envelope{data=authData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/users [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		response.BadRequest(w, "username must be alphanumeric with at least 5 characters")
		return
	}
	if req.Password == "" {
		response.BadRequest(w, "password is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		response.BadRequest(w, "email does not appear to be valid")
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

	token, u, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password, birthday)
	if errors.Is(err, user.ErrAlreadyExists) {
		response.Conflict(w, req.Username+" already exists")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, authData{Token: token, User: u})
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify username and password; returns a JWT token valid for 7 days.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=authData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid username or password")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, authData{Token: token, User: u})
}
