package images

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinedex/service/internal/middleware"
	"github.com/cinedex/service/internal/response"
	"github.com/cinedex/service/internal/storage"
)

// maxUploadBytes caps the accepted multipart payload.
const maxUploadBytes = 8 << 20

// Handler holds HTTP handlers for the image pipeline endpoints.
type Handler struct {
	store    storage.Storage
	resolver *Resolver
	timeout  time.Duration
}

// NewHandler creates a new image Handler. timeout bounds every store call
// made on behalf of a request.
func NewHandler(store storage.Storage, timeout time.Duration) *Handler {
	return &Handler{
		store:    store,
		resolver: NewResolver(store),
		timeout:  timeout,
	}
}

type profileData struct {
	Key string `json:"key" example:"resized-images/alice/cat.jpg"`
	URL string `json:"url" example:"http://localhost:9000/cinedex/resized-images/alice/cat.jpg"`
}

type uploadData struct {
	Key string `json:"key" example:"original-images/alice/cat.jpg"`
}

// Upload godoc
//
//	@Summary		Upload original image
//	@Description	Accepts a multipart file field named "image" and stores it under original-images/{owner}/{filename}. The resized derivative is produced asynchronously by the resize worker.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			owner	path		string	true	"Owner username"
//	@Param			image	formData	file	true	"Image payload (jpeg or png)"
//	@Success		200		{object}	response.Envelope{data=uploadData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/upload/{owner} [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if owner == "" {
		response.BadRequest(w, "owner is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		response.BadRequest(w, "could not read uploaded file")
		return
	}
	if buf.Len() == 0 {
		response.BadRequest(w, "uploaded file is empty")
		return
	}
	if !allowedImage(buf.Bytes()) {
		response.BadRequest(w, "only jpeg and png images are accepted")
		return
	}

	// Filename is taken verbatim from the client; same name overwrites the
	// prior original (last write wins, no de-duplication).
	key := OriginalKey(owner, header.Filename)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	contentType := http.DetectContentType(buf.Bytes())
	if err := h.store.Upload(ctx, key, &buf, int64(buf.Len()), contentType); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not store image")
		return
	}

	// Success means the original is durable. The derivative appears later,
	// once the store's event notification reaches the resize worker.
	response.OK(w, uploadData{Key: key})
}

// Thumbnails godoc
//
//	@Summary		List resized image keys
//	@Description	Returns every key under resized-images/{owner}/ in store listing order. The array may be empty.
//	@Tags			images
//	@Produce		json
//	@Param			owner	path		string	true	"Owner username"
//	@Success		200		{object}	response.Envelope{data=[]string}
//	@Failure		500		{object}	response.Envelope
//	@Router			/thumbnails/{owner} [get]
func (h *Handler) Thumbnails(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	keys, err := h.resolver.ListKeys(ctx, ClassResized, owner)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not list thumbnails")
		return
	}
	response.OK(w, keys)
}

// Profile godoc
//
//	@Summary		Resolve latest profile image
//	@Description	Returns the key and public URL of the owner's most recently modified resized image.
//	@Tags			images
//	@Produce		json
//	@Param			owner	path		string	true	"Owner username"
//	@Success		200		{object}	response.Envelope{data=profileData}
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/profile/{owner} [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	latest, err := h.resolver.Latest(ctx, ClassResized, owner)
	if errors.Is(err, ErrNoImages) {
		response.NotFound(w, "no profile image found")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not resolve profile image")
		return
	}
	response.OK(w, profileData{
		Key: latest.Key,
		URL: h.store.PublicURL(latest.Key),
	})
}

// Retrieve godoc
//
//	@Summary		Fetch object body by key
//	@Description	Streams the raw bytes of the object at the given key. The key's owner segment must match the authenticated user.
//	@Tags			images
//	@Produce		octet-stream
//	@Security		BearerAuth
//	@Param			key	path		string	true	"Full object key, e.g. resized-images/alice/cat.jpg"
//	@Success		200	{file}		binary
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/retrieve/{key} [get]
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	owner, err := Owner(key)
	if err != nil {
		response.BadRequest(w, "key must be {prefix}/{owner}/{filename}")
		return
	}
	caller, _ := r.Context().Value(middleware.UsernameKey).(string)
	if caller == "" || caller != owner {
		response.Forbidden(w, "key does not belong to the authenticated user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	body, err := h.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, "object not found")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not retrieve object")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", string(ContentTypeForKey(key)))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

// allowedImage sniffs the payload and accepts only jpeg and png.
func allowedImage(data []byte) bool {
	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
		return true
	}
	return false
}
