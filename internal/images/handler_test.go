package images

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinedex/service/internal/middleware"
	"github.com/cinedex/service/internal/response"
	"github.com/cinedex/service/internal/storage"
)

func newTestRouter(store *storage.MemoryStorage) chi.Router {
	h := NewHandler(store, time.Second)
	r := chi.NewRouter()
	r.Post("/upload/{owner}", h.Upload)
	r.Get("/thumbnails/{owner}", h.Thumbnails)
	r.Get("/profile/{owner}", h.Profile)
	r.Get("/retrieve/*", h.Retrieve)
	return r
}

// multipartBody builds a multipart form with a single "image" file field.
func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// asCaller stamps the request context with authenticated-user claims the way
// the auth middleware does.
func asCaller(r *http.Request, username string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, "test-id")
	ctx = context.WithValue(ctx, middleware.UsernameKey, username)
	return r.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, body io.Reader) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env
}

func TestUploadHandler(t *testing.T) {
	t.Run("stores the original under the owner prefix", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		router := newTestRouter(store)

		body, contentType := multipartBody(t, "image", "cat.jpg", testJPEG(t, 32, 32))
		req := httptest.NewRequest(http.MethodPost, "/upload/alice", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		infos, err := store.List(context.Background(), "original-images/alice/")
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "original-images/alice/cat.jpg", infos[0].Key)
	})

	t.Run("missing file field is a validation error", func(t *testing.T) {
		router := newTestRouter(storage.NewMemoryStorage())

		body, contentType := multipartBody(t, "wrongfield", "cat.jpg", testJPEG(t, 8, 8))
		req := httptest.NewRequest(http.MethodPost, "/upload/alice", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		router := newTestRouter(storage.NewMemoryStorage())

		body, contentType := multipartBody(t, "image", "cat.jpg", nil)
		req := httptest.NewRequest(http.MethodPost, "/upload/alice", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-image payload is rejected by content sniffing", func(t *testing.T) {
		router := newTestRouter(storage.NewMemoryStorage())

		body, contentType := multipartBody(t, "image", "cat.jpg", []byte("<html>not an image</html>"))
		req := httptest.NewRequest(http.MethodPost, "/upload/alice", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("same filename overwrites, no duplicates", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		router := newTestRouter(store)

		for i := 0; i < 2; i++ {
			body, contentType := multipartBody(t, "image", "cat.jpg", testJPEG(t, 16, 16))
			req := httptest.NewRequest(http.MethodPost, "/upload/alice", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		infos, err := store.List(context.Background(), "original-images/alice/")
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	})
}

func TestThumbnailsHandler(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newTestRouter(store)

	t.Run("empty prefix returns an empty array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/thumbnails/alice", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.True(t, env.Success)
		assert.Equal(t, []any{}, env.Data)
	})

	t.Run("lists only the owner's resized keys", func(t *testing.T) {
		seedObject(t, store, "resized-images/alice/a.jpg", time.Now())
		seedObject(t, store, "resized-images/bob/b.jpg", time.Now())
		seedObject(t, store, "original-images/alice/a.jpg", time.Now())

		req := httptest.NewRequest(http.MethodGet, "/thumbnails/alice", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.Equal(t, []any{"resized-images/alice/a.jpg"}, env.Data)
	})
}

func TestProfileHandler(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newTestRouter(store)

	t.Run("404 when the owner has no resized images", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("resolves the latest resized key", func(t *testing.T) {
		base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		seedObject(t, store, "resized-images/alice/old.jpg", base)
		seedObject(t, store, "resized-images/alice/new.jpg", base.Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		data := env.Data.(map[string]any)
		assert.Equal(t, "resized-images/alice/new.jpg", data["key"])
		assert.Equal(t, "memory://resized-images/alice/new.jpg", data["url"])
	})
}

func TestRetrieveHandler(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newTestRouter(store)
	payload := testJPEG(t, 10, 10)
	seedBytes(t, store, "resized-images/alice/cat.jpg", payload)

	t.Run("returns the exact body for the owner", func(t *testing.T) {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/retrieve/resized-images/alice/cat.jpg", nil), "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
		assert.Equal(t, payload, rec.Body.Bytes())
	})

	t.Run("foreign keys are forbidden", func(t *testing.T) {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/retrieve/resized-images/alice/cat.jpg", nil), "mallory")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("anonymous access is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/retrieve/resized-images/alice/cat.jpg", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing object is 404, never a partial body", func(t *testing.T) {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/retrieve/resized-images/alice/ghost.jpg", nil), "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec.Body)
		assert.False(t, env.Success)
	})

	t.Run("malformed keys are rejected", func(t *testing.T) {
		req := asCaller(httptest.NewRequest(http.MethodGet, "/retrieve/not-a-prefix/cat.jpg", nil), "alice")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestPipelineEndToEnd exercises the whole lifecycle: upload, storage event,
// resize, thumbnails listing, profile resolution, and retrieval.
func TestPipelineEndToEnd(t *testing.T) {
	store := storage.NewMemoryStorage()
	router := newTestRouter(store)
	worker := NewWorker(store, time.Second)

	// 1. alice uploads cat.jpg
	body, contentType := multipartBody(t, "image", "cat.jpg", testJPEG(t, 640, 480))
	req := httptest.NewRequest(http.MethodPost, "/upload/alice", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// 2. the store's notification fires and the worker processes it
	require.NoError(t, worker.Process(context.Background(), ResizeEvent{
		Region: "us-east-1",
		Bucket: "cinedex",
		Key:    "original-images/alice/cat.jpg",
	}))

	// 3. thumbnails lists exactly the derivative
	req = httptest.NewRequest(http.MethodGet, "/thumbnails/alice", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"resized-images/alice/cat.jpg"}, decodeEnvelope(t, rec.Body).Data)

	// 4. profile resolves to the same key
	req = httptest.NewRequest(http.MethodGet, "/profile/alice", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec.Body).Data.(map[string]any)
	assert.Equal(t, "resized-images/alice/cat.jpg", data["key"])

	// 5. the derivative has the forced dimensions
	req = asCaller(httptest.NewRequest(http.MethodGet, "/retrieve/resized-images/alice/cat.jpg", nil), "alice")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	img, err := imaging.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ThumbWidth, img.Bounds().Dx())
	assert.Equal(t, ThumbHeight, img.Bounds().Dy())
}
