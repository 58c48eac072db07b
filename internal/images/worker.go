package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"

	"github.com/cinedex/service/internal/storage"
)

// Derivative dimensions. Width and height are forced: aspect ratio is not
// preserved, matching the thumbnail contract of the read paths.
const (
	ThumbWidth  = 100
	ThumbHeight = 100
)

const jpegQuality = 85

// Worker turns originals into fixed-size derivatives. It holds no mutable
// state beyond the store reference, so concurrent invocations for different
// keys need no coordination, and re-processing the same key deterministically
// overwrites the prior derivative (safe under at-least-once delivery).
type Worker struct {
	store   storage.Storage
	timeout time.Duration
}

// NewWorker creates a Worker over the given store. timeout bounds each store
// call; a timed-out call is reported as a retryable failure.
func NewWorker(store storage.Storage, timeout time.Duration) *Worker {
	return &Worker{store: store, timeout: timeout}
}

// Process handles one resize event.
//
// Keys outside the original-images/ prefix are acknowledged as a no-op
// success: the worker must not trigger on its own output or on unrelated
// uploads. Any fetch, decode, or store failure is returned to the caller:
// the event infrastructure owns redelivery and backoff, not this component.
func (w *Worker) Process(ctx context.Context, ev ResizeEvent) error {
	derived, err := DerivedKey(ev.Key)
	if err != nil {
		log.Printf("resize: skipping %q (not an original)", ev.Key)
		return nil
	}

	getCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	body, err := w.store.Get(getCtx, ev.Key)
	if err != nil {
		return fmt.Errorf("fetch source %q: %w", ev.Key, err)
	}
	defer body.Close()

	src, err := imaging.Decode(body)
	if err != nil {
		return fmt.Errorf("decode source %q: %w", ev.Key, err)
	}

	resized := imaging.Resize(src, ThumbWidth, ThumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := encodeDerivative(&buf, resized, ev.Key); err != nil {
		return fmt.Errorf("encode derivative for %q: %w", ev.Key, err)
	}

	putCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	contentType := string(ContentTypeForKey(derived))
	if err := w.store.Upload(putCtx, derived, &buf, int64(buf.Len()), contentType); err != nil {
		return fmt.Errorf("store derivative %q: %w", derived, err)
	}

	log.Printf("resize: %s -> %s (%dx%d)", ev.Key, derived, ThumbWidth, ThumbHeight)
	return nil
}

// encodeDerivative writes img in the source key's format. The encoder and
// its parameters are fixed, so identical input bytes always produce identical
// derivative bytes. Keys with an unknown extension encode as JPEG.
func encodeDerivative(buf *bytes.Buffer, img image.Image, key string) error {
	switch ContentTypeForKey(key) {
	case ContentTypePNG:
		return imaging.Encode(buf, img, imaging.PNG)
	default:
		return imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	}
}
