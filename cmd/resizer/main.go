// The resizer process is the webhook target for the store's bucket
// notifications. MinIO (or S3 via a bridge) POSTs an event record for every
// object created under original-images/; the worker produces the 100x100
// derivative. A non-2xx response tells the notification infrastructure to
// redeliver, so failures here are retried rather than lost.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cinedex/service/internal/config"
	"github.com/cinedex/service/internal/images"
	appMiddleware "github.com/cinedex/service/internal/middleware"
	"github.com/cinedex/service/internal/response"
	"github.com/cinedex/service/internal/storage"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	worker := images.NewWorker(store, cfg.StorageTimeout)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/events", func(w http.ResponseWriter, r *http.Request) {
		events, err := images.ParseEvents(r.Body)
		if err != nil {
			// A malformed payload will never parse on redelivery: answer 400
			// so the sender drops it instead of retrying forever.
			response.BadRequest(w, err.Error())
			return
		}
		for _, ev := range events {
			if err := worker.Process(r.Context(), ev); err != nil {
				log.Printf("resize failed for %q: %v", ev.Key, err)
				response.Error(w, http.StatusInternalServerError, "resize failed")
				return
			}
		}
		response.OK(w, map[string]int{"processed": len(events)})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ResizerPort,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("resize worker listening on :%s", cfg.ResizerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("resize worker stopped")
}
