//	@title			Cinedex API
//	@version		1.0
//	@description	Movie catalogue backend: accounts, favorites, and the profile image pipeline.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

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
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/cinedex/service/internal/auth"
	"github.com/cinedex/service/internal/config"
	"github.com/cinedex/service/internal/db"
	"github.com/cinedex/service/internal/images"
	appMiddleware "github.com/cinedex/service/internal/middleware"
	"github.com/cinedex/service/internal/movies"
	"github.com/cinedex/service/internal/storage"
	"github.com/cinedex/service/internal/user"

	_ "github.com/cinedex/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

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

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)

	movieRepo := movies.NewRepository(pool)
	movieSvc := movies.NewService(movieRepo)
	movieHandler := movies.NewHandler(movieSvc)

	userHandler := user.NewHandler(userSvc, movieSvc)

	authSvc := auth.NewService(userSvc, cfg)
	authHandler := auth.NewHandler(authSvc)

	imageHandler := images.NewHandler(store, cfg.StorageTimeout)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Welcome to Cinedex!"))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public: registration, login, image pipeline reads and upload.
	r.Post("/users", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/upload/{owner}", imageHandler.Upload)
	r.Get("/thumbnails/{owner}", imageHandler.Thumbnails)
	r.Get("/profile/{owner}", imageHandler.Profile)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

		r.Get("/retrieve/*", imageHandler.Retrieve)

		r.Get("/users/me", userHandler.GetMe)
		r.Put("/users/{username}", userHandler.UpdateProfile)
		r.Delete("/users/{username}", userHandler.DeleteAccount)

		r.Get("/movies", movieHandler.List)
		r.Get("/movies/genre/{genreName}", movieHandler.GetGenre)
		r.Get("/movies/director/{directorName}", movieHandler.GetDirector)
		r.Get("/movies/{title}", movieHandler.GetByTitle)

		r.Post("/users/{username}/movies/{movieID}", movieHandler.AddFavorite)
		r.Delete("/users/{username}/movies/{movieID}", movieHandler.RemoveFavorite)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
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

	log.Println("server stopped")
}
