// Package entrypoint assembles the application and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mferrier/booktracker/internal/backup"
	"github.com/mferrier/booktracker/internal/config"
	http_controllers "github.com/mferrier/booktracker/internal/http"
	"github.com/mferrier/booktracker/internal/metadata"
	"github.com/mferrier/booktracker/internal/storage"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Book Tracker v%s", version)

	var client storage.Client
	var closeClient func() error
	switch cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database at %s: %v", cfg.Storage.DatabasePath, err)
		}
		log.Printf("Using SQLite storage at %s", cfg.Storage.DatabasePath)
		client, closeClient = store, store.Close
	case config.StorageBackendJSON, "":
		store, err := storage.NewJSONFileStore(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("Failed to open data directory %s: %v", cfg.Storage.DataDir, err)
		}
		log.Printf("Using JSON file storage in %s", cfg.Storage.DataDir)
		client, closeClient = store, func() error { return nil }
	default:
		log.Fatalf("Unknown storage backend: %s", cfg.Storage.Backend)
	}

	books := storage.NewBookStore(client)
	goals := storage.NewGoalStore(client)

	var lookup *metadata.GoogleBooksClient
	if cfg.GoogleBooks.APIKey != "" {
		lookup = metadata.NewGoogleBooksClient(cfg.GoogleBooks.APIKey)
	} else {
		log.Printf("WARNING: GOOGLE_BOOKS_API_KEY is not set. Book lookup and cover fetching will be disabled.")
	}

	var scheduler *backup.Scheduler
	if cfg.Backup.Enabled {
		scheduler = backup.NewScheduler(books, cfg.Backup.Dir, cfg.Backup.Schedule)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start backup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.Deps{
		Books:      books,
		Goals:      goals,
		Lookup:     lookup,
		CoverDelay: cfg.GoogleBooks.CoverDelay,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if scheduler != nil {
			scheduler.Stop()
		}
		if err := closeClient(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	})
}
