package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/catalogworks/catalog-service/internal/config"
	"github.com/catalogworks/catalog-service/internal/lock"
	"github.com/catalogworks/catalog-service/internal/services/blob"
	"github.com/catalogworks/catalog-service/internal/services/catalog"
	"github.com/catalogworks/catalog-service/internal/services/images"
	"github.com/catalogworks/catalog-service/internal/services/thumbnail"
	"github.com/catalogworks/catalog-service/internal/storage/postgres"
)

// application bundles the wired components. The request-handling layer that
// consumes the engine and the catalog service lives outside this repository.
type application struct {
	storage *postgres.Postgres
	engine  *images.Engine
	catalog *catalog.Service
}

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	storage, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// blob store setup
	blobStore, err := blob.NewStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob store:", err)
	}
	slog.Info("Connected to MinIO blob store")

	// redis setup for the per-product bulk save lock
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	locker := lock.NewRedisLocker(redisClient, 30*time.Second)

	thumbs := thumbnail.NewGenerator(cfg.Images.ThumbnailMaxSize)

	app := &application{
		storage: storage,
		engine:  images.NewEngine(storage, storage, blobStore, thumbs, locker, cfg.Images),
		catalog: catalog.NewService(storage),
	}

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", app.healthz)

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}

func (a *application) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.storage.Db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}
