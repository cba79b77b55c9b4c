package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"festboard/internal/config"
	"festboard/internal/domain"
	"festboard/internal/engine"
	"festboard/internal/handler"
	"festboard/internal/middleware"
	"festboard/internal/repository"
	"festboard/internal/service"
	"festboard/pkg/database"
	"festboard/pkg/logger"
	"festboard/pkg/redis"
)

// Resources holds all resources that need cleanup
type Resources struct {
	db            *database.PostgresDB
	redisClient   *redis.Client
	votingService *service.VotingService
	server        *http.Server
	log           *logger.Logger
	mu            sync.Mutex
	closed        bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	// Stop the voting deadline watcher
	if r.votingService != nil {
		if err := r.votingService.Stop(ctx); err != nil {
			r.log.WithError(err).Error("Failed to stop voting service")
			errs = append(errs, fmt.Errorf("voting service shutdown: %w", err))
		}
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.WithError(err).Error("Failed to close Redis connection")
			errs = append(errs, fmt.Errorf("Redis close: %w", err))
		} else {
			r.log.Info("Redis connection closed")
		}
	}

	if r.db != nil {
		r.db.Close()
		r.log.Info("Database connection pool closed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting festboard server")

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	// Wire the snapshot store and services
	snapshotRepo := repository.NewPostgresSnapshotRepository(db)
	store := service.NewSnapshotStore(snapshotRepo)
	clock := engine.SystemClock()

	scoreboardService := service.NewScoreboardService(store, redisClient, clock, log.Logger)
	votingService := service.NewVotingService(store, redisClient, clock, cfg.VotingPollInterval, log.Logger)

	// Start the deadline watcher so sessions finalize on time even
	// without an explicit close request.
	if err := votingService.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start voting service")
	}

	router := setupRouter(cfg, log, scoreboardService, votingService, db, redisClient)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	resources := &Resources{
		db:            db,
		redisClient:   redisClient,
		votingService: votingService,
		server:        server,
		log:           log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(cfg *config.Config, log *logger.Logger, scoreboardService *service.ScoreboardService, votingService *service.VotingService, db *database.PostgresDB, redisClient *redis.Client) *chi.Mux {
	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(db, redisClient)
	scoreboardHandler := handler.NewScoreboardHandler(scoreboardService)
	bonusHandler := handler.NewAdjustmentHandler(scoreboardService, domain.KindBonus)
	penaltyHandler := handler.NewAdjustmentHandler(scoreboardService, domain.KindPenalty)
	votingHandler := handler.NewVotingHandler(votingService)

	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/leaderboard", scoreboardHandler.GetLeaderboard)
		r.Get("/teams", scoreboardHandler.GetTeams)
		r.Get("/activities", scoreboardHandler.GetActivities)

		r.Post("/scores", scoreboardHandler.SubmitScore)
		r.Post("/awards", scoreboardHandler.SubmitDirectorAward)

		r.Get("/snapshot", scoreboardHandler.ExportSnapshot)
		r.Put("/snapshot", scoreboardHandler.ImportSnapshot)

		registerAdjustmentRoutes := func(r chi.Router, h *handler.AdjustmentHandler) {
			r.Get("/", h.List)
			r.Post("/", h.Submit)
			r.Put("/{id}", h.Update)
			r.Put("/{id}/status", h.SetStatus)
			r.Delete("/{id}", h.Delete)
		}
		r.Route("/bonuses", func(r chi.Router) { registerAdjustmentRoutes(r, bonusHandler) })
		r.Route("/penalties", func(r chi.Router) { registerAdjustmentRoutes(r, penaltyHandler) })

		r.Route("/voting", func(r chi.Router) {
			r.Get("/status", votingHandler.GetStatus)
			r.Post("/open", votingHandler.OpenSession)
			r.Post("/close", votingHandler.CloseSession)
			r.Post("/vote", votingHandler.SubmitVote)
			r.Get("/awards", votingHandler.ListAwards)
			r.Delete("/awards/{id}", votingHandler.DeleteAward)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
