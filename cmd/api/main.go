package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitrineshop/catalog_api/internal/bus"
	"github.com/vitrineshop/catalog_api/internal/cache"
	"github.com/vitrineshop/catalog_api/internal/config"
	"github.com/vitrineshop/catalog_api/internal/database"
	"github.com/vitrineshop/catalog_api/internal/directory"
	"github.com/vitrineshop/catalog_api/internal/handler"
	"github.com/vitrineshop/catalog_api/internal/middleware"
	"github.com/vitrineshop/catalog_api/internal/remote"
	"github.com/vitrineshop/catalog_api/internal/repository"
	"github.com/vitrineshop/catalog_api/internal/worker"
)

// main is the application entrypoint for the product directory service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("mode", cfg.Mode).Msg("starting catalog api")

	// 3. Shared notification bus
	notifyBus := bus.New()

	// 4. Wire the directory adapter. The mode is decided exactly once here;
	// nothing downstream branches on it again.
	var dir directory.Directory
	var closers []func()

	switch cfg.Mode {
	case config.ModeMemory:
		engine := directory.NewEngine(notifyBus, cfg.MockLatency)
		engine.Seed(directory.SeedCatalog())
		dir = engine

	case config.ModePostgres:
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		closers = append(closers, func() { _ = db.Close() })

		if err := runMigrations(db.DB); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		var productCache *cache.ProductCache
		if cfg.RedisEnabled() {
			redisClient, err := cache.NewRedisClient(&cfg.Redis)
			if err != nil {
				log.Error().Err(err).Msg("redis connection failed")
				fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
				os.Exit(1)
			}
			closers = append(closers, func() { _ = redisClient.Close() })
			productCache = cache.NewProductCache(redisClient)
			log.Info().Msg("redis connected successfully")
		}

		dir = directory.NewStore(repository.NewProductRepository(db), productCache, notifyBus)

	case config.ModeRemote:
		dir = remote.NewClient(remote.Config{
			BaseURL: cfg.APIBaseURL,
			Timeout: cfg.RequestTimeout,
			Debug:   cfg.Debug,
		}, notifyBus)
	}

	// 5. Initialize handlers
	productHandler := handler.NewProductHandler(dir)
	streamHandler := handler.NewStreamHandler(notifyBus)
	healthHandler := handler.NewHealthHandler(cfg.Mode, notifyBus)

	// 6. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, productHandler, streamHandler, healthHandler)

	// 7. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Start workers
	if cfg.RefreshInterval > 0 {
		go worker.NewRefreshWorker(dir, cfg.RefreshInterval).Start(ctx)
	}

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 10. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 11. Cancel context to stop workers
	cancel()

	// 12. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	for _, closeFn := range closers {
		closeFn()
	}
	log.Info().Msg("Server exited")
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, products *handler.ProductHandler, stream *handler.StreamHandler, health *handler.HealthHandler) {
	router.GET("/health", health.GetHealth)

	router.GET("/products", products.ListProducts)
	router.GET("/products/stream", stream.Stream)
	router.GET("/products/:id", products.GetProduct)
	router.POST("/products", products.CreateProduct)
	router.PUT("/products/:id", products.UpdateProduct)
	router.DELETE("/products/:id", products.DeleteProduct)
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
