package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/linkdigest/internal/api/handlers"
	"github.com/cloo-solutions/linkdigest/internal/api/middleware"
	"github.com/cloo-solutions/linkdigest/internal/config"
	"github.com/cloo-solutions/linkdigest/internal/database"
	"github.com/cloo-solutions/linkdigest/internal/jobs"
	"github.com/cloo-solutions/linkdigest/internal/repository"
	"github.com/cloo-solutions/linkdigest/internal/server"
	"github.com/cloo-solutions/linkdigest/internal/service"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the linkdigest API server. The summary log is enabled when a database URL is configured.",
		RunE:  runServe,
	}

	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	summarySvc := NewSummaryService(cfg)

	routerCfg := server.RouterConfig{}
	if cfg.HasRateLimit() {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.TrustProxy = cfg.TrustProxy
		routerCfg.RateLimiter = limiter
		log.Printf("rate limiting summary routes at %.2f req/s (burst %d, trust proxy %t)", cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustProxy)
	}

	var pruneWorker *jobs.Worker
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := database.Migrate(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		logSvc := service.NewSummaryLogService(repository.NewSummaryLogRepository(pool), nil)
		routerCfg.SummaryHandler = handlers.NewSummaryHandler(summarySvc, logSvc).WithTimeout(cfg.RequestTimeout)
		routerCfg.SummaryLogHandler = handlers.NewSummaryLogHandler(logSvc)

		if cfg.LogRetention > 0 {
			pruneWorker = jobs.NewWorker("summary-log-retention",
				jobs.NewLogRetentionJob(logSvc, cfg.LogRetention),
				jobs.PruneInterval(cfg.LogRetention))
			go pruneWorker.Start(ctx)
		}
	} else {
		routerCfg.SummaryHandler = handlers.NewSummaryHandler(summarySvc, nil).WithTimeout(cfg.RequestTimeout)
		log.Println("summary log disabled (no database configured)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Println("shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	if pruneWorker != nil {
		pruneWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
