package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/timesheet-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql/migrations"
	serviceAuth "github.com/cmlabs-hris/timesheet-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/employee"
	timeEntryService "github.com/cmlabs-hris/timesheet-backend-go/internal/service/timeentry"
)

const (
	appName    = "timesheet-backend"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := appHTTP.NewRequestLogger(appName, appVersion, cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	accessTTL, err := cfg.AccessTokenTTL()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL()
	if cfg.App.AutoMigrate {
		if err := migrateUp(dsn); err != nil {
			return err
		}
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	timeEntryRepo := postgresql.NewTimeEntryRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessTTL)
	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	timeEntrySvc := timeEntryService.NewTimeEntryService(
		timeEntryRepo,
		employeeRepo,
		postgresql.NewTransactor(db),
		clock.New(loc),
	)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{Logger: logger, AllowedOrigins: cfg.CORS.AllowedOrigins},
		JWTService,
		appHTTP.NewAuthHandler(authService),
		appHTTP.NewEmployeeHandler(employeeSvc),
		appHTTP.NewTimeEntryHandler(timeEntrySvc),
	)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("prune_revoked_tokens", 15*time.Minute, func(context.Context) error {
		if pruned := JWTService.PruneRevokedTokens(); pruned > 0 {
			slog.Debug("revoked tokens pruned", "count", pruned)
		}
		return nil
	})
	scheduler.AddJob("database_pool_stats", 5*time.Minute, func(ctx context.Context) error {
		stat := db.Stat()
		slog.Debug("database pool stats",
			"total_conns", stat.TotalConns(),
			"idle_conns", stat.IdleConns(),
			"acquired_conns", stat.AcquiredConns(),
		)
		return db.Ping(ctx)
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func migrateUp(dsn string) error {
	migrator, err := database.NewMigrator(dsn, migrations.FS)
	if err != nil {
		return fmt.Errorf("error opening migrations: %w", err)
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("error applying migrations: %w", err)
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	slog.Info("database migrated", "version", version, "dirty", dirty)
	return nil
}
