package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/spectral-records/casekeeper/pkg/audit"
	"github.com/spectral-records/casekeeper/pkg/auth"
	"github.com/spectral-records/casekeeper/pkg/config"
	"github.com/spectral-records/casekeeper/pkg/database"
	"github.com/spectral-records/casekeeper/pkg/handlers"
	"github.com/spectral-records/casekeeper/pkg/logging"
	"github.com/spectral-records/casekeeper/pkg/metrics"
	"github.com/spectral-records/casekeeper/pkg/middleware"
	"github.com/spectral-records/casekeeper/pkg/repositories"
	"github.com/spectral-records/casekeeper/pkg/retry"
	"github.com/spectral-records/casekeeper/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Strings("privileged_roles", cfg.Auth.PrivilegedRoles),
		zap.Int("global_keywords", len(cfg.Redaction.GlobalKeywords)))

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server failed", logging.Error(err))
	}
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" || env == "test" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("casekeeper")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	connStr := cfg.Database.ConnectionString()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
		Retry:          retry.StartupConfig(),
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrate(connStr, logger); err != nil {
		return err
	}

	// Repositories
	caseRepo := repositories.NewCaseRepository()
	clientRepo := repositories.NewClientRepository()
	witnessRepo := repositories.NewWitnessAccountRepository()

	// Services
	auditor := audit.NewCaseAuditor(logger)
	settings := cfg.RedactionSettings()

	stores := services.RecordStores{
		Cases:           caseRepo,
		Activities:      repositories.NewActivityRepository(),
		Reports:         repositories.NewReportRepository(),
		Locations:       repositories.NewLocationRepository(),
		WitnessAccounts: witnessRepo,
		Evidence:        repositories.NewEvidenceRepository(),
	}
	labels := services.NewDefaultEntityLabelRegistry(stores, logger)

	relationshipService := services.NewRelationshipService(
		repositories.NewRelationshipRepository(),
		repositories.NewRelationshipTypeRepository(),
		labels, auditor, logger)

	displayService := services.NewCaseDisplayService(
		stores,
		relationshipService,
		services.NewRedactionTermCollector(caseRepo, clientRepo, witnessRepo, settings, logger),
		services.NewRedactionEngine(settings),
		auditor, logger)

	// Auth
	jwksClient, err := auth.NewJWKSClient(ctx, &auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
		Audience:           "casekeeper",
	})
	if err != nil {
		return err
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, cfg.Auth.PrivilegedRoles, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)
	scopeMiddleware := handlers.ScopeMiddleware(database.WithDatabaseScope(db, logger))

	// Routes
	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewRelationshipsHandler(relationshipService, displayService, logger).
		RegisterRoutes(mux, authMiddleware, scopeMiddleware)
	handlers.NewCaseDisplayHandler(displayService, logger).
		RegisterRoutes(mux, authMiddleware, scopeMiddleware)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestID(middleware.RequestLogger(logger)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting casekeeper", zap.String("addr", server.Addr), zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// migrate applies pending schema migrations over a short-lived database/sql handle.
func migrate(connStr string, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, logger)
}
