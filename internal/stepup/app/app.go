package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventia/stepup/internal/stepup/audit"
	"github.com/eventia/stepup/internal/stepup/delivery"
	httpapi "github.com/eventia/stepup/internal/stepup/http"
	"github.com/eventia/stepup/internal/stepup/service"
	"github.com/eventia/stepup/internal/stepup/store"
	"github.com/eventia/stepup/internal/stepup/store/cached"
	"github.com/eventia/stepup/internal/stepup/store/drivers/mongo"
	"github.com/eventia/stepup/pkg/cryptox"
	"github.com/eventia/stepup/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the step-up service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	auditor *audit.Recorder

	sessionService      *service.SessionService
	enrollService       *service.EnrollService
	deviceService       *service.DeviceService
	gateService         *service.GateService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "stepup",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.AuthSecret == "" {
		return nil, errors.New("STEPUP_AUTH_SECRET is required")
	}
	if cfg.ReceiptSecret == "" {
		return nil, errors.New("STEPUP_RECEIPT_SECRET is required")
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("stepup service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server, the background workers, and the
// store, in that order so in-flight requests can still record audit events.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down stepup service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()
	app.auditor.Stop()

	if err := app.db.Close(ctx); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("stepup service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	ctx := context.Background()

	db, err := mongo.NewStore(ctx, mongo.Config{
		URI:      app.cfg.MongoURI,
		Database: app.cfg.MongoDatabase,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close(ctx)
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully")

	// Sessions are read on every verify; the cache keeps the hot path off the
	// database while the durable store stays authoritative.
	app.db = cached.NewStore(db)
	return nil
}

func (app *Application) initServices() {
	app.auditor = audit.NewRecorder(app.db.AuditEvents(), app.logger)

	var sender delivery.Sender = delivery.LogSender{}
	if app.cfg.DeliveryURL != "" {
		sender = delivery.NewWebhookSender(app.cfg.DeliveryURL)
	} else {
		app.logger.Warn("no delivery gateway configured, codes will not be delivered")
	}

	app.sessionService = &service.SessionService{
		Store:   app.db,
		Sender:  sender,
		Auditor: app.auditor,
	}
	app.enrollService = &service.EnrollService{
		Store:   app.db,
		Auditor: app.auditor,
		Issuer:  app.cfg.Issuer,
	}
	app.deviceService = &service.DeviceService{
		Store:         app.db,
		Auditor:       app.auditor,
		TrustDuration: app.cfg.TrustDuration,
	}
	app.gateService = &service.GateService{
		Store:         app.db,
		Sessions:      app.sessionService,
		Devices:       app.deviceService,
		Auditor:       app.auditor,
		ReceiptSecret: []byte(app.cfg.ReceiptSecret),
		LowThreshold:  app.cfg.LowThreshold,
		HighThreshold: app.cfg.HighThreshold,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db, app.logger, app.cfg.HousekeepingInterval)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter([]byte(app.cfg.AuthSecret), BuildVersion, app.db, app.logger)
	app.router.SessionService = app.sessionService
	app.router.EnrollService = app.enrollService
	app.router.DeviceService = app.deviceService
	app.router.GateService = app.gateService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
