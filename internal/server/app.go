// Package server initializes and runs the main application server.
// It opens the database, runs migrations, wires the service graph, and
// starts the HTTP server with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/taskit/internal/logging"
	"github.com/dmitrijs2005/taskit/internal/server/avatar"
	"github.com/dmitrijs2005/taskit/internal/server/blob"
	"github.com/dmitrijs2005/taskit/internal/server/config"
	"github.com/dmitrijs2005/taskit/internal/server/httpapi"
	"github.com/dmitrijs2005/taskit/internal/server/mail"
	"github.com/dmitrijs2005/taskit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskit/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	var notifier mail.Notifier = mail.NoopNotifier{}
	if cfg.SendGridAPIKey != "" {
		notifier = mail.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFromAddress)
	}

	tokenService := services.NewTokenService(db, rm, cfg)
	userService := services.NewUserService(db, rm, tokenService, notifier, blobs,
		avatar.NewPNGNormalizer(), logger, cfg)
	taskService := services.NewTaskService(db, rm)

	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger,
		userService, tokenService, taskService)

	return &App{config: cfg, logger: logger, db: db, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
