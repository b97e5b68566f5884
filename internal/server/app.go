// Package server wires the gateway together: it opens the database, applies
// migrations, builds the services and runs the HTTP server until the process
// is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/linguabridge/internal/filex"
	"github.com/dmitrijs2005/linguabridge/internal/logging"
	"github.com/dmitrijs2005/linguabridge/internal/server/ai"
	"github.com/dmitrijs2005/linguabridge/internal/server/auth"
	"github.com/dmitrijs2005/linguabridge/internal/server/config"
	"github.com/dmitrijs2005/linguabridge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linguabridge/internal/server/rest"
	"github.com/dmitrijs2005/linguabridge/internal/server/services"
	"github.com/dmitrijs2005/linguabridge/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

var (
	openDB                         = repomanager.OpenDB
	newRepositoryManager           = repomanager.NewPostgresRepositoryManager
	logOutput            io.Writer = os.Stdout
	shutdownSignals                = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(logOutput, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	dir, err := filex.EnsureSubdDir(c.TempAudioDir)
	if err != nil {
		return nil, fmt.Errorf("temp audio dir error: %w", err)
	}
	c.TempAudioDir = dir

	var archive services.AudioArchive
	if c.ArchiveEnabled() {
		a, err := storage.NewS3Archive(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("audio archive error: %w", err)
		}
		archive = a
	}

	if c.OpenAIAPIKey == "" {
		logger.Warn(ctx, "OpenAI API key not set, translation requests will fail")
	}

	upstream := ai.NewResilient(ai.NewClient(ai.Config{
		APIKey:             c.OpenAIAPIKey,
		BaseURL:            c.OpenAIBaseURL,
		TranscriptionModel: c.TranscriptionModel,
		TranslationModel:   c.TranslationModel,
		Timeout:            c.UpstreamTimeout,
	}), ai.ResilientConfig{MaxConcurrent: c.UpstreamMaxConcurrent}, logger)

	hasher := auth.NewPasswordHasher(c.PasswordHashCost, int64(c.PasswordHashConcurrency))

	us := services.NewUserService(db, rm, hasher, c)
	is := services.NewIdentityService(db, rm, c)
	ts := services.NewTranslationService(db, rm, upstream, upstream, archive, c, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: rest.NewHTTPServer(c, logger, us, is, ts),
	}, nil
}

// Run serves until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "name", app.config.AppName)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.httpServer.Run(ctx)
	})

	err := g.Wait()

	app.logger.Info(context.Background(), "App stopped")

	return err
}

// Close releases the database pool.
func (app *App) Close() error {
	return app.db.Close()
}
