// Package server wires the taxvault server together: database and
// migrations, the blob backend, the encryption cipher, services and the
// REST API. It also handles graceful shutdown on OS signals.
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

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/cryptox"
	"github.com/dmitrijs2005/taxvault/internal/export"
	"github.com/dmitrijs2005/taxvault/internal/logging"
	"github.com/dmitrijs2005/taxvault/internal/report"
	"github.com/dmitrijs2005/taxvault/internal/server/config"
	"github.com/dmitrijs2005/taxvault/internal/server/httpapi"
	"github.com/dmitrijs2005/taxvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taxvault/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

// Seams for tests.
var (
	sqlOpen      = sql.Open
	newS3Backend = func(ctx context.Context, c blobstore.S3Config) (blobstore.Backend, error) {
		return blobstore.NewS3BackendFromConfig(ctx, c)
	}
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	backend, err := newBackend(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	limits := blobstore.Limits{MaxFileSize: c.MaxUploadSize, AllowedMimeTypes: c.AllowedMimeTypes}
	store := blobstore.NewStore(backend, cryptox.NewCipher(c.EncryptionPassword), limits, logger)

	fs := services.NewFileService(store, logger)
	ls := services.NewLedgerService(db, rm, logger)
	es := services.NewExportService(ls, report.NewGenerator(), export.NewArchiver(store, logger), logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := httpapi.NewServer(httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		SecretKey:       c.SecretKey,
		AllowedOrigins:  c.AllowedOrigins,
		ShutdownTimeout: c.ShutdownTimeout,
		Registry:        reg,
	}, logger, fs, ls, es)

	return &App{config: c, logger: logger, db: db, http: srv}, nil
}

// newBackend picks the blob backend named by the configuration.
func newBackend(ctx context.Context, c *config.Config) (blobstore.Backend, error) {
	switch c.StorageBackend {
	case config.StorageFS, "":
		return blobstore.NewFSBackend(c.StorageRoot), nil
	case config.StorageS3:
		b, err := newS3Backend(ctx, blobstore.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
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
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StorageBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
