// Package server wires configuration, storage, services and transports
// together and runs the HTTP API and the gRPC health endpoint until the
// process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/audiokeeper/internal/filex"
	"github.com/dmitrijs2005/audiokeeper/internal/logging"
	"github.com/dmitrijs2005/audiokeeper/internal/server/auth"
	"github.com/dmitrijs2005/audiokeeper/internal/server/blob"
	"github.com/dmitrijs2005/audiokeeper/internal/server/config"
	"github.com/dmitrijs2005/audiokeeper/internal/server/events"
	"github.com/dmitrijs2005/audiokeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/audiokeeper/internal/server/services"
	"github.com/dmitrijs2005/audiokeeper/internal/server/store"
	"github.com/dmitrijs2005/audiokeeper/internal/server/telemetry"

	gs "github.com/dmitrijs2005/audiokeeper/internal/server/grpc"
)

const (
	serviceName     = "audiokeeper"
	shutdownTimeout = 10 * time.Second
	healthInterval  = 10 * time.Second
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     *store.Store
	publisher events.Publisher
	handler   http.Handler
	shutdown  func(context.Context) error
}

// NewApp opens the database, applies migrations and builds every service.
// Resources acquired before a failure are released.
func NewApp(ctx context.Context, c *config.Config) (app *App, err error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	shutdown, err := telemetry.Setup(ctx, serviceName, c.OTELEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}
	defer func() {
		if err != nil {
			_ = shutdown(context.Background())
		}
	}()

	if c.DBDriver == store.DriverSQLite && c.DatabaseDSN == "" {
		if _, err := filex.EnsureParentDir(c.SQLitePath); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}

	st, err := store.Open(ctx, store.Config{Driver: c.DBDriver, DSN: c.DSN()})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err != nil {
			_ = st.Close()
		}
	}()

	if err := st.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(c.SecretKey, c.JWTAlgorithm, c.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	var pub events.Publisher = events.NewNopPublisher()
	if c.NATSURL != "" {
		np, err := events.NewNATSPublisher(c.NATSURL, logger)
		if err != nil {
			return nil, fmt.Errorf("nats: %w", err)
		}
		pub = np
	}

	presigner := blob.NewPresigner(blob.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		BaseEndpoint: c.S3BaseEndpoint,
		Bucket:       c.S3Bucket,
	})

	accounts := services.NewAccountService(st.Users(), auth.NewHasher(c.BcryptCost), tokens, pub, logger)
	files := services.NewAudioFileService(st.AudioFiles(), presigner, logger)

	handler := httpapi.NewRouter(httpapi.Deps{
		Accounts:       accounts,
		AudioFiles:     files,
		Logger:         logger,
		Ready:          st.Ping,
		AllowedOrigins: c.CORSAllowedOrigins,
	})

	return &App{
		config:    c,
		logger:    logger,
		store:     st,
		publisher: pub,
		handler:   handler,
		shutdown:  shutdown,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, ln net.Listener) {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(sctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server stopped", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.store.Ping, healthInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc health server stopped", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// shuts both servers down and releases resources.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	ln, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		app.close()
		return fmt.Errorf("http listen: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, ln)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.close()
}

func (app *App) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return errors.Join(
		app.publisher.Close(),
		app.store.Close(),
		app.shutdown(ctx),
	)
}
