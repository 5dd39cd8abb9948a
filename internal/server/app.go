// Package server wires the identity core together and runs it: store,
// notifier, event publisher, media storage, services and the gRPC
// transport, with signal handling and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/dbx"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/logging"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/auth"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/config"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/events"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/notify"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/memory"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/services"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/storage"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/timex"

	gs "github.com/dmitrijs2005/wildcard-newsfeed/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *gs.GRPCServer
	closers []io.Closer
}

// NewApp builds every component from c. With an empty DSN the in-memory
// store is used; without a RabbitMQ URL codes are logged; without Kafka
// brokers events are dropped.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger}

	tx, repos, err := app.initStore(ctx)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	var notifier services.Notifier
	if c.RabbitMQURL != "" {
		conn, err := notify.Dial(c.RabbitMQURL, c.EmailQueue)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("notifier init error: %w", err)
		}
		app.closers = append(app.closers, conn)
		notifier = notify.NewRabbitNotifier(conn.Channel(), c.EmailQueue)
	} else {
		logger.Warn(ctx, "no RabbitMQ URL configured, verification codes will be logged")
		notifier = notify.NewLogNotifier(logger)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(c.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(c.KafkaBrokers, c.KafkaTopic)
		app.closers = append(app.closers, publisher)
	}

	media, err := storage.NewS3Storage(ctx, storage.Options{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	clock := timex.SystemClock{}
	verification := services.NewVerificationService(tx, repos, notifier, clock, c.VerificationCodeTTL, c.OperationTimeout, logger)
	guard := services.NewResourceGuard(tx, repos)

	accounts := services.NewAccountService(services.AccountServiceDeps{
		Tx:           tx,
		Repos:        repos,
		Encoder:      auth.NewArgon2Encoder(auth.Argon2Params{Memory: c.PasswordHashMemory}),
		Sessions:     auth.NewTokenIssuer([]byte(c.SecretKey), c.SessionTokenValidityDuration, clock),
		Verification: verification,
		Guard:        guard,
		Events:       publisher,
		Clock:        clock,
		Timeout:      c.OperationTimeout,
		Logger:       logger,
	})

	mediaService := services.NewMediaService(services.MediaServiceDeps{
		Tx:      tx,
		Repos:   repos,
		Guard:   guard,
		Storage: media,
		Events:  publisher,
		Clock:   clock,
		MaxSize: c.MaxUploadSize,
		Timeout: c.OperationTimeout,
		Logger:  logger,
	})

	app.server, err = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, accounts, mediaService, guard, c.MaxUploadSize)
	if err != nil {
		app.close(ctx)
		return nil, err
	}

	return app, nil
}

func (app *App) initStore(ctx context.Context) (dbx.Transactor, repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database DSN configured, using in-memory store")
		s := memory.NewStore()
		return s, s, nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, db)

	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	return dbx.NewSQLTransactor(db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}), rm, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigs:
			cancelFunc()
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// close releases resources in reverse order of acquisition.
func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Error(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	stopSignals := app.initSignalHandler(cancelFunc)
	defer stopSignals()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
