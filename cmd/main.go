package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"pushhub/internal/config"
	"pushhub/internal/infrastructure/backplane"
	"pushhub/internal/infrastructure/hub"
	"pushhub/internal/infrastructure/logger"
	"pushhub/internal/infrastructure/server"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load(os.Getenv("PUSHHUB_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogrusLogger(cfg.Log.LoggerConfig())

	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Warn("Using the built-in development JWT secret; set PUSHHUB_AUTH_JWT_SECRET before going live")
	}

	hubInstance := hub.New(hub.Options{
		QueueSize:     cfg.Hub.QueueSize,
		SweepInterval: cfg.Hub.SweepInterval,
	}, newBackplane(cfg, log), log)

	// Start the hub before the router takes traffic.
	if err := hubInstance.Start(ctx); err != nil {
		log.Errorf("failed to start hub: %v", err)
		return
	}

	router := InitRouter(cfg, hubInstance, log)
	httpSrv := server.NewHTTPServer(server.Options{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, router)

	app := newApplication(cfg, log, httpSrv, hubInstance)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

// newBackplane picks the fan-out transport. Redis trouble is never fatal:
// the hub serves this instance's connections either way.
func newBackplane(cfg *config.Config, log logger.Logger) backplane.Backplane {
	if !cfg.Redis.Enabled {
		return backplane.NewLocal()
	}

	bp, err := backplane.NewRedis(backplane.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Channel:  cfg.Redis.Channel,
	}, log)
	if err != nil {
		log.Errorf("Redis backplane unavailable, falling back to local delivery: %v", err)
		return backplane.NewLocal()
	}

	log.Infof("Redis backplane connected (%s)", cfg.Redis.Addr)
	return bp
}

type Application struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv server.Server
	hub     *hub.Hub
}

func newApplication(
	cfg *config.Config,
	logger logger.Logger,
	httpSrv *server.HTTPServer,
	hubInstance *hub.Hub,
) *Application {
	return &Application{
		cfg:     cfg,
		logger:  logger.WithField("app", "pushhub"),
		httpSrv: httpSrv,
		hub:     hubInstance,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			app.cfg.Server.ShutdownTimeout,
		)
		defer cancel()

		// Stop the hub first so open streams end before the server starts
		// waiting on in-flight requests.
		if err := app.hub.Stop(gracefulshutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		return app.httpSrv.Stop(gracefulshutdownCtx)
	})

	err := eg.Wait()
	if err != nil {
		return err
	}

	return nil
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
