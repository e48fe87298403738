// Command pricing-server is the reference wiring of the dbcommon
// library: it fetches credentials from the remote config service,
// builds the MySQL pool, and serves the embedded frontend alongside a
// small pricing API. Pool construction strictly precedes server
// start; a fetch or pool failure is fatal.
package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mardens-inc/dbcommon/conndata"
	"github.com/mardens-inc/dbcommon/httperr"
	"github.com/mardens-inc/dbcommon/webserver"
)

//go:embed wwwroot
var wwwroot embed.FS

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(cfg config, logger *zap.Logger) error {
	ctx := context.Background()

	fetcher := conndata.NewFetcher(
		conndata.WithBaseURL(cfg.BaseURL),
		conndata.WithDatabase(cfg.Database),
		conndata.WithInsecureTLS(cfg.InsecureTLS),
		conndata.WithLogger(logger),
	)
	data, err := fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	poolCfg := conndata.DefaultPoolConfig(cfg.Database)
	poolCfg.InsecureTLS = cfg.InsecureTLS
	pool, err := conndata.CreatePool(ctx, data, poolCfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	assets, err := fs.Sub(wwwroot, "wwwroot")
	if err != nil {
		return err
	}

	render := httperr.NewRenderer(cfg.Env, logger)
	api := newAPI(pool, render)

	srv, err := webserver.New(webserver.Config{
		Port:   cfg.Port,
		Env:    cfg.Env,
		Logger: logger,
		Assets: assets,
		Routes: func(r chi.Router) {
			r.Mount("/api", api.Routes())
		},
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
