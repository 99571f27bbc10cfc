// Package main runs the newsletter service: a health check and a subscription
// form endpoint.
//
// Without flags or environment the service binds 127.0.0.1 on an ephemeral
// port and keeps nothing it receives.
//
// Run:
//
//	go run ./cmd/newsletter-service -config config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/r2r72/newsletter/cmd/newsletter-service/handlers"
	"github.com/r2r72/newsletter/internal/config"
	"github.com/r2r72/newsletter/internal/pkg/logger"
	"github.com/r2r72/newsletter/internal/service/subscription"
	"github.com/r2r72/newsletter/internal/startup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, nil); err != nil {
		fmt.Fprintf(os.Stderr, "newsletter-service: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts down gracefully. ready, if
// set, is called with the base URL once the server accepts connections.
func run(ctx context.Context, configPath string, ready func(url string)) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	repo, closeRepo, err := openRepository(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := subscription.NewService(repo, log)
	router := handlers.NewRouter(svc, log, handlers.Options{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		RateLimit:    cfg.HTTP.RateLimit,
		RateBurst:    cfg.HTTP.RateBurst,
		MaxFormBytes: cfg.HTTP.FormLimit(),
	})

	ln, err := startup.Listen(cfg.Server.Addr)
	if err != nil {
		return err
	}

	srv := startup.Run(ln, router, startup.Options{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       log,
	})
	log.Info("newsletter service listening", "url", srv.URL(), "sink", cfg.Storage.Sink)
	if ready != nil {
		ready(srv.URL())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-srv.Done()
		return srv.Err()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("newsletter service stopped")
	return nil
}
