// Package main provides an interactive CLI for the exec command.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configpkg "github.com/minhyannv/spawn-go/pkg/config"
	loggerpkg "github.com/minhyannv/spawn-go/pkg/logger"
	"github.com/minhyannv/spawn-go/pkg/metrics"
	"github.com/minhyannv/spawn-go/pkg/spawn"
)

// main is the program entry point.
func main() {
	opts, err := parseCLIConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions) error {
	level := loggerpkg.ParseLevel(os.Getenv("SPAWN_LOG_LEVEL"))
	if opts.Config.Debug {
		level = loggerpkg.LevelDebug
	}
	appLogger := loggerpkg.New(os.Stderr, "spawn", level)

	h, err := spawn.New(opts.Config, spawn.WithLogger(appLogger))
	if err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		srv := serveMetrics(opts.MetricsAddr, appLogger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if opts.Watch {
		go func() {
			err := configpkg.Watch(ctx, opts.ConfigPath, appLogger, func(cfg configpkg.Config) {
				if err := h.Reload(cfg); err != nil {
					loggerpkg.Warn(appLogger, "config reload rejected", loggerpkg.Fields{"error": err.Error()})
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				loggerpkg.Error(appLogger, "config watch stopped", loggerpkg.Fields{"error": err.Error()})
			}
		}()
	}

	return runREPL(ctx, h, replOptions{
		SessionID: opts.SessionID,
		GuildID:   opts.GuildID,
		UserID:    opts.UserID,
		Verbose:   opts.Config.Debug,
		Logger:    appLogger,
	}, os.Stdin, os.Stdout)
}

func serveMetrics(addr string, logger loggerpkg.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		loggerpkg.Info(logger, "metrics listening", loggerpkg.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerpkg.Error(logger, "metrics server failed", loggerpkg.Fields{"error": err.Error()})
		}
	}()
	return srv
}
