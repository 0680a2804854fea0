/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements replicatorctl, a command line host for the MSK
// replicator handler. Each verb submits one request and keeps re-invoking the
// handler on the cadence it asks for until the operation reaches an outcome.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chainguard.dev/mskreplicator/handler"
	"chainguard.dev/mskreplicator/reconcilers/replicatorreconciler"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kafka"
	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Region      string `env:"AWS_REGION,default=us-east-1"`
	Endpoint    string `env:"KAFKA_ENDPOINT"`
	MaxRetry    int    `env:"MAX_RETRY,default=5"`
	MetricsPort int    `env:"METRICS_PORT"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	Concurrency int    `env:"CONCURRENCY,default=1"`

	// TraceExporter selects where handler spans go: none, otlp or stdout.
	TraceExporter string `env:"TRACE_EXPORTER,default=none"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}
	ctx = clog.WithLogger(ctx, clog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	shutdownTracing, err := setupTracing(ctx, cfg.TraceExporter, os.Stderr)
	if err != nil {
		clog.FatalContextf(ctx, "setting up tracing: %v", err)
	}

	stopMetrics := func() {}
	if cfg.MetricsPort > 0 {
		stopMetrics = serveMetrics(ctx, cfg.MetricsPort)
	}

	err = newRootCmd(&cfg, newHandler).ExecuteContext(ctx)

	// os.Exit skips deferred calls, so flush spans and stop serving first.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	if serr := shutdownTracing(shutdownCtx); serr != nil {
		clog.WarnContextf(ctx, "tracer provider shutdown: %v", serr)
	}
	cancelShutdown()
	stopMetrics()

	if err != nil {
		var fe *failedError
		if !errors.As(err, &fe) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// newHandler builds a handler backed by the MSK API in the configured region.
func newHandler(cfg *config) (replicatorreconciler.Invoker, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	return handler.New(kafka.New(sess)), nil
}

func serveMetrics(ctx context.Context, port int) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		clog.InfoContextf(ctx, "Serving metrics on port %d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.ErrorContextf(ctx, "metrics server failed: %v", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			clog.WarnContextf(ctx, "metrics server shutdown: %v", err)
		}
	}
}
