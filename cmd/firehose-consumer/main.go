// firehose-consumer subscribes to an AT Protocol relay's repo firehose,
// classifies and decodes each operation's record, and exports the
// resulting stream to the configured sink while publishing Prometheus
// metrics.
//
// It reads configuration from config.json in the working directory.
//
// Usage:
//
//	./firehose-consumer              # reads ./config.json, starts consuming
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/primal-host/firehose-consumer/internal/config"
	"github.com/primal-host/firehose-consumer/internal/eventstream"
	"github.com/primal-host/firehose-consumer/internal/firehose"
	"github.com/primal-host/firehose-consumer/internal/promexport"
	"github.com/primal-host/firehose-consumer/internal/ratecounter"
	"github.com/primal-host/firehose-consumer/internal/sink"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("firehose-consumer starting...")

	// Load configuration.
	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (relay=%s exporter=%s)", cfg.RelayHost, cfg.Exporter)

	logger := slog.Default()

	// Root context cancelled on SIGINT or SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, shutting down...", sig)
		cancel()
	}()

	registry := prometheus.NewRegistry()
	promSink := sink.NewPrometheus(registry, cfg.MaxSampleSize, cfg.NormalizeLangs)

	configuredSink, err := sink.Build(ctx, sink.Config{
		Selector:      cfg.Exporter,
		OutputPath:    cfg.OutputPath,
		DocStoreConn:  cfg.DocStoreConn,
		FetchUserData: cfg.FetchUserData,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to build sink: %v", err)
	}
	defer func() {
		if err := configuredSink.Close(); err != nil {
			log.Printf("Warning: sink close failed: %v", err)
		}
	}()

	out := sink.NewMulti(logger, promSink, configuredSink)

	// Start the metrics server (blocks internally until ctx is cancelled).
	metricsServer := promexport.New(cfg.MetricsAddr, registry)
	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			log.Printf("Warning: metrics server stopped: %v", err)
		}
	}()

	rate := ratecounter.New(logger)
	go rate.Run(ctx, 30*time.Second)

	driver := firehose.NewDriver(cfg.RelayHost, logger)
	stream := eventstream.New(logger)

	commits := driver.Commits(ctx)
	records := stream.Run(ctx, commits)

	for rec := range records {
		if err := out.Export(ctx, rec); err != nil {
			logger.Warn("export failed", "err", err)
		}
		rate.Add(1)
	}

	log.Println("firehose-consumer stopped")
}
