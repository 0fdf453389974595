// Package harvest implements the harvest command: it fans out one
// crawl run across every configured source and prints a per-source
// summary when the run completes.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsharvest/internal/config"
	"github.com/jonesrussell/newsharvest/internal/crawl"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
	"github.com/jonesrussell/newsharvest/internal/sink"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// shutdownTimeout bounds the metrics server shutdown in scheduled mode.
const shutdownTimeout = 5 * time.Second

// schedule holds the --schedule flag: a cron expression that switches
// the command from one-shot to scheduled mode.
var schedule string

// Command returns the harvest command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest all configured news sources",
		Long: `Harvest runs one crawl session per configured source concurrently,
publishes accepted records to the event stream, and writes per-source
CSV snapshots. With --schedule it keeps running and harvests on the
given cron expression.`,
		RunE: runHarvest,
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", `cron expression for scheduled mode (e.g. "0 */6 * * *")`)
	return cmd
}

// runHarvest wires the application and runs either a single harvest or
// the scheduled loop.
func runHarvest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	srcs, err := sources.Load(cfg.Crawl.SourceFile, log)
	if err != nil {
		if errors.Is(err, sources.ErrNoSources) {
			log.Info("No sources found in configuration. Please add sources to your source file.",
				"file", cfg.Crawl.SourceFile)
			return nil
		}
		return fmt.Errorf("failed to load sources: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	sinks, cleanup, err := buildSinks(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	orch := crawl.NewOrchestrator(
		srcs.GetSources(),
		crawl.NewRunnerFactory(crawl.FactoryDeps{
			Crawl:   cfg.Crawl,
			Extract: cfg.Extract,
			Topic:   cfg.Stream.Topic,
			Sink:    sinks,
			Logger:  log,
			Metrics: m,
		}),
		log,
		m,
	)

	ctx := cmd.Context()
	if schedule != "" {
		return runScheduled(ctx, orch, registry, cfg.Metrics.Address, log)
	}

	summary := orch.Run(ctx)
	renderSummary(summary)
	return nil
}

// buildSinks assembles the delivery sinks from configuration. The
// archive sink is attached only when Elasticsearch is enabled.
func buildSinks(cfg *config.Config, log logger.Interface) (*sink.Sinks, func(), error) {
	stream, err := sink.NewStreamPublisher(sink.StreamConfig{
		Addr:     cfg.Stream.Addr,
		Password: cfg.Stream.Password,
		DB:       cfg.Stream.DB,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to event stream: %w", err)
	}

	sinks := &sink.Sinks{
		Stream:    stream,
		Snapshots: sink.NewCSVWriter(cfg.Crawl.SnapshotDir, log),
	}

	if cfg.Elasticsearch.Enabled {
		archive, archiveErr := sink.NewArchiveIndexer(sink.ArchiveConfig{
			Addresses:   cfg.Elasticsearch.Addresses,
			Username:    cfg.Elasticsearch.Username,
			Password:    cfg.Elasticsearch.Password,
			APIKey:      cfg.Elasticsearch.APIKey,
			IndexPrefix: cfg.Elasticsearch.IndexPrefix,
		}, log)
		if archiveErr != nil {
			stream.Close()
			return nil, nil, fmt.Errorf("failed to create archive indexer: %w", archiveErr)
		}
		sinks.Archive = archive
	}

	cleanup := func() {
		if err := stream.Close(); err != nil {
			log.Warn("Failed to close stream publisher", "error", err)
		}
	}
	return sinks, cleanup, nil
}

// runScheduled runs harvests on the cron schedule until interrupted.
// A metrics endpoint is served for the lifetime of the process.
func runScheduled(
	ctx context.Context,
	orch *crawl.Orchestrator,
	registry *prometheus.Registry,
	metricsAddr string,
	log logger.Interface,
) error {
	server := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Serving metrics", "address", metricsAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()

	scheduler := cron.New()
	_, err := scheduler.AddFunc(schedule, func() {
		summary := orch.Run(ctx)
		renderSummary(summary)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	log.Info("Starting scheduled harvesting", "schedule", schedule)
	scheduler.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down")
	}

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// renderSummary prints the per-source results table.
func renderSummary(summary crawl.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Records", "Stop Reason", "Error"})

	names := make([]string, 0, len(summary.Results))
	for name := range summary.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := summary.Results[name]
		errText := ""
		if result.Err != nil {
			errText = result.Err.Error()
		}
		t.AppendRow(table.Row{
			result.Source,
			result.Records,
			string(result.Reason),
			errText,
		})
	}

	t.AppendFooter(table.Row{"Total", summary.Total, summary.Duration.Round(time.Millisecond), ""})
	t.Render()
}
