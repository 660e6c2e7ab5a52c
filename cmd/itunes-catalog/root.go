package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/itunes-catalog/catalog"
	"github.com/aluiziolira/itunes-catalog/config"
	"github.com/aluiziolira/itunes-catalog/export"
	"github.com/aluiziolira/itunes-catalog/models"
	"github.com/aluiziolira/itunes-catalog/parser"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	artist      string
	limit       int
	timeout     time.Duration
	cacheSize   int
	output      string
	format      string
	metricsAddr string
	verbose     bool
	logFormat   string
	rows        int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "itunes-catalog",
		Short:         "Fetch an artist's songs from the iTunes Search API and summarize them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, logfmt, or json")

	searchFlags := root.Flags()
	searchFlags.StringVar(&opts.artist, "artist", "", "Artist search term")
	searchFlags.IntVar(&opts.limit, "limit", 0, "Maximum tracks returned (1-200)")
	searchFlags.DurationVar(&opts.timeout, "timeout", 0, "Request timeout, 0 disables")
	searchFlags.IntVar(&opts.cacheSize, "cache-size", 0, "In-memory response cache entries")
	searchFlags.StringVar(&opts.output, "output", "", "Export file for the projected table")
	searchFlags.StringVar(&opts.format, "format", "", "Export format: none, csv, json, or dual")
	searchFlags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	searchFlags.IntVar(&opts.rows, "rows", 10, "Projected rows to print")

	root.AddCommand(newPlaytimeCmd())
	return root
}

func newPlaytimeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "playtime <millis>...",
		Short: "Convert millisecond durations into minutes and seconds.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid duration %q: %w", arg, err)
				}
				values[i] = v
			}
			series := models.Series{Name: models.DurationColumn, Values: values}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlaytime(series, parser.ComputePlaytime(series)))
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("artist") {
		cfg.Artist = opts.artist
	}
	if flags.Changed("limit") {
		cfg.Limit = opts.limit
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("cache-size") {
		cfg.CacheSize = opts.cacheSize
	}
	if flags.Changed("output") {
		cfg.OutputFile = opts.output
		if !flags.Changed("format") && cfg.OutputFormat == "none" {
			cfg.OutputFormat = formatFromExt(opts.output)
		}
	}
	if flags.Changed("format") {
		cfg.OutputFormat = strings.ToLower(opts.format)
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(opts.logFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid configuration: %v\n", err)
		return err
	}

	logger := newLogger(os.Stderr, cfg.Verbose, cfg.LogFormat)
	slog.SetDefault(logger)

	client, err := catalog.NewClient(cfg)
	if err != nil {
		slog.Error("initialising client", slog.Any("error", err))
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsServer := startMetricsServer(cfg.MetricsAddr, client.Metrics)

	slog.Info("starting search",
		slog.String("artist", cfg.Artist),
		slog.Int("limit", cfg.Limit),
		slog.String("url", client.URL()),
	)

	start := time.Now()
	result, err := client.FetchAndProject(ctx)
	if err != nil {
		shutdownMetricsServer(metricsServer)
		return err
	}
	playtime := client.Playtime(result.Durations)

	if cfg.OutputFormat != "none" {
		if err := writeOutput(cfg.OutputFormat, cfg.OutputFile, result.Projected); err != nil {
			slog.Error("export failed", slog.Any("error", err))
			shutdownMetricsServer(metricsServer)
			return err
		}
		slog.Info("exported projected table",
			slog.String("file", cfg.OutputFile),
			slog.String("format", cfg.OutputFormat),
		)
	}

	printSummary(cmd, result, playtime, time.Since(start), opts.rows)
	shutdownMetricsServer(metricsServer)
	return nil
}

func writeOutput(format, filename string, table *models.Table) error {
	writer, err := export.New(format, filename)
	if err != nil {
		return err
	}
	if err := writer.Write(table); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return writer.Validate()
}

func startMetricsServer(addr string, metrics *catalog.Metrics) *http.Server {
	if addr == "" || metrics == nil {
		return nil
	}
	server := &http.Server{
		Addr:    addr,
		Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	slog.Info("metrics server enabled", slog.String("addr", addr))
	return server
}

func shutdownMetricsServer(server *http.Server) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", slog.Any("error", err))
	}
}

func formatFromExt(filename string) string {
	switch strings.ToLower(filename[strings.LastIndex(filename, ".")+1:]) {
	case "json", "jsonl", "ndjson":
		return "json"
	default:
		return "csv"
	}
}
