// Command evolution tracks communities across dated snapshots of a graph.
//
// Usage:
//
//	evolution [flags] graph.2020-01-01.tsv graph.2020-02-01.tsv ...
//
// Each input is a tab-separated edge list with a header row. The snapshot
// date is read from the file name.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-evolution/pkg/config"
	"github.com/dd0wney/cluso-evolution/pkg/edgelist"
	"github.com/dd0wney/cluso-evolution/pkg/export"
	"github.com/dd0wney/cluso-evolution/pkg/logging"
	"github.com/dd0wney/cluso-evolution/pkg/metrics"
	"github.com/dd0wney/cluso-evolution/pkg/pipeline"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "evolution: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds the flags that override configuration values
type cliFlags struct {
	config        *string
	threshold     *float64
	period        *string
	algorithm     *string
	maxIterations *int
	workers       *int
	stableWindow  *int
	out           *string
	compress      *bool
	centrality    *bool
	logLevel      *string
	logFile       *string
	metricsFile   *string
	postgres      *string
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		config:        fs.String("config", "", "YAML configuration file"),
		threshold:     fs.Float64("threshold", 0, "Stability threshold for stable identities (default 0.34)"),
		period:        fs.String("period", "", "Snapshot period: month, week, day or none"),
		algorithm:     fs.String("algorithm", "", "Community detection: louvain, label_propagation or components"),
		maxIterations: fs.Int("max-iterations", 0, "Iteration bound for community detection"),
		workers:       fs.Int("workers", 0, "Concurrent workers (default number of CPUs)"),
		stableWindow:  fs.Int("stable-window", 0, "Consecutive equal ids that make a stable period"),
		out:           fs.String("out", "", "Output directory"),
		compress:      fs.Bool("compress", false, "Snappy-compress output files"),
		centrality:    fs.Bool("centrality", false, "Export degree and PageRank per snapshot"),
		logLevel:      fs.String("log-level", "", "Console log level"),
		logFile:       fs.String("log-file", "", "Also write DEBUG logs to this file"),
		metricsFile:   fs.String("metrics-file", "", "Write Prometheus metrics to this file at exit"),
		postgres:      fs.String("postgres", "", "PostgreSQL URL to load results into"),
	}
}

// apply copies every flag set explicitly on the command line into cfg
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "threshold":
			cfg.StabilityThreshold = *f.threshold
		case "period":
			cfg.Period = *f.period
		case "algorithm":
			cfg.Algorithm = *f.algorithm
		case "max-iterations":
			cfg.MaxIterations = *f.maxIterations
		case "workers":
			cfg.Workers = *f.workers
		case "stable-window":
			cfg.StableWindow = *f.stableWindow
		case "out":
			cfg.OutputDir = *f.out
		case "compress":
			cfg.Compress = *f.compress
		case "centrality":
			cfg.Centrality = *f.centrality
		case "log-level":
			cfg.LogLevel = *f.logLevel
		case "log-file":
			cfg.LogFile = *f.logFile
		case "metrics-file":
			cfg.MetricsFile = *f.metricsFile
		case "postgres":
			cfg.PostgresDSN = *f.postgres
		}
	})
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("evolution", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := registerFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no edge list given")
	}

	cfg, err := config.Load(*flags.config)
	if err != nil {
		return err
	}
	flags.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	if cfg.MetricsFile != "" {
		defer func() {
			if err := reg.WriteToTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("failed to write metrics", logging.Error(err))
			}
		}()
	}

	logger.Info("start", logging.Count(fs.NArg()))

	loadStart := time.Now()
	set, err := edgelist.NewLoader(cfg.Workers, logger).LoadAll(ctx, fs.Args())
	if err != nil {
		reg.RecordPhase(metrics.PhaseLoad, "error", time.Since(loadStart))
		return err
	}
	reg.RecordPhase(metrics.PhaseLoad, "success", time.Since(loadStart))

	p, err := pipeline.New(cfg, nil, logger, reg)
	if err != nil {
		return err
	}

	out, err := p.Run(ctx, set)
	if err != nil {
		return err
	}

	sink, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()

	if err := p.Write(ctx, out, sink); err != nil {
		return err
	}

	logger.Info("done", logging.RunID(out.RunID), logging.Latency(out.Elapsed))
	return nil
}

// newLogger logs to stderr at the configured level and, with a log file,
// everything down to DEBUG into that file
func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, func(), error) {
	console := logging.NewJSONLogger(stderr, cfg.Level())
	if cfg.LogFile == "" {
		return console, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	file := logging.NewJSONLogger(f, logging.DebugLevel)
	return logging.NewTeeLogger(console, file), func() { _ = f.Close() }, nil
}

// newSink writes files under the output directory and, with a database
// URL, loads the same tables into PostgreSQL
func newSink(ctx context.Context, cfg *config.Config, logger logging.Logger) (export.Sink, error) {
	files, err := export.NewFileSink(cfg.OutputDir, cfg.Compress, logger)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresDSN == "" {
		return files, nil
	}

	pg, err := export.NewPostgresSink(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		_ = files.Close()
		return nil, err
	}
	return export.MultiSink{files, pg}, nil
}
