package main

// replay the bitflip analysis over seed manifests without any broker

import (
	"b3flip/config"
	"b3flip/internal/bitflip"
	"b3flip/internal/branching"
	"b3flip/internal/progress"
	"b3flip/internal/scheduler"
	"b3flip/internal/seeds"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	manifest string
	output   string
	seed     int64
	batch    int
	verbose  bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("b3flip-dump", flag.ContinueOnError)
	fs.StringVar(&opts.manifest, "manifest", "", "seed manifest file or directory of manifests")
	fs.StringVar(&opts.output, "out", "-", "where to write the JSON lines, - for stdout")
	fs.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "seed of the leaf picker")
	fs.IntVar(&opts.batch, "batch", 256, "inputs generated per epoch")
	fs.BoolVar(&opts.verbose, "v", false, "log every session")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: b3flip-dump -manifest <path> [options]")
		fmt.Fprintln(fs.Output(), "\nOptions:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.manifest == "" {
		fs.Usage()
		return nil, fmt.Errorf("-manifest is required")
	}
	return opts, nil
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	lg, err := cfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return lg
}

func loadTree(path string, logger *zap.Logger) (*branching.Tree, error) {
	tree := branching.NewTree()
	manager := seeds.NewStandalone(tree, logger)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		err = manager.LoadDir(path)
	} else {
		err = manager.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	logger := newLogger(opts.verbose)
	defer logger.Sync()

	tree, err := loadTree(opts.manifest, logger)
	if err != nil {
		return fmt.Errorf("failed to load seeds: %w", err)
	}

	out := stdout
	if opts.output != "-" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	tracker := progress.NewTracker()
	analysis := bitflip.NewAnalysis(
		progress.Multi(tracker, progress.NewLogRecorder(logger, tracker)),
		bitflip.WithSeed(opts.seed),
		bitflip.WithLogger(logger.Named("bitflip")),
	)
	driver := scheduler.New(analysis, tree, scheduler.NewWriterSink(out), tracker,
		config.DriverConfig{BatchSize: opts.batch}, logger)
	if err := driver.Drain(ctx); err != nil {
		return err
	}

	stats := analysis.Statistics()
	logger.Info("replay finished",
		zap.Int("sessions", stats.StartCalls),
		zap.Int("generated", stats.GeneratedInputs),
		zap.Uint("max_bits", stats.MaxBits),
	)
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
