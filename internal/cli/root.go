// Package cli is the command line surface of movingavg.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chrisconley/movingavg/internal/app"
	"github.com/chrisconley/movingavg/internal/config"
	"github.com/chrisconley/movingavg/internal/sink"
)

const Help = `movingavg computes, for every minute between the first and the last event
of an input file, the average delivery duration of the events in the trailing
window of --window_size minutes, and writes the result as JSON.

Input: a JSON array (or newline-delimited JSON) of records such as
  {"timestamp": "2018-12-26 18:11:08.509654", "duration": 20}
sorted by timestamp.

Output: <output_dir>/<input name>_<window_size>.json containing
  [{"date": "2018-12-26 18:11:00", "average_delivery_time": 0}, ...]`

type flags struct {
	inputFile   string
	windowSize  int
	outputDir   string
	configPath  string
	natsURL     string
	natsSubject string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "movingavg --input_file <path> --window_size <minutes>",
		Short:         "per-minute moving average of delivery times",
		Long:          Help,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.inputFile, "input_file", "i", "", "path to the input JSON file")
	fs.IntVarP(&f.windowSize, "window_size", "w", 0, "size of the window in minutes (integer greater than 0)")
	fs.StringVarP(&f.outputDir, "output_dir", "o", "", "directory the result file is written to (default \"outputs\")")
	fs.StringVarP(&f.configPath, "config", "c", "", "optional YAML config file")
	fs.StringVar(&f.natsURL, "nats_url", "", "also publish the result to this NATS server")
	fs.StringVar(&f.natsSubject, "nats_subject", "", "NATS subject for published results")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")
	_ = cmd.MarkFlagRequired("input_file")

	return cmd
}

func run(cmd *cobra.Command, f flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	opts := app.Options{
		InputFile:       f.inputFile,
		WindowSize:      cfg.WindowSize,
		TimestampLayout: cfg.TimestampLayout,
	}
	if cmd.Flags().Changed("window_size") {
		opts.WindowSize = f.windowSize
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.natsURL != "" {
		cfg.NATS.URL = f.natsURL
	}
	if f.natsSubject != "" {
		cfg.NATS.Subject = f.natsSubject
	}

	if err := app.Validate(opts); err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), f.verbose)

	sinks := sink.Multi{sink.NewFileSink(cfg.OutputDir)}
	if cfg.NATS.URL != "" {
		nc, err := sink.DialNATS(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer nc.Close()
		sinks = append(sinks, sink.NewNATSSink(nc, cfg.NATS.Subject))
		logger.Debug("publishing to nats", "url", cfg.NATS.URL, "subject", cfg.NATS.Subject)
	}

	result, err := app.NewRunner(sinks, app.WithLogger(logger)).Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "The result can be found in %s\n", result.Location)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func fatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	fatal(err)
}
