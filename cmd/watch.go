package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core/ingest"
	"github.com/gaurav-prasanna/reportpipe/core/output"
	"github.com/gaurav-prasanna/reportpipe/core/preview"
	"github.com/gaurav-prasanna/reportpipe/core/render"
	"github.com/gaurav-prasanna/reportpipe/core/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagWatchOut      string
	flagWatchFormat   string
	flagWatchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <record.json>",
	Short: "Keep a live preview in sync with a report snapshot",
	Long: `Watch polls a report snapshot and recompiles the preview after edits settle.
Each finished preview atomically replaces the output file, so a viewer never
sees a partial document.

Examples:
  reportpipe watch report.json --out preview.pdf
  reportpipe watch report.json --out preview.html --format html`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&flagWatchOut, "out", "preview.pdf", "Preview file to keep updated")
	watchCmd.Flags().StringVar(&flagWatchFormat, "format", "pdf", "Preview format: pdf, html, markdown or json")
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 250*time.Millisecond, "Snapshot polling interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	snapshot := args[0]
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	renderer, err := render.ForFormat(flagWatchFormat)
	if err != nil {
		return err
	}

	sched := preview.New(preview.Config{
		Compile:  session.Compiler(cfg.ComposeOptions(), renderer),
		Debounce: cfg.Debounce(),
		Logger:   log,
		OnSwap: func(b *preview.RenderedBuffer) {
			if err := output.WriteFile(flagWatchOut, b.Bytes()); err != nil {
				fmt.Fprintf(os.Stderr, "✗ Write error: %v\n", err)
				return
			}
			fmt.Fprintf(os.Stdout, "✓ Preview #%d: %s\n", b.Seq(), flagWatchOut)
		},
	})
	defer sched.Close()

	rec, err := loadRecord(snapshot)
	if err != nil {
		return err
	}
	s := session.New(rec, session.Config{
		Pipeline: ingest.New(cfg.PipelineConfig(log)),
		Compose:  cfg.ComposeOptions(),
		Preview:  sched,
		Logger:   log,
	})
	s.Replace(rec)

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stdout, "Watching %s (Ctrl-C to stop)\n", snapshot)
	return poll(ctx, snapshot, flagWatchInterval, func() {
		rec, err := loadRecord(snapshot)
		if err != nil {
			log.Warn("snapshot unreadable", zap.String("file", snapshot), zap.Error(err))
			return
		}
		s.Replace(rec)
	})
}

// poll calls changed whenever path's modification time or size moves, until
// ctx is done.
func poll(ctx context.Context, path string, every time.Duration, changed func()) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	last, size := info.ModTime(), info.Size()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().Equal(last) && info.Size() == size {
				continue
			}
			last, size = info.ModTime(), info.Size()
			changed()
		}
	}
}
