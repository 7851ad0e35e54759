package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papapumpkin/mnoda/internal/archive"
	"github.com/papapumpkin/mnoda/internal/telemetry"
	"github.com/papapumpkin/mnoda/internal/ui"
	"github.com/papapumpkin/mnoda/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Validate documents in a directory as they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Bool("archive", false, "store every valid document in the archive")
	watchCmd.Flags().String("events", "", "append a JSONL event for every change to this file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	printer := ui.NewWriter(cmd.ErrOrStderr())
	ctx, cancel := setupSignalContext(cmd.Context(), printer)
	defer cancel()

	var arc *archive.Archive
	if store, _ := cmd.Flags().GetBool("archive"); store {
		arc, err = archive.Open(ctx, cfg.ArchivePath, logger)
		if err != nil {
			return err
		}
		defer arc.Close()
	}

	var events *telemetry.Emitter
	if path, _ := cmd.Flags().GetString("events"); path != "" {
		events, err = telemetry.NewEmitter(path)
		if err != nil {
			return err
		}
		defer events.Close()
	}
	emit := func(evt telemetry.Event) {
		if err := events.Emit(evt); err != nil {
			logger.Warn("recording event", zap.Error(err))
		}
	}

	w, err := watch.New(args[0], cfg.WatchDebounce, nil, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	emit(telemetry.Event{Kind: telemetry.KindWatchStart, Path: args[0]})
	defer emit(telemetry.Event{Kind: telemetry.KindWatchStop, Path: args[0]})

	for {
		select {
		case <-ctx.Done():
			return nil
		case r, ok := <-w.Results:
			if !ok {
				return nil
			}
			emit(resultEvent(r))
			switch {
			case r.Removed:
				printer.Removed(r.Path)
			case r.Err != nil:
				printer.Invalid(r.Path, r.Err)
			default:
				printer.Valid(r.Path, r.Records, r.Relationships)
				if arc == nil {
					continue
				}
				if err := arc.PutDocument(ctx, r.Document); err != nil {
					logger.Error("archiving document", zap.String("path", r.Path), zap.Error(err))
					continue
				}
				emit(telemetry.Event{Kind: telemetry.KindDocumentArchived, Path: r.Path, Records: r.Records})
			}
		}
	}
}

// resultEvent describes a watch result as a telemetry event.
func resultEvent(r watch.Result) telemetry.Event {
	evt := telemetry.Event{Path: r.Path}
	switch {
	case r.Removed:
		evt.Kind = telemetry.KindDocumentRemoved
	case r.Err != nil:
		evt.Kind = telemetry.KindDocumentInvalid
		evt.Error = r.Err.Error()
	default:
		evt.Kind = telemetry.KindDocumentValid
		evt.Records = r.Records
		evt.Relationships = r.Relationships
	}
	return evt
}

// setupSignalContext returns a context that is canceled on SIGINT or SIGTERM.
func setupSignalContext(parent context.Context, printer *ui.Printer) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			printer.Info("\nshutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
