package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/mnoda/internal/telemetry"
	"github.com/papapumpkin/mnoda/internal/ui"
)

var eventsCmd = &cobra.Command{
	Use:   "events <file>",
	Short: "Print the event log written by watch --events",
	Long: `Reads and formats a JSONL event log produced by "mnoda watch --events".

With --follow (-f), keeps printing new events as they are appended (like tail -f).`,
	Args: cobra.ExactArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	path := args[0]
	follow, _ := cmd.Flags().GetBool("follow")

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: open %s: %w", path, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	printLines(cmd.OutOrStdout(), reader)
	if !follow {
		return nil
	}

	ctx, cancel := setupSignalContext(cmd.Context(), ui.NewWriter(cmd.ErrOrStderr()))
	defer cancel()
	return tailFollow(ctx, cmd.OutOrStdout(), reader, path)
}

// printLines prints every complete line currently available from r.
func printLines(w io.Writer, r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			printEvent(w, line)
		}
		if err != nil {
			return
		}
	}
}

// tailFollow watches path with fsnotify and prints events appended to it
// until ctx is canceled.
func tailFollow(ctx context.Context, w io.Writer, r *bufio.Reader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				printLines(w, r)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Local().Format(time.TimeOnly)), evt.Kind}
	if evt.Path != "" {
		parts = append(parts, evt.Path)
	}
	if evt.Records > 0 || evt.Relationships > 0 {
		parts = append(parts, fmt.Sprintf("records=%d relationships=%d", evt.Records, evt.Relationships))
	}
	if evt.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", evt.Error))
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}
