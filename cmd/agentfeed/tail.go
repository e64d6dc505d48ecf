package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quillpad/agentcore/internal/jsonl"
)

var tailCmd = &cobra.Command{
	Use:   "tail <transcript.jsonl>",
	Short: "Follow a growing transcript, printing task transitions live",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return tailTranscript(ctx, cfg, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
}

// tailTranscript replays the existing file content, then feeds lines
// appended by the writer until ctx is cancelled.
func tailTranscript(ctx context.Context, cfg Config, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch transcript: %w", err)
	}

	p := newPipeline(cfg, out)
	reader := jsonl.NewTail(f)

	drain := func() error {
		for {
			line, err := reader.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			p.feedLine(line)
		}
	}

	if err := drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			p.printSummary()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				if err := drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch transcript: %w", err)
		}
	}
}
