package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillpad/agentcore/internal/jsonl"
	"github.com/quillpad/agentcore/protocol"
	"github.com/quillpad/agentcore/stream"
	"github.com/quillpad/agentcore/subtask"
	"github.com/quillpad/agentcore/timeline"
)

var replayCmd = &cobra.Command{
	Use:   "replay <transcript.jsonl>",
	Short: "Replay a transcript and print the reconstructed timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open transcript: %w", err)
		}
		defer f.Close()

		p := newPipeline(cfg, cmd.OutOrStdout())
		if err := p.feed(jsonl.NewReader(f)); err != nil {
			return err
		}
		p.printSummary()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// pipeline wires decoder, correlator, and task coordinator together for
// transcript replay.
type pipeline struct {
	dec *stream.Decoder
	cor *timeline.Correlator
	out io.Writer
}

func newPipeline(cfg Config, out io.Writer) *pipeline {
	model := defaultModel
	if model == "" {
		model = cfg.DefaultModel
	}

	decOpts := []stream.DecoderOption{
		stream.WithDefaultModel(model),
		stream.WithLogger(slog.Default()),
	}
	for id, tokens := range cfg.ContextWindows {
		decOpts = append(decOpts, stream.WithContextWindow(id, tokens))
	}

	p := &pipeline{out: out}

	coord := subtask.NewCoordinator(
		subtask.WithCoordinatorLogger(slog.Default()),
		subtask.WithObserver(subtask.ObserverFunc(p.printTask)),
	)

	corOpts := []timeline.CorrelatorOption{
		timeline.WithCorrelatorLogger(slog.Default()),
	}
	if cfg.TaskTool != "" {
		corOpts = append(corOpts, timeline.WithTaskToolName(cfg.TaskTool))
	}
	if cfg.ProbeTool != "" {
		corOpts = append(corOpts, timeline.WithProbeToolName(cfg.ProbeTool))
	}

	p.dec = stream.NewDecoder(decOpts...)
	p.cor = timeline.NewCorrelator(coord, corOpts...)
	return p
}

// feed runs every transcript line through the pipeline. Unparseable lines
// are skipped with a warning; a broken line must not abort the replay.
func (p *pipeline) feed(r *jsonl.Reader) error {
	for {
		line, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		p.feedLine(line)
	}
}

func (p *pipeline) feedLine(line []byte) {
	msg, err := protocol.ParseTraceEntry(line)
	if err != nil {
		slog.Warn("skipping malformed transcript line", "error", err)
		return
	}
	if msg == nil {
		return
	}

	for _, ev := range p.dec.Decode(msg) {
		p.cor.Apply(ev)
	}

	// The decoder never emits done; turn completion is signaled by the
	// transcript's final-result entries.
	if msg.Kind() == protocol.MessageKindFinalResult {
		p.cor.Apply(stream.DoneEvent{})
	}
}

func (p *pipeline) printTask(r subtask.Record) {
	key := r.AgentID
	if key == "" {
		key = r.TaskID
	}
	fmt.Fprintf(p.out, "[task %s] %s", key, r.Status)
	if r.Result != "" {
		fmt.Fprintf(p.out, ": %s", truncate(r.Result, 100))
	}
	fmt.Fprintln(p.out)
}

func (p *pipeline) printSummary() {
	t := p.cor.Timeline()

	fmt.Fprintf(p.out, "session %s, %d turns\n", t.SessionID, t.Turns)
	for _, entry := range t.Entries {
		switch entry.Kind {
		case timeline.EntryText:
			fmt.Fprintf(p.out, "  text     %s\n", truncate(entry.Content, 80))
		case timeline.EntryThinking:
			fmt.Fprintf(p.out, "  thinking %s\n", truncate(entry.Content, 80))
		case timeline.EntryTool:
			inv := entry.Tool
			fmt.Fprintf(p.out, "  tool     %s [%s] %s\n", inv.Name, inv.Status, truncate(inv.Result, 60))
		case timeline.EntryBlocked:
			fmt.Fprintf(p.out, "  blocked  %s\n", truncate(entry.Content, 80))
		case timeline.EntryError:
			fmt.Fprintf(p.out, "  error    %s\n", truncate(entry.Content, 80))
		case timeline.EntryCompact:
			fmt.Fprintln(p.out, "  -- context compacted --")
		}
	}

	for _, agg := range t.Subagents {
		fmt.Fprintf(p.out, "subagent %s [%s] %d nested tools\n", truncate(agg.Description, 50), agg.Status, len(agg.Nested))
	}

	if t.Usage != nil {
		u := t.Usage
		fmt.Fprintf(p.out, "context: %d/%d tokens (%d%%) on %s\n", u.OccupiedTokens, u.ContextWindowSize, u.Percentage, u.Model)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
