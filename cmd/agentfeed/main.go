// Command agentfeed inspects recorded agent transcripts by replaying
// them through the stream decoder and correlator.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Global flags (persistent across all commands)
var (
	configPath   string
	defaultModel string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "agentfeed",
	Short: "Inspect recorded agent transcripts",
	Long: `agentfeed replays newline-delimited JSON transcripts emitted by an
agent runtime through the stream decoder and correlator, printing the
reconstructed timeline, subagent activity, and context-window usage.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&defaultModel, "default-model", "", "Model assumed when a turn omits one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
