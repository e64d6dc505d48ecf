package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds agentfeed settings loaded from a YAML file.
type Config struct {
	// DefaultModel is assumed when an assistant turn omits a model name.
	DefaultModel string `yaml:"default_model"`
	// ContextWindows overrides context window sizes per model id.
	ContextWindows map[string]int `yaml:"context_windows"`
	// TaskTool overrides the task-spawning tool name.
	TaskTool string `yaml:"task_tool"`
	// ProbeTool overrides the output-probe tool name.
	ProbeTool string `yaml:"probe_tool"`
}

// loadConfig reads the config file at path. An empty path returns the
// zero config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
