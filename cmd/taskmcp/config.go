package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/config"
)

var (
	configShow bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `View taskmcp configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (TASKMCP_*)
  3. Project config (.taskmcp/config.yaml)
  4. Home config (~/.taskmcp/config.yaml)
  5. Defaults

Environment variables:
  TASKMCP_CONFIG        - Explicit config file path (overrides the project config location)
  TASKMCP_OUTPUT        - Output format (text, json)
  TASKMCP_WORK_DIR      - Work directory (default: docs)
  TASKMCP_VERBOSE       - Enable debug logging (true/1)
  TASKMCP_LOG_LEVEL     - Log level (debug, info, warn, error)
  TASKMCP_LOG_FORMAT    - Log format (auto, console, json)
  TASKMCP_SERVER_NAME   - MCP server name (default: task-manager)
  TASKMCP_METRICS_ADDR  - Prometheus listen address (empty disables)
  TASKMCP_COMMANDS_DIR  - Slash-command directory (default: ~/.claude/commands)
  TASKMCP_STATE_FILE    - Wizard state file name (default: .task_new_state.json)

Examples:
  taskmcp config --show           # Show resolved configuration
  taskmcp config --show -o json   # Output as JSON`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

var configEnvVars = []string{
	"TASKMCP_CONFIG",
	"TASKMCP_OUTPUT",
	"TASKMCP_WORK_DIR",
	"TASKMCP_VERBOSE",
	"TASKMCP_LOG_LEVEL",
	"TASKMCP_LOG_FORMAT",
	"TASKMCP_SERVER_NAME",
	"TASKMCP_METRICS_ADDR",
	"TASKMCP_COMMANDS_DIR",
	"TASKMCP_STATE_FILE",
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		return cmd.Help()
	}

	flagOutput := ""
	if cmd.Flags().Changed("output") {
		flagOutput = output
	}
	flagWorkDir := ""
	if cmd.Flags().Changed("work-dir") {
		flagWorkDir = workDir
	}
	resolved := config.Resolve(flagOutput, flagWorkDir, verbose)
	out := cmd.OutOrStdout()

	if currentConfig().Output == "json" {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, "taskmcp Configuration")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Config files:")
	home, _ := os.UserHomeDir()
	printConfigFile(out, "Home:   ", filepath.Join(home, ".taskmcp", "config.yaml"))
	projectConfig := os.Getenv("TASKMCP_CONFIG")
	if projectConfig == "" {
		cwd, _ := os.Getwd()
		projectConfig = filepath.Join(cwd, ".taskmcp", "config.yaml")
	}
	printConfigFile(out, "Project:", projectConfig)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Resolved values:")
	fmt.Fprintf(out, "  output:             %v  (from %s)\n", resolved.Output.Value, resolved.Output.Source)
	fmt.Fprintf(out, "  work_dir:           %v  (from %s)\n", resolved.WorkDir.Value, resolved.WorkDir.Source)
	fmt.Fprintf(out, "  verbose:            %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Fprintf(out, "  log.level:          %v  (from %s)\n", resolved.LogLevel.Value, resolved.LogLevel.Source)
	fmt.Fprintf(out, "  log.format:         %v  (from %s)\n", resolved.LogFormat.Value, resolved.LogFormat.Source)
	fmt.Fprintf(out, "  server.name:        %v  (from %s)\n", resolved.ServerName.Value, resolved.ServerName.Source)
	fmt.Fprintf(out, "  metrics.addr:       %v  (from %s)\n", resolved.MetricsAddr.Value, resolved.MetricsAddr.Source)
	fmt.Fprintf(out, "  paths.commands_dir: %v  (from %s)\n", resolved.CommandsDir.Value, resolved.CommandsDir.Source)
	fmt.Fprintf(out, "  wizard.state_file:  %v  (from %s)\n", resolved.StateFile.Value, resolved.StateFile.Source)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables (if set):")
	anySet := false
	for _, env := range configEnvVars {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(out, "  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Fprintln(out, "  (none set)")
	}
	return nil
}

func printConfigFile(out io.Writer, label, path string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  ✓ %s %s\n", label, path)
	} else {
		fmt.Fprintf(out, "  ✗ %s %s (not found)\n", label, path)
	}
}
