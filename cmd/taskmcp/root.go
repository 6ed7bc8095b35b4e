package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/config"
	"github.com/boshu2/taskmcp/internal/logging"
	"github.com/boshu2/taskmcp/internal/storage"
	"github.com/boshu2/taskmcp/internal/taskmgr"
	"github.com/boshu2/taskmcp/internal/wizard"
)

var (
	// Global flags
	verbose bool
	output  string
	workDir string
	cfgFile string

	// appConfig is loaded once per invocation before any subcommand runs.
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taskmcp",
	Short: "Task manager MCP server",
	Long: `taskmcp manages a project from requirements to finished tasks.

A seven-question wizard collects the requirements and writes
requirements.md, designed.md and technical_spec.md into the work
directory. From there a five-phase task plan is generated and walked
one task at a time.

Commands:
  serve        Serve the operations as MCP tools over stdio
  call         Run a single operation
  wizard       Answer the requirement questions in the terminal
  status       Show work directory status
  commands     Install or remove the slash-command files
  config       Show resolved configuration`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		syncConfigFlagToEnv()

		cfg, err := config.Load(flagOverrides(cmd))
		if err != nil {
			return err
		}
		appConfig = cfg

		logger := logging.New(logging.Options{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Verbose: cfg.Verbose,
		})
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&workDir, "work-dir", "", "Work directory for documents and state (default: docs)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .taskmcp/config.yaml)")
}

// flagOverrides returns the flag layer of the configuration. Only flags
// that were set on the command line take part.
func flagOverrides(cmd *cobra.Command) *config.Config {
	overrides := &config.Config{Verbose: verbose}
	if cmd.Flags().Changed("output") {
		overrides.Output = output
	}
	if cmd.Flags().Changed("work-dir") {
		overrides.WorkDir = workDir
	}
	return overrides
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		return
	}
	_ = os.Setenv("TASKMCP_CONFIG", path)
}

// currentConfig returns the loaded configuration, or defaults when the
// pre-run hook was skipped.
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

// newManager builds the operation manager for cfg.
func newManager(cfg *config.Config, opts ...taskmgr.Option) *taskmgr.Manager {
	store := storage.NewFileStorage(storage.WithBaseDir(cfg.WorkDir))
	opts = append(opts, taskmgr.WithWizardOptions(wizard.WithStateFile(cfg.Wizard.StateFile)))
	return taskmgr.New(store, opts...)
}

func loggerFrom(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}
