package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/mcpserver"
	"github.com/boshu2/taskmcp/internal/metrics"
	"github.com/boshu2/taskmcp/internal/taskmgr"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task operations over MCP stdio",
	Long: `Run the MCP server on stdin/stdout.

Every operation is registered as a tool (start, submit-answer, plan,
start-task, complete, resume, status, reset) and as a prompt under its
slash-command name (task-new, task-plan, ...). Logs go to stderr.

When metrics.addr is configured, Prometheus metrics are served on
http://<addr>/metrics.

Examples:
  taskmcp serve
  TASKMCP_METRICS_ADDR=127.0.0.1:9464 taskmcp serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := currentConfig()
	logger := loggerFrom(cmd)

	m := metrics.New()
	mgr := newManager(cfg, taskmgr.WithRecorder(m))
	srv := mcpserver.New(mgr, cfg.Server.Name, version)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics endpoint stopped")
			}
		}()
	}

	logger.Info().Str("work_dir", cfg.WorkDir).Str("version", version).Msg("starting task manager")
	err := srv.Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
