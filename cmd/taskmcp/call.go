package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/formatter"
	"github.com/boshu2/taskmcp/internal/progress"
	"github.com/boshu2/taskmcp/internal/taskmgr"
)

var callAnswer string

var callCmd = &cobra.Command{
	Use:   "call <operation>",
	Short: "Run a single operation",
	Long: `Run one task manager operation against the work directory and print
its response. Operation names and their slash-command aliases are both
accepted.

Operations:
  start          (task-new)         Start the requirement questions
  submit-answer  (task-new-answer)  Answer the current question (--answer)
  plan           (task-plan)        Write project_task.md
  start-task     (task-start)       Start the next task
  complete       (task-complete)    Complete the task in progress
  resume         (task-resume)      Resume the task in progress
  status         (task-status)      Summarize progress
  reset          (task-clean)       Delete the work directory

Examples:
  taskmcp call start
  taskmcp call submit-answer --answer "할일 관리 앱"
  taskmcp call task-status -o json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: operationNames(),
	RunE:      runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringVar(&callAnswer, "answer", "", "Answer for submit-answer")
}

func operationNames() []string {
	var names []string
	for _, info := range taskmgr.Operations() {
		names = append(names, string(info.Name), info.Alias)
	}
	return names
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	f, err := formatter.ForOutput(cfg.Output)
	if err != nil {
		return err
	}

	callArgs := map[string]any{}
	if cmd.Flags().Changed("answer") {
		callArgs[taskmgr.ArgAnswer] = callAnswer
	}

	logger := loggerFrom(cmd)
	sink := progress.SinkFunc(func(_ context.Context, u progress.Update) {
		if !u.Final {
			logger.Debug().Str("session", u.SessionID).Msg(u.Message)
		}
	})

	res, err := newManager(cfg).Dispatch(cmd.Context(), args[0], callArgs, taskmgr.WithSink(sink))
	if err != nil {
		return err
	}

	if err := f.Format(cmd.OutOrStdout(), &formatter.Record{
		Operation:  string(res.Operation),
		Text:       res.Text,
		IsError:    res.IsError,
		SessionID:  res.SessionID,
		DurationMS: res.Duration.Milliseconds(),
	}); err != nil {
		return err
	}
	if res.IsError {
		return fmt.Errorf("%s failed", res.Operation)
	}
	return nil
}
