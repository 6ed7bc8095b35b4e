package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/formatter"
	"github.com/boshu2/taskmcp/internal/taskmgr"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show work directory status",
	Long: `Display the wizard progress, the generated documents and the task
plan counts for the work directory.

Examples:
  taskmcp status
  taskmcp status -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	snap, err := newManager(cfg).Snapshot()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cfg.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return renderStatus(out, cfg.WorkDir, snap)
}

func renderStatus(w io.Writer, dir string, snap taskmgr.Snapshot) error {
	fmt.Fprintln(w, titleStyle.Render("taskmcp status: "+filepath.ToSlash(dir)))
	fmt.Fprintln(w)

	if snap.Wizard != nil {
		fmt.Fprintf(w, "Wizard: %d/%d answered\n\n", snap.Wizard.Answered, snap.Wizard.Total)
	}

	tbl := formatter.NewTable(w, "DOCUMENT", "STATE")
	for _, d := range snap.Documents {
		state := errStyle.Render("missing")
		if d.Present {
			state = okStyle.Render("present")
		}
		tbl.AddRow(d.Name, state)
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	if snap.Plan == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dimStyle.Render("No task plan yet. Run 'taskmcp call plan'."))
		return nil
	}

	c := snap.Plan.Counts
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tasks: %d done, %d in progress, %d pending (%d%%)\n", c.Done, c.InProgress, c.Pending, c.Percent())
	if snap.Plan.Current != "" {
		fmt.Fprintf(w, "Current: %s\n", snap.Plan.Current)
	}
	return nil
}
