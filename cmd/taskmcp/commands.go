package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/commands"
	"github.com/boshu2/taskmcp/internal/formatter"
)

var commandsDir string

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Manage slash-command files",
	Long: `Install or remove the task-* slash-command files.

The files are written to paths.commands_dir (default ~/.claude/commands).

Examples:
  taskmcp commands install
  taskmcp commands remove --dir ./.claude/commands`,
}

var commandsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the slash-command files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := newInstaller().Install(cmd.Context())
		if err != nil {
			return fmt.Errorf("install commands: %w", err)
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

var commandsRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the slash-command files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := newInstaller().Remove(cmd.Context())
		if err != nil {
			return fmt.Errorf("remove commands: %w", err)
		}
		return printReport(cmd.OutOrStdout(), report)
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.AddCommand(commandsInstallCmd, commandsRemoveCmd)
	commandsCmd.PersistentFlags().StringVar(&commandsDir, "dir", "", "Target directory (default: paths.commands_dir)")
}

func newInstaller() *commands.Installer {
	dir := commandsDir
	if dir == "" {
		dir = currentConfig().Paths.CommandsDir
	}
	return commands.NewInstaller(dir)
}

func printReport(w io.Writer, report commands.Report) error {
	if currentConfig().Output == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	tbl := formatter.NewTable(w, "FILE", "ACTION").SetMaxWidth(0, 40)
	for _, f := range report.Files {
		tbl.AddRow(f.Name, string(f.Action))
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render("directory: "+report.Dir))
	if report.DirRemoved {
		fmt.Fprintln(w, okStyle.Render("empty directory removed"))
	}
	return nil
}
