package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/boshu2/taskmcp/internal/wizard"
)

var wizardFresh bool

var wizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Answer the requirement questions interactively",
	Long: `Ask the seven requirement questions in the terminal and write the
requirement documents when all are answered.

Progress is stored in the work directory after every answer, so an
interrupted wizard continues where it stopped. Use --fresh to start over.

Examples:
  taskmcp wizard
  taskmcp wizard --fresh --work-dir ./docs`,
	Args: cobra.NoArgs,
	RunE: runWizard,
}

func init() {
	rootCmd.AddCommand(wizardCmd)
	wizardCmd.Flags().BoolVar(&wizardFresh, "fresh", false, "Discard saved answers and start from the first question")
}

func runWizard(cmd *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return errors.New("wizard needs an interactive terminal; use 'taskmcp call' instead")
	}

	cfg := currentConfig()
	w := newManager(cfg).Wizard()
	out := cmd.OutOrStdout()

	reply, err := w.RunInteractive(cmd.Context(), wizard.HuhAsk, wizardFresh)
	if errors.Is(err, wizard.ErrAborted) {
		fmt.Fprintln(out, dimStyle.Render("중단되었습니다. 'taskmcp wizard'를 다시 실행하면 이어서 답변할 수 있습니다."))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("요구사항 문서 생성 완료"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, reply.Text)
	return nil
}
