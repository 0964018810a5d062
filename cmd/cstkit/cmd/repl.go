package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/internal/tui"
)

var replHistory bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Long: `Evaluates one expression per line.

Commands:
  :tree     - toggle syntax tree display
  :tokens   - toggle token table display
  :history  - show recent recorded evaluations
  :clear    - clear the transcript
  :quit     - leave the shell

Navigation:
  Enter     - evaluate
  Up/Down   - recall earlier input
  Ctrl+L    - clear the transcript
  Esc       - quit`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&replHistory, "history", false, "record evaluations in the history store")
}

func runREPL(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	store, err := e.openHistory(replHistory)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	p := tea.NewProgram(
		tui.NewModel(tui.Options{
			Pipeline:    e.pipeline,
			Store:       store,
			Prompt:      e.config.REPL.Prompt,
			HistorySize: e.config.REPL.HistorySize,
			Logger:      e.logger,
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}
