package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/confirmform/internal/form"
	"github.com/jask/confirmform/internal/json"
	"github.com/jask/confirmform/internal/tui"
)

func newEditCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Opens the interactive confirmation editor",
		Long:  "Opens the interactive confirmation editor. The last saved configuration is printed as JSON on exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := rt.logger(cmd, true)
			if err != nil {
				return err
			}

			opts := tui.Options{Form: rt.formOptions(logger), Logger: logger}
			if path, _ := cmd.Flags().GetString("file"); path != "" {
				doc, err := form.ReadDocument(path)
				if err != nil {
					return err
				}
				opts.Document = &doc
			}

			app, err := tui.New(opts)
			if err != nil {
				return err
			}
			prog := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := prog.Run(); err != nil {
				return fmt.Errorf("running editor: %w", err)
			}

			saved, ok := app.Saved()
			if !ok {
				logger.Info("editor closed without saving")
				return nil
			}
			b, err := json.MarshalIndent(saved)
			if err != nil {
				return fmt.Errorf("encoding saved configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
		Example: `
	confirmform edit
	confirmform edit -f confirmation.yaml > saved.json
	`,
	}
	cmd.Flags().StringP("file", "f", "", "YAML or JSON form document to start from")
	return cmd
}
