package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jask/confirmform/internal/form"
	"github.com/jask/confirmform/internal/json"
)

var errInvalidForm = errors.New("form has validation errors")

type issueReport struct {
	Kind    form.Kind  `json:"kind"`
	Field   form.Field `json:"field"`
	Message string     `json:"message"`
}

type validationReport struct {
	Valid   bool          `json:"valid"`
	Errors  []issueReport `json:"errors,omitempty"`
	Payload *form.Payload `json:"payload,omitempty"`
}

func newValidateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Runs save-time validation on a form document",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := rt.logger(cmd, false)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")

			report, err := validateDocument(path, rt.formOptions(logger))
			if err != nil {
				return err
			}
			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printReport(cmd, report)
			}
			if !report.Valid {
				return errInvalidForm
			}
			return nil
		},
		Example: `
	confirmform validate -f confirmation.yaml
	confirmform validate -f confirmation.json --json
	`,
	}
	cmd.Flags().StringP("file", "f", "", "YAML or JSON form document to validate")
	cmd.Flags().Bool("json", false, "Output the validation result in JSON format")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// validateDocument loads the document into a fresh form and saves it.
func validateDocument(path string, opts form.Options) (validationReport, error) {
	doc, err := form.ReadDocument(path)
	if err != nil {
		return validationReport{}, err
	}
	f := form.New(opts)
	if err := f.Load(doc); err != nil {
		return validationReport{}, fmt.Errorf("loading document: %w", err)
	}

	saved, err := f.Save()
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		report := validationReport{Errors: make([]issueReport, 0, len(verr.Issues))}
		for _, is := range verr.Issues {
			report.Errors = append(report.Errors, issueReport{Kind: is.Kind, Field: is.Field, Message: is.Message})
		}
		return report, nil
	case err != nil:
		return validationReport{}, err
	}
	return validationReport{Valid: true, Payload: &saved}, nil
}

func printReport(cmd *cobra.Command, report validationReport) {
	status := cmd.ErrOrStderr()
	if !report.Valid {
		pterm.Warning.WithWriter(status).Println(form.ErrorTitle)
		items := make([]pterm.BulletListItem, 0, len(report.Errors))
		for _, e := range report.Errors {
			items = append(items, pterm.BulletListItem{Level: 0, Text: e.Message})
		}
		_ = pterm.DefaultBulletList.WithItems(items).WithWriter(status).Render()
		return
	}
	pterm.Success.WithWriter(status).Println("form is valid: " + report.Payload.String())
	_ = printJSON(cmd.OutOrStdout(), report.Payload)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
