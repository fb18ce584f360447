package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jask/confirmform/internal/form"
	loglib "github.com/jask/confirmform/internal/log"
	"github.com/jask/confirmform/internal/rules"
)

var errInvalidFact = errors.New("facts must be given as name=value")

type resolutionReport struct {
	Value      string `json:"value"`
	Alternate  bool   `json:"alternate"`
	Expression string `json:"expression,omitempty"`
}

func newResolveCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Prints the confirmation a form document applies to a set of field values",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := rt.logger(cmd, false)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			rawFacts, _ := cmd.Flags().GetStringArray("fact")
			asJSON, _ := cmd.Flags().GetBool("json")

			facts, err := parseFacts(rawFacts)
			if err != nil {
				return err
			}
			report, err := validateDocument(path, rt.formOptions(logger))
			if err != nil {
				return err
			}
			if !report.Valid {
				printReport(cmd, report)
				return errInvalidForm
			}

			resolver, err := form.NewResolver()
			if err != nil {
				return err
			}
			res, err := resolver.Resolve(*report.Payload, facts)
			if err != nil {
				return fmt.Errorf("resolving confirmation: %w", err)
			}
			logger.Debug("confirmation resolved", loglib.Fields{"alternate": res.Alternate, "expression": res.Expression})

			if asJSON {
				return printJSON(cmd.OutOrStdout(), resolutionReport(res))
			}
			which := "default"
			if res.Alternate {
				which = "alternate"
			}
			pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln("%s confirmation applies", which)
			fmt.Fprintln(cmd.OutOrStdout(), res.Value)
			return nil
		},
		Example: `
	confirmform resolve -f confirmation.yaml --fact country=US --fact plan=pro
	confirmform resolve -f confirmation.yaml --fact country=US --json
	`,
	}
	cmd.Flags().StringP("file", "f", "", "YAML or JSON form document")
	cmd.Flags().StringArray("fact", nil, "Submitted field value as name=value; repeatable")
	cmd.Flags().Bool("json", false, "Output the resolution in JSON format")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseFacts turns name=value pairs into a map. Values may contain '='.
func parseFacts(raw []string) (map[string]string, error) {
	facts := make(map[string]string, len(raw))
	for _, r := range raw {
		if !utf8.ValidString(r) {
			return nil, fmt.Errorf("%w: %q is not valid UTF-8", errInvalidFact, r)
		}
		name, value, ok := strings.Cut(r, "=")
		name = rules.Trim(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidFact, r)
		}
		facts[name] = value
	}
	return facts, nil
}
