package tools

import (
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/hirelens/internal/normalize"
	"github.com/cloo-solutions/hirelens/internal/schemas"
)

// NormalizeCmd turns a raw model response into the canonical evaluation.
func NormalizeCmd() *cobra.Command {
	var (
		file     string
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a raw evaluation response",
		Long: `Read a raw model response (fenced or bare JSON) and print the canonical
evaluation. With --validate the result is also checked against the evaluation
JSON schema and the command fails on violations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			eval := normalize.Normalize(data)
			if validate {
				if err := schemas.ValidateEvaluation(eval); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), eval)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Response file to read, - for stdin")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the output against the evaluation schema")

	return cmd
}
