package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/hirelens/internal/cli"
	"github.com/cloo-solutions/hirelens/internal/cli/admin"
	"github.com/cloo-solutions/hirelens/internal/cli/tools"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hirelensd",
		Short: "Hirelens candidate evaluation service",
		Long: `Hirelens segments CVs, retrieves the relevant chunks and asks a language
model to evaluate candidates against a job blueprint.

Running without a subcommand starts the API server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())
	rootCmd.AddCommand(tools.SegmentCmd())
	rootCmd.AddCommand(tools.NormalizeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
