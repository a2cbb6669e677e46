package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/codebook/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for codebook.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codebook",
		Short: "Assemble data codebooks from a data table and its metadata",
		Long: `codebook assembles a codebook document for a tabular dataset.

It reads a CSV data table and a metadata file that declares each column,
checks the data against the declarations, and lays out a document with an
overview, a data dictionary, summary statistics and frequency tables for
every variable, figures, and an appendix of data quality issues.

Jobs can be given on the command line or declared in a .codebook.yaml
project file. Builds are recorded in a local history database so data
quality can be compared between releases.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Project file path (default: .codebook.yaml in current or home directory)")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewBuildCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger that masks credentials. Logs go
// to w so rendered documents on stdout stay clean.
func setupLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	verbose := getVerboseFlag(cmd)
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs = false
	}
	if jsonLogs {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}
