// Package main provides the resume_match CLI: a web server and a one-shot analyzer
// that score how well a resume fits a job description.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resume_match",
		Short: "Resume to job description fit analyzer",
		Long:  "Resume Match scores how well a resume fits a job description and suggests concrete improvements, from a web page or the command line.",
		// Runtime failures are not usage errors
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newAnalyzeCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
