package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-match/internal/ingestion"
	"github.com/jonathan/resume-match/internal/observability"
	"github.com/jonathan/resume-match/internal/pipeline"
	"github.com/jonathan/resume-match/internal/presentation"
)

type analyzeOptions struct {
	common     commonFlags
	resumePath string
	jobPath    string
	jobURL     string
	useBrowser bool
	jsonOutput bool
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one resume against one job description",
		Long:  "Read a resume (text, PDF or DOCX) and a job description (file or URL), run one analysis and print the score, strengths, missing skills and recommendations.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, &opts)
		},
	}

	opts.common.register(cmd)
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to resume file (.txt, .md, .pdf, .docx)")
	cmd.Flags().StringVarP(&opts.jobPath, "job", "j", "", "Path to job description file")
	cmd.Flags().StringVarP(&opts.jobURL, "job-url", "u", "", "URL of the job posting")
	cmd.Flags().BoolVar(&opts.useBrowser, "use-browser", false, "Render the job posting in headless Chrome if the page looks client-rendered")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	cmd.MarkFlagsOneRequired("job", "job-url")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	cfg, err := opts.common.resolve()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	printer := observability.NewPrinter(cmd.OutOrStdout())

	resumeText, resumeMeta, err := ingestion.FromFile(ctx, opts.resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	var jobText string
	var jobMeta *ingestion.Metadata
	if opts.jobURL != "" {
		jobText, jobMeta, err = ingestion.FromURL(ctx, opts.jobURL, opts.useBrowser, cfg.Verbose)
	} else {
		jobText, jobMeta, err = ingestion.FromFile(ctx, opts.jobPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	if cfg.Verbose && !opts.jsonOutput {
		printer.PrintSource("resume", resumeMeta)
		printer.PrintSource("job description", jobMeta)
	}

	p, client, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	st, err := p.Submit(ctx, resumeText, jobText)
	if err != nil {
		return err
	}
	view := presentation.Bind(st)

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	} else {
		printer.PrintView(view)
	}

	if st.Phase == pipeline.PhaseFailed {
		return errors.New(view.ErrorMessage)
	}
	return nil
}
