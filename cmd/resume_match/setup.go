package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-match/internal/analysis"
	"github.com/jonathan/resume-match/internal/config"
	"github.com/jonathan/resume-match/internal/llm"
	"github.com/jonathan/resume-match/internal/pipeline"
)

// newLLMClient is replaced in tests
var newLLMClient = llm.NewClient

// commonFlags are shared by serve and analyze
type commonFlags struct {
	configPath string
	flags      config.Config
}

func (c *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.configPath, "config", "", "Path to JSON config file")
	cmd.Flags().StringVar(&c.flags.Model, "model", "", "Gemini model name (overrides config)")
	cmd.Flags().BoolVar(&c.flags.StrictSchema, "strict-schema", false, "Reject model output that violates the response schema")
	cmd.Flags().BoolVarP(&c.flags.Verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve merges flags over the config file, then the environment credential.
func (c *commonFlags) resolve() (config.Config, error) {
	file := config.Config{}
	if c.configPath != "" {
		loaded, err := config.LoadConfig(c.configPath)
		if err != nil {
			return config.Config{}, err
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		file = *loaded
	}

	merged := c.flags.MergeWithDefaults(file)
	merged = merged.MergeWithDefaults(config.Config{APIKey: config.APIKeyFromEnv()})
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	if merged.APIKey == "" {
		return config.Config{}, errors.New("GEMINI_API_KEY (or API_KEY) environment variable is required")
	}
	return merged, nil
}

// buildPipeline wires the model client, analyzer and pipeline for cfg.
// The caller closes the returned client.
func buildPipeline(ctx context.Context, cfg config.Config) (*pipeline.Pipeline, llm.Client, error) {
	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(llm.TierStandard, cfg.Model)
	}

	client, err := newLLMClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if cfg.Verbose {
		log.Printf("[VERBOSE] Model: %s (strict schema: %t)", client.GetModel(llm.TierStandard), cfg.StrictSchema)
	}

	analyzer := analysis.New(client, analysis.WithStrictSchema(cfg.StrictSchema))
	return pipeline.New(analyzer), client, nil
}
