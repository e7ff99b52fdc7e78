// Package analysis scores a resume against a job description with one model round trip.
package analysis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jonathan/resume-match/internal/llm"
	"github.com/jonathan/resume-match/internal/prompts"
	"github.com/jonathan/resume-match/internal/schemas"
	"github.com/jonathan/resume-match/internal/types"
)

// Analyzer issues exactly one model request per Analyze call.
// It keeps no state between calls and never retries.
type Analyzer struct {
	client     llm.Client
	tier       llm.ModelTier
	strict     bool
	schema     *llm.Schema
	jsonSchema map[string]any
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithTier selects the model tier used for analysis
func WithTier(tier llm.ModelTier) Option {
	return func(a *Analyzer) {
		a.tier = tier
	}
}

// WithStrictSchema makes the analyzer reject payloads that do not satisfy the
// declared schema, including the 0-100 score range. Off by default: the
// provider is trusted to honor the schema.
func WithStrictSchema(strict bool) Option {
	return func(a *Analyzer) {
		a.strict = strict
	}
}

// New creates an Analyzer backed by the given client
func New(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client: client,
		tier:   llm.TierStandard,
		schema: ResultSchema(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.jsonSchema = a.schema.JSONSchema()
	return a
}

// Analyze asks the model to assess how well the resume fits the job description.
// Inputs are assumed to be validated already.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescriptionText string) (*types.AnalysisResult, error) {
	prompt := BuildPrompt(resumeText, jobDescriptionText)

	text, err := a.client.GenerateJSON(ctx, prompt, a.schema, a.tier)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, &Error{Message: MsgNoResponse, Cause: err}
		}
		return nil, &APICallError{
			Message: "failed to generate analysis",
			Cause:   err,
		}
	}

	return a.parse(text)
}

// BuildPrompt embeds both texts verbatim in the analysis instruction
func BuildPrompt(resumeText, jobDescriptionText string) string {
	template := prompts.MustGet("analysis.json", "analyze-fit")
	return prompts.Format(template, map[string]string{
		"ResumeText":         resumeText,
		"JobDescriptionText": jobDescriptionText,
	})
}

func (a *Analyzer) parse(text string) (*types.AnalysisResult, error) {
	text = llm.CleanJSONBlock(text)
	if text == "" {
		return nil, &Error{Message: MsgNoResponse}
	}

	var result *types.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &Error{Message: MsgParseFailure, Cause: err}
	}
	if result == nil {
		return nil, &Error{Message: MsgParseFailure, Cause: errors.New("payload is null")}
	}

	if a.strict {
		if err := schemas.ValidateDocument(a.jsonSchema, text); err != nil {
			return nil, &Error{Message: MsgParseFailure, Cause: err}
		}
	}

	return result, nil
}
