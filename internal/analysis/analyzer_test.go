package analysis

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-match/internal/llm"
	"github.com/jonathan/resume-match/internal/llm/llmtest"
	"github.com/jonathan/resume-match/internal/types"
)

const goodFitPayload = `{"score":85,"summary":"Good fit","strengths":["A"],"missingSkills":["B"],"recommendations":[{"category":"Skills","suggestion":"Add X","example":"X: used in Y"}]}`

func TestAnalyze_Success(t *testing.T) {
	client := &llmtest.Client{Response: goodFitPayload}
	a := New(client)

	result, err := a.Analyze(t.Context(), "resume body", "job body")
	require.NoError(t, err)

	assert.Equal(t, &types.AnalysisResult{
		Score:         85,
		Summary:       "Good fit",
		Strengths:     []string{"A"},
		MissingSkills: []string{"B"},
		Recommendations: []types.OptimizationSuggestion{
			{Category: "Skills", Suggestion: "Add X", Example: "X: used in Y"},
		},
	}, result)
	assert.Len(t, client.Calls(), 1)
}

func TestAnalyze_PreservesOrder(t *testing.T) {
	payload := `{
		"score": 42.5,
		"summary": "Partial",
		"strengths": ["Go", "SQL", "Kubernetes"],
		"missingSkills": ["Rust", "Terraform"],
		"recommendations": [
			{"category": "Keywords", "suggestion": "first", "example": "1"},
			{"category": "Formatting", "suggestion": "second", "example": "2"},
			{"category": "Experience", "suggestion": "third", "example": "3"}
		]
	}`
	a := New(&llmtest.Client{Response: payload})

	result, err := a.Analyze(t.Context(), "r", "j")
	require.NoError(t, err)

	assert.Equal(t, 42.5, result.Score)
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, result.Strengths)
	assert.Equal(t, []string{"Rust", "Terraform"}, result.MissingSkills)
	require.Len(t, result.Recommendations, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, want, result.Recommendations[i].Suggestion)
	}
}

func TestAnalyze_RequestShape(t *testing.T) {
	client := &llmtest.Client{Response: goodFitPayload}
	a := New(client)

	resume := "Senior engineer {{.JobDescriptionText}} with 10 years of Go"
	jd := "We need a Go engineer\nwith distributed systems experience"
	_, err := a.Analyze(t.Context(), resume, jd)
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	call := calls[0]

	assert.Equal(t, llm.TierStandard, call.Tier)
	assert.Contains(t, call.Prompt, "Resume Content:\n"+resume+"\n")
	assert.Contains(t, call.Prompt, "Job Description Content:\n"+jd+"\n")
	assert.Contains(t, call.Prompt, "Provide a strict JSON response assessing the fit.")

	require.NotNil(t, call.Schema)
	assert.Equal(t, llm.TypeObject, call.Schema.Type)
	assert.Equal(t, []string{"score", "summary", "strengths", "missingSkills", "recommendations"}, call.Schema.Required)
}

func TestAnalyze_EmptyResponse(t *testing.T) {
	tests := []struct {
		name   string
		client *llmtest.Client
	}{
		{name: "empty text", client: &llmtest.Client{Response: ""}},
		{name: "whitespace text", client: &llmtest.Client{Response: "  \n"}},
		{name: "provider reports no text", client: &llmtest.Client{Err: fmt.Errorf("%w: no candidates", llm.ErrEmptyResponse)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(tt.client).Analyze(t.Context(), "r", "j")
			assert.Nil(t, result)
			assert.True(t, IsNoResponse(err), "expected no-response error, got %v", err)
			assert.False(t, IsParseFailure(err))
		})
	}
}

func TestAnalyze_ParseFailure(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not JSON", payload: "Sorry, I cannot help with that."},
		{name: "truncated", payload: `{"score": 85, "summary": "Go`},
		{name: "array", payload: `[1, 2, 3]`},
		{name: "null", payload: `null`},
		{name: "wrong field type", payload: `{"score": "high"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(&llmtest.Client{Response: tt.payload}).Analyze(t.Context(), "r", "j")
			assert.Nil(t, result)
			assert.True(t, IsParseFailure(err), "expected parse failure, got %v", err)

			var ae *Error
			require.ErrorAs(t, err, &ae)
			assert.NotNil(t, ae.Unwrap())
		})
	}
}

func TestAnalyze_FencedPayload(t *testing.T) {
	client := &llmtest.Client{Response: "```json\n" + goodFitPayload + "\n```"}

	result, err := New(client).Analyze(t.Context(), "r", "j")
	require.NoError(t, err)
	assert.Equal(t, 85.0, result.Score)
}

func TestAnalyze_TransportError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	client := &llmtest.Client{Err: cause}

	result, err := New(client).Analyze(t.Context(), "r", "j")
	assert.Nil(t, result)

	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNoResponse(err))
	assert.False(t, IsParseFailure(err))
	assert.Len(t, client.Calls(), 1, "no retry")
}

func TestAnalyze_TrustsSchemaByDefault(t *testing.T) {
	payload := `{"score": 140, "summary": "", "strengths": [], "missingSkills": [], "recommendations": []}`

	result, err := New(&llmtest.Client{Response: payload}).Analyze(t.Context(), "r", "j")
	require.NoError(t, err)
	assert.Equal(t, 140.0, result.Score)
}

func TestAnalyze_StrictSchema(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		valid   bool
	}{
		{name: "valid", payload: goodFitPayload, valid: true},
		{name: "score above range", payload: `{"score": 140, "summary": "", "strengths": [], "missingSkills": [], "recommendations": []}`},
		{name: "negative score", payload: `{"score": -1, "summary": "", "strengths": [], "missingSkills": [], "recommendations": []}`},
		{name: "missing field", payload: `{"score": 50, "summary": "", "strengths": [], "missingSkills": []}`},
		{name: "wrong item type", payload: `{"score": 50, "summary": "", "strengths": [1], "missingSkills": [], "recommendations": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(&llmtest.Client{Response: tt.payload}, WithStrictSchema(true))
			result, err := a.Analyze(t.Context(), "r", "j")
			if tt.valid {
				require.NoError(t, err)
				assert.NotNil(t, result)
				return
			}
			assert.Nil(t, result)
			assert.True(t, IsParseFailure(err), "expected parse failure, got %v", err)
		})
	}
}

func TestWithTier(t *testing.T) {
	client := &llmtest.Client{Response: goodFitPayload}
	_, err := New(client, WithTier(llm.TierAdvanced)).Analyze(t.Context(), "r", "j")
	require.NoError(t, err)
	assert.Equal(t, llm.TierAdvanced, client.Calls()[0].Tier)
}

func TestResultSchema_Descriptions(t *testing.T) {
	s := ResultSchema()

	assert.Equal(t, "A matching score from 0 to 100.", s.Properties["score"].Description)
	assert.Equal(t, "A concise executive summary of the match.", s.Properties["summary"].Description)
	assert.Equal(t, llm.TypeString, s.Properties["strengths"].Items.Type)
	assert.Equal(t, llm.TypeString, s.Properties["missingSkills"].Items.Type)

	rec := s.Properties["recommendations"].Items
	require.NotNil(t, rec)
	assert.ElementsMatch(t, []string{"category", "suggestion", "example"}, keys(rec.Properties))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "analysis error: no response from AI", (&Error{Message: MsgNoResponse}).Error())
	assert.True(t, strings.HasPrefix((&Error{Message: MsgParseFailure, Cause: errors.New("x")}).Error(),
		"analysis error: failed to parse analysis results: "))
	assert.Equal(t, "API call failed: boom", (&APICallError{Message: "boom"}).Error())
}

func keys(m map[string]*llm.Schema) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
