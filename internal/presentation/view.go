package presentation

import (
	"time"

	"github.com/jonathan/resume-match/internal/pipeline"
	"github.com/jonathan/resume-match/internal/types"
)

// User-facing failure messages. Error detail is logged, never shown.
const (
	MessageValidation = "Please provide both a Resume and Job Description (at least 50 characters each)."
	MessageRemote     = "An error occurred while analyzing. Please check your inputs and try again."
)

// View is everything the page needs to render one pipeline state
type View struct {
	Phase          pipeline.Phase `json:"phase"`
	SubmissionID   string         `json:"submission_id,omitempty"`
	Busy           bool           `json:"busy"`
	SubmitDisabled bool           `json:"submit_disabled"`
	ShowResult     bool           `json:"show_result"`
	ShowError      bool           `json:"show_error"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Gauge           *Gauge                         `json:"gauge,omitempty"`
	Summary         string                         `json:"summary,omitempty"`
	Strengths       []string                       `json:"strengths,omitempty"`
	MissingSkills   []string                       `json:"missing_skills,omitempty"`
	Recommendations []types.OptimizationSuggestion `json:"recommendations,omitempty"`
}

// Bind maps a pipeline snapshot to a View
func Bind(st pipeline.State) View {
	v := View{
		Phase:     st.Phase,
		UpdatedAt: st.UpdatedAt,
	}
	if st.Phase != pipeline.PhaseIdle {
		v.SubmissionID = st.SubmissionID.String()
	}

	switch st.Phase {
	case pipeline.PhaseAnalyzing:
		v.Busy = true
		v.SubmitDisabled = true
	case pipeline.PhaseSucceeded:
		if st.Result == nil {
			break
		}
		gauge := NewGauge(st.Result.Score)
		v.ShowResult = true
		v.Gauge = &gauge
		v.Summary = st.Result.Summary
		v.Strengths = st.Result.Strengths
		v.MissingSkills = st.Result.MissingSkills
		v.Recommendations = st.Result.Recommendations
	case pipeline.PhaseFailed:
		v.ShowError = true
		v.ErrorMessage = MessageFor(st.Failure)
	}

	return v
}

// MessageFor returns the user-facing message for a failure kind
func MessageFor(kind pipeline.FailureKind) string {
	switch kind {
	case pipeline.FailureValidation:
		return MessageValidation
	case pipeline.FailureNone:
		return ""
	default:
		return MessageRemote
	}
}
