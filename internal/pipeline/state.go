// Package pipeline owns the state of the submit → analyze → render flow.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-match/internal/types"
)

// Phase is the active pipeline phase. Exactly one is active at a time.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAnalyzing Phase = "analyzing"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// FailureKind says which stage a failed submission stopped at
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureValidation FailureKind = "validation"
	FailureRemote     FailureKind = "remote"
)

// State is an immutable snapshot of the pipeline.
// Result is set only in PhaseSucceeded and Failure only in PhaseFailed.
type State struct {
	Phase        Phase                 `json:"phase"`
	SubmissionID uuid.UUID             `json:"submission_id"`
	Result       *types.AnalysisResult `json:"result,omitempty"`
	Failure      FailureKind           `json:"failure,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Busy reports whether an analysis is in flight
func (s State) Busy() bool {
	return s.Phase == PhaseAnalyzing
}
