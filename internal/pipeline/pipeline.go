package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-match/internal/types"
	"github.com/jonathan/resume-match/internal/validation"
)

// ErrBusy is returned when a submission arrives while another is in flight
var ErrBusy = errors.New("analysis already in progress")

// Analyzer performs the remote analysis. *analysis.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescriptionText string) (*types.AnalysisResult, error)
}

// Pipeline is the single owner of State. Only Submit mutates it.
type Pipeline struct {
	analyzer Analyzer
	now      func() time.Time

	mu          sync.Mutex
	state       State
	subscribers map[int]chan State
	nextSubID   int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithClock overrides the clock used to stamp snapshots
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates an idle Pipeline
func New(analyzer Analyzer, opts ...Option) *Pipeline {
	p := &Pipeline{
		analyzer:    analyzer,
		now:         time.Now,
		subscribers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.state = State{Phase: PhaseIdle, UpdatedAt: p.now()}
	return p
}

// Snapshot returns the current state
func (p *Pipeline) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Submit runs one submission to completion and returns the resulting state.
//
// The previous result and failure are cleared before anything else. Invalid
// input moves straight to a validation failure without calling the analyzer.
// Remote and parse failures are logged here and surface only as a remote
// failure in the returned state. The only error returned is ErrBusy, when
// another submission is still in flight; state is left untouched in that case.
func (p *Pipeline) Submit(ctx context.Context, resumeText, jobDescriptionText string) (State, error) {
	p.mu.Lock()
	if p.state.Busy() {
		current := p.state
		p.mu.Unlock()
		return current, ErrBusy
	}

	id := uuid.New()
	req := &types.AnalysisRequest{ResumeText: resumeText, JobDescriptionText: jobDescriptionText}
	if err := validation.ValidateRequest(req); err != nil {
		log.Printf("[pipeline] submission %s rejected: %v", id, err)
		st := p.setLocked(State{Phase: PhaseFailed, SubmissionID: id, Failure: FailureValidation})
		p.mu.Unlock()
		return st, nil
	}

	p.setLocked(State{Phase: PhaseAnalyzing, SubmissionID: id})
	p.mu.Unlock()

	finished := false
	defer func() {
		// Clear the in-flight flag even if the analyzer panics
		if !finished {
			p.finish(id, nil, errors.New("analysis aborted"))
		}
	}()

	start := time.Now()
	result, err := p.analyzer.Analyze(ctx, resumeText, jobDescriptionText)
	st := p.finish(id, result, err)
	finished = true

	if err == nil {
		log.Printf("[pipeline] submission %s succeeded in %v (score %.0f)", id, time.Since(start), result.Score)
	}
	return st, nil
}

// finish records the outcome of submission id
func (p *Pipeline) finish(id uuid.UUID, result *types.AnalysisResult, err error) State {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil && result == nil {
		err = errors.New("analyzer returned no result")
	}
	if err != nil {
		log.Printf("[pipeline] submission %s failed: %v", id, err)
		return p.setLocked(State{Phase: PhaseFailed, SubmissionID: id, Failure: FailureRemote})
	}
	return p.setLocked(State{Phase: PhaseSucceeded, SubmissionID: id, Result: result})
}

// Subscribe returns a channel that receives the current state immediately and
// every later transition. Slow receivers only see the latest snapshot; the
// pipeline never blocks on them. Call cancel to unsubscribe and close the channel.
func (p *Pipeline) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = ch
	ch <- p.state
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

// setLocked replaces the state and notifies subscribers. p.mu must be held.
func (p *Pipeline) setLocked(st State) State {
	st.UpdatedAt = p.now()
	p.state = st

	for _, ch := range p.subscribers {
		select {
		case ch <- st:
		default:
			// Drop the stale snapshot so the newest one fits
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
	return st
}
