package answering

import (
	"context"
	"time"
)

// Source identifies the tier that produced an answer.
type Source string

const (
	SourceDocumentSearch    Source = "document-search"
	SourceMeetingContext    Source = "meeting-context"
	SourceLiveMonitoring    Source = "live-monitoring"
	SourceGeneratedFallback Source = "generated-fallback"
)

// Candidate is one tier's proposed answer for an open question.
// Immutable once committed by the answer handler.
type Candidate struct {
	Source     Source
	Text       string
	Speaker    string // set by live monitoring only
	Confidence float64
	Disclaimer bool // generated answers only
	ProducedAt time.Time
}

// Result is the tagged variant every tier returns: a candidate or no answer.
// Soft failures (timeout, backend error, low confidence, malformed output)
// collapse into the no-answer case at the tier boundary.
type Result struct {
	Candidate *Candidate
}

// NoAnswer is the empty variant.
func NoAnswer() Result {
	return Result{}
}

// Answered wraps a candidate.
func Answered(c Candidate) Result {
	return Result{Candidate: &c}
}

func (r Result) HasAnswer() bool {
	return r.Candidate != nil
}

// Tier is one candidate-producing strategy with its own deadline and
// acceptance threshold. Answer never returns an error: failures are
// converted to the no-answer variant before crossing this boundary.
// Long-running tiers (live monitoring) block until they find a candidate
// or ctx is cancelled.
type Tier interface {
	Source() Source
	Answer(ctx context.Context, q *Question) Result
}
