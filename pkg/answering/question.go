package answering

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a tracked question. Transitions are
// strictly forward: DETECTED → SEARCHING → MONITORING → ANSWERED | EXPIRED.
type Status string

const (
	StatusDetected   Status = "DETECTED"
	StatusSearching  Status = "SEARCHING"
	StatusMonitoring Status = "MONITORING"
	StatusAnswered   Status = "ANSWERED"
	StatusExpired    Status = "EXPIRED"
)

// rank orders statuses so a transition can never regress.
var rank = map[Status]int{
	StatusDetected:   0,
	StatusSearching:  1,
	StatusMonitoring: 2,
	StatusAnswered:   3,
	StatusExpired:    3,
}

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusAnswered || s == StatusExpired
}

// Question is the tracked entity for one detected spoken question.
// Identity fields are set at detection and never change; status and the
// committed answer are guarded by the per-question exclusive section and
// mutated only through the methods below.
type Question struct {
	Id               uuid.UUID
	SessionId        uuid.UUID
	MeetingId        uuid.UUID
	OrganizationId   uuid.UUID
	ProjectId        uuid.UUID
	Text             string
	DetectedAt       time.Time
	CorrelationToken string

	mu     sync.Mutex
	status Status
	answer *Candidate
}

// NewQuestion creates a tracked question in the DETECTED state.
func NewQuestion(id, sessionId, meetingId, orgId, projectId uuid.UUID, text string, detectedAt time.Time, token string) *Question {
	return &Question{
		Id:               id,
		SessionId:        sessionId,
		MeetingId:        meetingId,
		OrganizationId:   orgId,
		ProjectId:        projectId,
		Text:             text,
		DetectedAt:       detectedAt,
		CorrelationToken: token,
		status:           StatusDetected,
	}
}

func (q *Question) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Answer returns the committed answer, or nil while the question is open.
func (q *Question) Answer() *Candidate {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.answer
}

// Advance moves the status forward. Returns false if the transition would
// regress or the question is already terminal.
func (q *Question) Advance(to Status) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status.Terminal() || rank[to] <= rank[q.status] {
		return false
	}
	q.status = to
	return true
}

// TryCommit is the single-assignment result cell: it performs the full
// check-then-commit under the question's exclusive section. Exactly one
// call ever succeeds; later candidates are discarded by the false return.
func (q *Question) TryCommit(c Candidate) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status.Terminal() {
		return false
	}
	q.answer = &c
	q.status = StatusAnswered
	return true
}

// TryExpire marks the question EXPIRED unless an answer was committed first.
func (q *Question) TryExpire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status.Terminal() {
		return false
	}
	q.answer = nil
	q.status = StatusExpired
	return true
}
