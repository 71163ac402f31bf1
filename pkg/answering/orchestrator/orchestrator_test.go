package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/answering/arbiter"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullStore struct{}

func (nullStore) SaveAnswer(ctx context.Context, q *answering.Question, c answering.Candidate) error {
	return nil
}
func (nullStore) SaveExpiry(ctx context.Context, q *answering.Question) error { return nil }

type stubTier struct {
	source answering.Source
	result answering.Result
	delay  time.Duration
	hang   bool

	mu    sync.Mutex
	calls int
}

func (s *stubTier) Source() answering.Source { return s.source }

func (s *stubTier) Answer(ctx context.Context, q *answering.Question) answering.Result {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.hang {
		// Ignores cancellation on purpose.
		time.Sleep(5 * time.Second)
		return answering.NoAnswer()
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return answering.NoAnswer()
		}
	}
	return s.result
}

func (s *stubTier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type mapRegistry struct {
	mu     sync.Mutex
	tokens map[string]bool
	active map[uuid.UUID][]*answering.Question
}

func newMapRegistry() *mapRegistry {
	return &mapRegistry{
		tokens: make(map[string]bool),
		active: make(map[uuid.UUID][]*answering.Question),
	}
}

func (r *mapRegistry) Register(q *answering.Question) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokens[q.CorrelationToken] {
		return false
	}
	r.tokens[q.CorrelationToken] = true
	r.active[q.SessionId] = append(r.active[q.SessionId], q)
	return true
}

func (r *mapRegistry) Deactivate(q *answering.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	questions := r.active[q.SessionId]
	for i, candidate := range questions {
		if candidate.Id == q.Id {
			r.active[q.SessionId] = append(questions[:i], questions[i+1:]...)
			break
		}
	}
}

func (r *mapRegistry) ActiveForSession(sessionId uuid.UUID) []*answering.Question {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*answering.Question(nil), r.active[sessionId]...)
}

func fastPolicy() answering.Policy {
	return answering.Policy{
		DocumentTimeout:    100 * time.Millisecond,
		MeetingTimeout:     100 * time.Millisecond,
		MonitorTimeout:     150 * time.Millisecond,
		GeneratedTimeout:   150 * time.Millisecond,
		DocumentThreshold:  0.6,
		MeetingThreshold:   0.6,
		MonitorThreshold:   0.65,
		GeneratedThreshold: 0.7,
	}
}

func answered(source answering.Source, text string, confidence float64) answering.Result {
	return answering.Answered(answering.Candidate{
		Source:     source,
		Text:       text,
		Confidence: confidence,
		ProducedAt: time.Now(),
	})
}

func newPipeline(document, meeting, monitor, generated answering.Tier) (*Orchestrator, *mapRegistry) {
	log := logger.NewNopLogger()
	arb := arbiter.New(fastPolicy(), nullStore{}, nil, log)
	registry := newMapRegistry()
	orch := New(fastPolicy(), arb, registry, document, meeting, monitor, generated, log)
	return orch, registry
}

func newDetected(text string) *answering.Question {
	return answering.NewQuestion(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		text, time.Now(), uuid.NewString())
}

func waitTerminal(t *testing.T, q *answering.Question) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if q.Status().Terminal() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("question never reached a terminal state, last status %s", q.Status())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSearchTierAnswerSkipsMonitoring(t *testing.T) {
	document := &stubTier{source: answering.SourceDocumentSearch, result: answered(answering.SourceDocumentSearch, "in the handbook", 0.9)}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer()}
	monitor := &stubTier{source: answering.SourceLiveMonitoring, result: answering.NoAnswer()}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answering.NoAnswer()}

	orch, _ := newPipeline(document, meeting, monitor, generated)
	q := newDetected("where is the onboarding doc?")

	require.True(t, orch.HandleDetected(context.Background(), q))
	waitTerminal(t, q)

	assert.Equal(t, answering.StatusAnswered, q.Status())
	require.NotNil(t, q.Answer())
	assert.Equal(t, answering.SourceDocumentSearch, q.Answer().Source)

	// The monitoring phase never runs once a search tier commits.
	assert.Equal(t, 0, monitor.callCount())
	assert.Equal(t, 0, generated.callCount())
}

func TestMonitorAnswersAfterSearchMiss(t *testing.T) {
	document := &stubTier{source: answering.SourceDocumentSearch, result: answering.NoAnswer()}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer()}
	monitor := &stubTier{source: answering.SourceLiveMonitoring, result: answered(answering.SourceLiveMonitoring, "Dana said Friday", 0.8)}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answering.NoAnswer()}

	orch, _ := newPipeline(document, meeting, monitor, generated)
	q := newDetected("when is the release?")

	require.True(t, orch.HandleDetected(context.Background(), q))
	waitTerminal(t, q)

	assert.Equal(t, answering.StatusAnswered, q.Status())
	assert.Equal(t, answering.SourceLiveMonitoring, q.Answer().Source)
	assert.Equal(t, 1, document.callCount())
	assert.Equal(t, 1, meeting.callCount())
}

func TestAllTiersMissExpiresQuestion(t *testing.T) {
	document := &stubTier{source: answering.SourceDocumentSearch, result: answering.NoAnswer()}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer()}
	monitor := &stubTier{source: answering.SourceLiveMonitoring, result: answering.NoAnswer()}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answering.NoAnswer()}

	orch, _ := newPipeline(document, meeting, monitor, generated)
	q := newDetected("what is the wifi password?")

	require.True(t, orch.HandleDetected(context.Background(), q))
	waitTerminal(t, q)

	assert.Equal(t, answering.StatusExpired, q.Status())
	assert.Nil(t, q.Answer())
}

func TestSubThresholdCandidateDoesNotCloseQuestion(t *testing.T) {
	// Confident-sounding but below the document threshold.
	document := &stubTier{source: answering.SourceDocumentSearch, result: answered(answering.SourceDocumentSearch, "maybe this", 0.2)}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer()}
	monitor := &stubTier{source: answering.SourceLiveMonitoring, result: answering.NoAnswer()}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answered(answering.SourceGeneratedFallback, "generated guess", 0.85)}

	orch, _ := newPipeline(document, meeting, monitor, generated)
	q := newDetected("what changed in the contract?")

	require.True(t, orch.HandleDetected(context.Background(), q))
	waitTerminal(t, q)

	// The weak search candidate was discarded and the pipeline carried on
	// to the generated fallback.
	assert.Equal(t, answering.StatusAnswered, q.Status())
	assert.Equal(t, answering.SourceGeneratedFallback, q.Answer().Source)
}

func TestHungTierDoesNotStallLifecycle(t *testing.T) {
	document := &stubTier{source: answering.SourceDocumentSearch, hang: true}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer()}
	monitor := &stubTier{source: answering.SourceLiveMonitoring, result: answering.NoAnswer()}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answering.NoAnswer()}

	orch, _ := newPipeline(document, meeting, monitor, generated)
	q := newDetected("does anyone know the login?")

	start := time.Now()
	require.True(t, orch.HandleDetected(context.Background(), q))
	waitTerminal(t, q)

	// Far below the 5s the hung tier sleeps for.
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, answering.StatusExpired, q.Status())
}

func TestDuplicateDetectionIgnored(t *testing.T) {
	document := &stubTier{source: answering.SourceDocumentSearch, result: answering.NoAnswer()}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer()}
	monitor := &stubTier{source: answering.SourceLiveMonitoring, result: answering.NoAnswer()}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answering.NoAnswer()}

	orch, _ := newPipeline(document, meeting, monitor, generated)

	q1 := newDetected("is the demo ready?")
	q2 := answering.NewQuestion(uuid.New(), q1.SessionId, q1.MeetingId, q1.OrganizationId, q1.ProjectId,
		q1.Text, time.Now(), q1.CorrelationToken)

	require.True(t, orch.HandleDetected(context.Background(), q1))
	assert.False(t, orch.HandleDetected(context.Background(), q2))

	waitTerminal(t, q1)
	// The duplicate never entered the pipeline.
	assert.Equal(t, answering.StatusDetected, q2.Status())
}

func TestCancelSessionExpiresInFlightQuestions(t *testing.T) {
	slowMonitor := &stubTier{source: answering.SourceLiveMonitoring, result: answering.NoAnswer(), delay: 10 * time.Second}
	document := &stubTier{source: answering.SourceDocumentSearch, result: answering.NoAnswer(), delay: 10 * time.Second}
	meeting := &stubTier{source: answering.SourceMeetingContext, result: answering.NoAnswer(), delay: 10 * time.Second}
	generated := &stubTier{source: answering.SourceGeneratedFallback, result: answering.NoAnswer(), delay: 10 * time.Second}

	log := logger.NewNopLogger()
	// Generous deadlines so the questions are still open when the session ends.
	policy := fastPolicy()
	policy.DocumentTimeout = 30 * time.Second
	policy.MeetingTimeout = 30 * time.Second
	arb := arbiter.New(policy, nullStore{}, nil, log)
	registry := newMapRegistry()
	orch := New(policy, arb, registry, document, meeting, slowMonitor, generated, log)

	q1 := newDetected("first question?")
	q2 := answering.NewQuestion(uuid.New(), q1.SessionId, q1.MeetingId, q1.OrganizationId, q1.ProjectId,
		"second question?", time.Now(), uuid.NewString())

	require.True(t, orch.HandleDetected(context.Background(), q1))
	require.True(t, orch.HandleDetected(context.Background(), q2))

	// Let both lifecycles enter the search phase.
	time.Sleep(20 * time.Millisecond)

	cancelled := orch.CancelSession(context.Background(), q1.SessionId)
	assert.Equal(t, 2, cancelled)
	assert.Equal(t, answering.StatusExpired, q1.Status())
	assert.Equal(t, answering.StatusExpired, q2.Status())
}
