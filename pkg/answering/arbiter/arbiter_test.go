package arbiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	answers  int
	expiries int
}

func (s *fakeStore) SaveAnswer(ctx context.Context, q *answering.Question, c answering.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers++
	return nil
}

func (s *fakeStore) SaveExpiry(ctx context.Context, q *answering.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiries++
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	answered int
	expired  int
}

func (n *fakeNotifier) QuestionAnswered(q *answering.Question, c answering.Candidate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.answered++
}

func (n *fakeNotifier) QuestionExpired(q *answering.Question) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired++
}

func newTestQuestion() *answering.Question {
	return answering.NewQuestion(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"what is the rollout plan?", time.Now(), uuid.NewString())
}

func testPolicy() answering.Policy {
	p := answering.DefaultPolicy()
	p.DocumentThreshold = 0.6
	p.MonitorThreshold = 0.65
	return p
}

func newTestArbiter(store *fakeStore, notifier *fakeNotifier) *Arbiter {
	return New(testPolicy(), store, notifier, logger.NewNopLogger())
}

func TestSubmitCommitsAboveThreshold(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	arb := newTestArbiter(store, notifier)
	q := newTestQuestion()

	ok := arb.Submit(context.Background(), q, answering.Candidate{
		Source:     answering.SourceDocumentSearch,
		Text:       "ship in two phases",
		Confidence: 0.8,
	})

	require.True(t, ok)
	assert.Equal(t, answering.StatusAnswered, q.Status())
	assert.Equal(t, 1, store.answers)
	assert.Equal(t, 1, notifier.answered)
}

func TestSubmitDiscardsBelowThreshold(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	arb := newTestArbiter(store, notifier)
	q := newTestQuestion()

	ok := arb.Submit(context.Background(), q, answering.Candidate{
		Source:     answering.SourceDocumentSearch,
		Text:       "weak answer",
		Confidence: 0.3,
	})

	// A rejected candidate never closes the question.
	assert.False(t, ok)
	assert.Equal(t, answering.StatusDetected, q.Status())
	assert.Equal(t, 0, store.answers)
	assert.Equal(t, 0, notifier.answered)
}

func TestSubmitLateCandidateDiscardedSilently(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	arb := newTestArbiter(store, notifier)
	q := newTestQuestion()

	first := answering.Candidate{Source: answering.SourceDocumentSearch, Text: "first", Confidence: 0.9}
	late := answering.Candidate{Source: answering.SourceLiveMonitoring, Text: "late", Confidence: 0.95}

	require.True(t, arb.Submit(context.Background(), q, first))
	assert.False(t, arb.Submit(context.Background(), q, late))

	assert.Equal(t, "first", q.Answer().Text)
	assert.Equal(t, 1, store.answers)
	assert.Equal(t, 1, notifier.answered)
}

func TestSubmitConcurrentAtMostOneCommit(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	arb := newTestArbiter(store, notifier)
	q := newTestQuestion()

	const racers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := answering.Candidate{Source: answering.SourceLiveMonitoring, Text: "answer", Confidence: 0.9}
			if arb.Submit(context.Background(), q, c) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, store.answers)
	assert.Equal(t, 1, notifier.answered)
}

func TestExpireClosesOpenQuestion(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	arb := newTestArbiter(store, notifier)
	q := newTestQuestion()

	require.True(t, arb.Expire(context.Background(), q))
	assert.Equal(t, answering.StatusExpired, q.Status())
	assert.Equal(t, 1, store.expiries)
	assert.Equal(t, 1, notifier.expired)

	// Second expiry is a no-op.
	assert.False(t, arb.Expire(context.Background(), q))
	assert.Equal(t, 1, store.expiries)
	assert.Equal(t, 1, notifier.expired)
}

func TestExpireLosesToEarlierCommit(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	arb := newTestArbiter(store, notifier)
	q := newTestQuestion()

	require.True(t, arb.Submit(context.Background(), q, answering.Candidate{
		Source: answering.SourceMeetingContext, Text: "answer", Confidence: 0.9,
	}))

	assert.False(t, arb.Expire(context.Background(), q))
	assert.Equal(t, answering.StatusAnswered, q.Status())
	assert.Equal(t, 0, store.expiries)
	assert.Equal(t, 0, notifier.expired)
}

func TestCommitCancelsTrackedTiers(t *testing.T) {
	arb := newTestArbiter(&fakeStore{}, &fakeNotifier{})
	q := newTestQuestion()

	ctx, cancel := context.WithCancel(context.Background())
	arb.Track(q.Id, cancel)
	defer arb.Untrack(q.Id)

	require.True(t, arb.Submit(context.Background(), q, answering.Candidate{
		Source: answering.SourceDocumentSearch, Text: "answer", Confidence: 0.9,
	}))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("commit did not cancel the tracked context")
	}
}

func TestSubmitWithoutTrackedCancel(t *testing.T) {
	arb := newTestArbiter(&fakeStore{}, &fakeNotifier{})
	q := newTestQuestion()

	// No Track call; commit must still succeed.
	assert.True(t, arb.Submit(context.Background(), q, answering.Candidate{
		Source: answering.SourceDocumentSearch, Text: "answer", Confidence: 0.9,
	}))
}
