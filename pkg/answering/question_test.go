package answering

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuestion() *Question {
	return NewQuestion(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"what is the release date?", time.Now(), "token-1")
}

func TestQuestionStartsDetected(t *testing.T) {
	q := newTestQuestion()
	assert.Equal(t, StatusDetected, q.Status())
	assert.Nil(t, q.Answer())
}

func TestQuestionAdvanceForwardOnly(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "detected to searching", from: StatusDetected, to: StatusSearching, want: true},
		{name: "searching to monitoring", from: StatusSearching, to: StatusMonitoring, want: true},
		{name: "skip ahead", from: StatusDetected, to: StatusMonitoring, want: true},
		{name: "regress to detected", from: StatusMonitoring, to: StatusDetected, want: false},
		{name: "regress to searching", from: StatusMonitoring, to: StatusSearching, want: false},
		{name: "same status", from: StatusSearching, to: StatusSearching, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQuestion()
			if tt.from != StatusDetected {
				require.True(t, q.Advance(tt.from))
			}
			assert.Equal(t, tt.want, q.Advance(tt.to))
		})
	}
}

func TestQuestionAdvanceRejectedAfterTerminal(t *testing.T) {
	q := newTestQuestion()
	require.True(t, q.TryCommit(Candidate{Source: SourceDocumentSearch, Text: "answer"}))

	assert.False(t, q.Advance(StatusMonitoring))
	assert.Equal(t, StatusAnswered, q.Status())
}

func TestQuestionTryCommitSingleAssignment(t *testing.T) {
	q := newTestQuestion()

	first := Candidate{Source: SourceDocumentSearch, Text: "the first answer", Confidence: 0.8}
	second := Candidate{Source: SourceLiveMonitoring, Text: "the second answer", Confidence: 0.99}

	require.True(t, q.TryCommit(first))
	assert.False(t, q.TryCommit(second))

	assert.Equal(t, StatusAnswered, q.Status())
	require.NotNil(t, q.Answer())
	assert.Equal(t, "the first answer", q.Answer().Text)
}

func TestQuestionExpireAfterCommitFails(t *testing.T) {
	q := newTestQuestion()
	require.True(t, q.TryCommit(Candidate{Source: SourceMeetingContext, Text: "answer"}))

	assert.False(t, q.TryExpire())
	assert.Equal(t, StatusAnswered, q.Status())
}

func TestQuestionCommitAfterExpireFails(t *testing.T) {
	q := newTestQuestion()
	require.True(t, q.TryExpire())

	assert.False(t, q.TryCommit(Candidate{Source: SourceGeneratedFallback, Text: "too late"}))
	assert.Equal(t, StatusExpired, q.Status())
	assert.Nil(t, q.Answer())
}

func TestQuestionConcurrentCommitExactlyOneWins(t *testing.T) {
	q := newTestQuestion()

	const racers = 32
	var wins int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := Candidate{Source: SourceLiveMonitoring, Text: "answer", Confidence: float64(n)}
			if q.TryCommit(c) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, StatusAnswered, q.Status())
	assert.NotNil(t, q.Answer())
}

func TestResultTaggedVariant(t *testing.T) {
	assert.False(t, NoAnswer().HasAnswer())

	c := Candidate{Source: SourceDocumentSearch, Text: "x"}
	res := Answered(c)
	require.True(t, res.HasAnswer())
	assert.Equal(t, "x", res.Candidate.Text)
}

func TestPolicyThresholds(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, p.DocumentThreshold, p.Threshold(SourceDocumentSearch))
	assert.Equal(t, p.MeetingThreshold, p.Threshold(SourceMeetingContext))
	assert.Equal(t, p.MonitorThreshold, p.Threshold(SourceLiveMonitoring))
	assert.Equal(t, p.GeneratedThreshold, p.Threshold(SourceGeneratedFallback))

	// Unknown sources can never pass.
	assert.Equal(t, 1.0, p.Threshold(Source("bogus")))
}

func TestPolicyWindows(t *testing.T) {
	p := Policy{
		DocumentTimeout:  2 * time.Second,
		MeetingTimeout:   1 * time.Second,
		MonitorTimeout:   15 * time.Second,
		GeneratedTimeout: 3 * time.Second,
	}

	assert.Equal(t, 2*time.Second, p.SearchWindow())
	assert.Equal(t, 15*time.Second, p.MonitorWindow())
	assert.Equal(t, 17*time.Second, p.GlobalDeadline())
}
