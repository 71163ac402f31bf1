package arbiter

import (
	"context"
	"sync"

	"ai-meetingassist-be/internal/metrics"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"

	"github.com/google/uuid"
)

// QuestionStore is the persistence collaborator. The handler only writes
// commits and expiries; it never reads state back.
type QuestionStore interface {
	SaveAnswer(ctx context.Context, q *answering.Question, c answering.Candidate) error
	SaveExpiry(ctx context.Context, q *answering.Question) error
}

// Notifier pushes status-change events to the external notification
// channel, exactly once per commit or expiry.
type Notifier interface {
	QuestionAnswered(q *answering.Question, c answering.Candidate)
	QuestionExpired(q *answering.Question)
}

// Arbiter is the single point every tier reports to. It guarantees at most
// one answer is ever committed per question, no matter how many tiers
// report concurrently: the question's own exclusive section covers the
// full check-then-commit, and everything arriving later is discarded
// silently. It also tracks the per-question cancel functions so a commit
// can tear down the tiers still running.
type Arbiter struct {
	policy   answering.Policy
	store    QuestionStore
	notifier Notifier
	logger   logger.ILogger

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
}

func New(policy answering.Policy, store QuestionStore, notifier Notifier, log logger.ILogger) *Arbiter {
	return &Arbiter{
		policy:   policy,
		store:    store,
		notifier: notifier,
		logger:   log,
		cancels:  make(map[uuid.UUID]context.CancelFunc),
	}
}

// Track registers the cancel function covering a question's in-flight
// tiers. Committing or expiring the question invokes it.
func (a *Arbiter) Track(questionId uuid.UUID, cancel context.CancelFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancels[questionId] = cancel
}

// Untrack forgets the question once its run has fully wound down.
func (a *Arbiter) Untrack(questionId uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.cancels, questionId)
}

// Submit offers a tier's candidate. It returns true only for the single
// candidate that wins the question. Sub-threshold candidates are discarded
// without closing the question; late candidates racing an earlier commit
// or expiry are discarded silently (idempotent, not an error).
func (a *Arbiter) Submit(ctx context.Context, q *answering.Question, c answering.Candidate) bool {
	if c.Confidence < a.policy.Threshold(c.Source) {
		metrics.CandidateDiscarded("threshold")
		a.logger.Debug("Arbiter", "Candidate below acceptance threshold", map[string]interface{}{
			"question_id": q.Id, "source": c.Source, "confidence": c.Confidence,
		})
		return false
	}

	// TryCommit performs the full check-then-commit inside the question's
	// exclusive section; exactly one call ever succeeds.
	if !q.TryCommit(c) {
		metrics.CandidateDiscarded("late")
		a.logger.Debug("Arbiter", "Late candidate discarded after terminal state", map[string]interface{}{
			"question_id": q.Id, "source": c.Source,
		})
		return false
	}

	if err := a.store.SaveAnswer(ctx, q, c); err != nil {
		// The in-memory commit stands; persistence is retried by the
		// collaborator's own recovery, not by re-running the race.
		a.logger.Error("Arbiter", "Failed to persist committed answer", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
	}

	metrics.QuestionCommitted(string(c.Source))
	a.logger.Info("Arbiter", "Answer committed", map[string]interface{}{
		"question_id": q.Id, "source": c.Source, "confidence": c.Confidence,
	})

	a.cancelTiers(q.Id)

	if a.notifier != nil {
		a.notifier.QuestionAnswered(q, c)
	}
	return true
}

// Expire closes a question that ran out of time with no acceptable answer.
// A commit that already happened wins; expiry is then a no-op.
func (a *Arbiter) Expire(ctx context.Context, q *answering.Question) bool {
	if !q.TryExpire() {
		return false
	}

	if err := a.store.SaveExpiry(ctx, q); err != nil {
		a.logger.Error("Arbiter", "Failed to persist expiry", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
	}

	metrics.QuestionExpired()
	a.logger.Info("Arbiter", "Question expired with no answer", map[string]interface{}{
		"question_id": q.Id,
	})

	a.cancelTiers(q.Id)

	if a.notifier != nil {
		a.notifier.QuestionExpired(q)
	}
	return true
}

// cancelTiers signals every tier still tracking the question. Cancellation
// is advisory: a tier that already produced a result may still deliver it,
// and the idempotent discard above is the actual safety net.
func (a *Arbiter) cancelTiers(questionId uuid.UUID) {
	a.mu.Lock()
	cancel, ok := a.cancels[questionId]
	a.mu.Unlock()
	if ok && cancel != nil {
		cancel()
	}
}
