package orchestrator

import (
	"context"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/answering/arbiter"

	"github.com/google/uuid"
)

// Registry tracks the questions currently in flight and deduplicates
// repeated detections of the same utterance.
type Registry interface {
	Register(q *answering.Question) bool
	Deactivate(q *answering.Question)
	ActiveForSession(sessionId uuid.UUID) []*answering.Question
}

// Orchestrator drives each detected question through its lifecycle:
// search tiers first, then the monitoring tiers, then expiry. Deadlines
// are enforced here rather than trusted to the tiers, so a hung tier can
// never stall the question past its budget.
type Orchestrator struct {
	policy   answering.Policy
	arbiter  *arbiter.Arbiter
	registry Registry
	logger   logger.ILogger

	document  answering.Tier
	meeting   answering.Tier
	monitor   answering.Tier
	generated answering.Tier
}

func New(
	policy answering.Policy,
	arb *arbiter.Arbiter,
	registry Registry,
	document, meeting, monitor, generated answering.Tier,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		policy:    policy,
		arbiter:   arb,
		registry:  registry,
		logger:    log,
		document:  document,
		meeting:   meeting,
		monitor:   monitor,
		generated: generated,
	}
}

// HandleDetected accepts a freshly detected question and runs its
// lifecycle on a background goroutine. It returns false when the question
// is a duplicate of one already in flight (same correlation token), in
// which case nothing is started.
func (o *Orchestrator) HandleDetected(ctx context.Context, q *answering.Question) bool {
	if !o.registry.Register(q) {
		o.logger.Debug("Orchestrator", "Duplicate question detection ignored", map[string]interface{}{
			"session_id": q.SessionId, "correlation_token": q.CorrelationToken,
		})
		return false
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.arbiter.Track(q.Id, cancel)

	go o.run(runCtx, q)
	return true
}

func (o *Orchestrator) run(ctx context.Context, q *answering.Question) {
	defer func() {
		o.arbiter.Untrack(q.Id)
		o.registry.Deactivate(q)
	}()

	o.logger.Info("Orchestrator", "Question lifecycle started", map[string]interface{}{
		"question_id": q.Id, "session_id": q.SessionId,
	})

	q.Advance(answering.StatusSearching)
	o.runPhase(ctx, q, []tierRun{
		{o.document, o.policy.DocumentTimeout},
		{o.meeting, o.policy.MeetingTimeout},
	})

	if q.Status().Terminal() || ctx.Err() != nil {
		return
	}

	q.Advance(answering.StatusMonitoring)
	o.runPhase(ctx, q, []tierRun{
		{o.monitor, o.policy.MonitorTimeout},
		{o.generated, o.policy.GeneratedTimeout},
	})

	if q.Status().Terminal() {
		return
	}
	o.arbiter.Expire(context.WithoutCancel(ctx), q)
}

type tierRun struct {
	tier    answering.Tier
	timeout time.Duration
}

// runPhase runs a set of tiers concurrently and returns when every tier
// has reported, timed out, or been cancelled by an accepted answer.
func (o *Orchestrator) runPhase(ctx context.Context, q *answering.Question, runs []tierRun) {
	done := make(chan struct{}, len(runs))
	for _, r := range runs {
		if r.tier == nil {
			done <- struct{}{}
			continue
		}
		go func(r tierRun) {
			defer func() { done <- struct{}{} }()
			o.runTier(ctx, q, r)
		}(r)
	}
	for range runs {
		<-done
	}
}

// runTier executes a single tier under its own deadline. The tier runs on
// its own goroutine with a buffered result channel, so a tier that
// ignores cancellation leaks its goroutine until it returns but never
// blocks the lifecycle.
func (o *Orchestrator) runTier(ctx context.Context, q *answering.Question, r tierRun) {
	tierCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make(chan answering.Result, 1)
	go func() {
		results <- r.tier.Answer(tierCtx, q)
	}()

	select {
	case res := <-results:
		if res.HasAnswer() {
			o.arbiter.Submit(context.WithoutCancel(ctx), q, *res.Candidate)
		}
	case <-tierCtx.Done():
		o.logger.Debug("Orchestrator", "Tier deadline elapsed without a result", map[string]interface{}{
			"question_id": q.Id, "source": r.tier.Source(),
		})
	}
}

// CancelSession tears down every in-flight question of a session, for
// example when the meeting ends. Questions are expired rather than left
// dangling so subscribers see a terminal status for each.
func (o *Orchestrator) CancelSession(ctx context.Context, sessionId uuid.UUID) int {
	active := o.registry.ActiveForSession(sessionId)
	cancelled := 0
	for _, q := range active {
		if o.arbiter.Expire(ctx, q) {
			cancelled++
		}
	}
	if cancelled > 0 {
		o.logger.Info("Orchestrator", "Session questions cancelled", map[string]interface{}{
			"session_id": sessionId, "count": cancelled,
		})
	}
	return cancelled
}
