package tiers

import (
	"context"
	"strings"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/transcript"
)

// MonitorTier passively watches subsequent transcript chunks for a
// spontaneous human answer. It is a subscription, not a single call: it
// consumes the session's feed until a chunk plausibly answers the question,
// the deadline lapses, or it is cancelled. Only the first accepted chunk
// is forwarded; afterwards the subscription is torn down.
type MonitorTier struct {
	feed      *transcript.Feed
	threshold float64
	logger    logger.ILogger
}

func NewMonitorTier(feed *transcript.Feed, threshold float64, log logger.ILogger) *MonitorTier {
	return &MonitorTier{
		feed:      feed,
		threshold: threshold,
		logger:    log,
	}
}

func (t *MonitorTier) Source() answering.Source {
	return answering.SourceLiveMonitoring
}

func (t *MonitorTier) Answer(ctx context.Context, q *answering.Question) answering.Result {
	sub, err := t.feed.Subscribe(ctx, q.SessionId)
	if err != nil {
		t.logger.Warn("MonitorTier", "Feed subscription failed", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
		return answering.NoAnswer()
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			// Cancelled or deadline lapsed: unregister without emitting.
			return answering.NoAnswer()
		case chunk, ok := <-sub.Chunks():
			if !ok {
				return answering.NoAnswer()
			}
			confidence := AnswerLikelihood(q.Text, chunk.Text)
			if confidence < t.threshold {
				continue
			}
			return answering.Answered(answering.Candidate{
				Source:     answering.SourceLiveMonitoring,
				Text:       chunk.Text,
				Speaker:    chunk.Speaker,
				Confidence: confidence,
				ProducedAt: time.Now(),
			})
		}
	}
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "be": {}, "but": {}, "did": {},
	"do": {}, "does": {}, "for": {}, "how": {}, "in": {}, "is": {}, "it": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "this": {}, "to": {},
	"was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "why": {}, "will": {}, "with": {}, "you": {},
}

// AnswerLikelihood estimates how plausibly a chunk answers an open
// question. Content-word overlap between question and chunk carries the
// score; chunks that are themselves questions, or too short to state
// anything, are heavily discounted.
func AnswerLikelihood(question, chunk string) float64 {
	qWords := contentWords(question)
	cWords := contentWords(chunk)
	if len(qWords) == 0 || len(cWords) < 3 {
		return 0
	}

	seen := make(map[string]struct{}, len(cWords))
	for _, w := range cWords {
		seen[w] = struct{}{}
	}

	matched := 0
	for _, w := range qWords {
		if _, ok := seen[w]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(qWords))

	// A chunk that asks rather than states is not an answer.
	if strings.HasSuffix(strings.TrimSpace(chunk), "?") {
		score *= 0.3
	}

	// Declarative chunks with concrete figures read as answers.
	if containsDigit(chunk) {
		score += 0.15
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := stopwords[f]; ok {
			continue
		}
		words = append(words, f)
	}
	return words
}

func containsDigit(text string) bool {
	for _, r := range text {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
