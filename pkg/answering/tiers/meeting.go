package tiers

import (
	"context"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/internal/repository"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/embedding"
	"ai-meetingassist-be/pkg/searchcache"
)

// MeetingTier searches the current meeting's own transcript prefix for a
// prior statement answering the question. Scope is the session, never the
// organization; only chunks spoken before the question count.
type MeetingTier struct {
	cache       *searchcache.Cache
	embedder    embedding.EmbeddingProvider
	transcripts repository.TranscriptEmbeddingRepository
	topK        int
	logger      logger.ILogger
}

func NewMeetingTier(cache *searchcache.Cache, embedder embedding.EmbeddingProvider, transcripts repository.TranscriptEmbeddingRepository, topK int, log logger.ILogger) *MeetingTier {
	if topK <= 0 {
		topK = 5
	}
	return &MeetingTier{
		cache:       cache,
		embedder:    embedder,
		transcripts: transcripts,
		topK:        topK,
		logger:      log,
	}
}

func (t *MeetingTier) Source() answering.Source {
	return answering.SourceMeetingContext
}

func (t *MeetingTier) Answer(ctx context.Context, q *answering.Question) answering.Result {
	embeddingRes, err := t.embedder.Generate(q.Text, "RETRIEVAL_QUERY")
	if err != nil {
		t.logger.Warn("MeetingTier", "Embedding generation failed", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
		return answering.NoAnswer()
	}
	queryVector := embeddingRes.Embedding.Values

	scope := searchcache.Scope{
		SessionId: q.SessionId,
		TenantId:  q.MeetingId,
		Target:    searchcache.TargetMeeting,
	}

	cached, hit := t.cache.Lookup(scope, q.Text, queryVector)
	if !hit {
		scored, err := t.transcripts.SearchSimilarWithScore(ctx, queryVector, t.topK, q.SessionId, q.DetectedAt, 0.0)
		if err != nil {
			t.logger.Warn("MeetingTier", "Transcript search failed", map[string]interface{}{
				"question_id": q.Id, "error": err.Error(),
			})
			return answering.NoAnswer()
		}

		passages := make([]searchcache.Passage, 0, len(scored))
		for _, res := range scored {
			passages = append(passages, searchcache.Passage{
				Content: res.Embedding.Chunk,
				Source:  res.Embedding.Speaker,
				Score:   res.Similarity,
			})
		}
		cached = searchcache.CachedResult{Passages: passages}
		t.cache.Store(scope, q.Text, queryVector, cached, 0)
	}

	if len(cached.Passages) == 0 {
		return answering.NoAnswer()
	}

	best := cached.Passages[0]
	return answering.Answered(answering.Candidate{
		Source:     answering.SourceMeetingContext,
		Text:       best.Content,
		Speaker:    best.Source,
		Confidence: best.Score,
		ProducedAt: time.Now(),
	})
}
