package tiers

import (
	"context"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/embedding"
	"ai-meetingassist-be/pkg/searchcache"
	"ai-meetingassist-be/pkg/vectorstore"
)

// DocumentTier searches the organization-wide document index for an
// authoritative answer. Cache first, vector store on miss. Every failure
// is converted to no-answer at this boundary.
type DocumentTier struct {
	cache    *searchcache.Cache
	embedder embedding.EmbeddingProvider
	index    vectorstore.VectorStore
	topK     int
	logger   logger.ILogger
}

func NewDocumentTier(cache *searchcache.Cache, embedder embedding.EmbeddingProvider, index vectorstore.VectorStore, topK int, log logger.ILogger) *DocumentTier {
	if topK <= 0 {
		topK = 5
	}
	return &DocumentTier{
		cache:    cache,
		embedder: embedder,
		index:    index,
		topK:     topK,
		logger:   log,
	}
}

func (t *DocumentTier) Source() answering.Source {
	return answering.SourceDocumentSearch
}

func (t *DocumentTier) Answer(ctx context.Context, q *answering.Question) answering.Result {
	embeddingRes, err := t.embedder.Generate(q.Text, "RETRIEVAL_QUERY")
	if err != nil {
		t.logger.Warn("DocumentTier", "Embedding generation failed", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
		return answering.NoAnswer()
	}
	queryVector := embeddingRes.Embedding.Values

	scope := searchcache.Scope{
		SessionId: q.SessionId,
		TenantId:  q.OrganizationId,
		Target:    searchcache.TargetOrganization,
	}

	cached, hit := t.cache.Lookup(scope, q.Text, queryVector)
	if !hit {
		results, err := t.index.Search(ctx, queryVector, vectorstore.SearchFilter{
			OrganizationID: q.OrganizationId.String(),
			ProjectID:      q.ProjectId.String(),
		}, t.topK)
		if err != nil {
			t.logger.Warn("DocumentTier", "Document index search failed", map[string]interface{}{
				"question_id": q.Id, "error": err.Error(),
			})
			return answering.NoAnswer()
		}

		passages := make([]searchcache.Passage, 0, len(results))
		for _, res := range results {
			passages = append(passages, searchcache.Passage{
				Content: res.Content,
				Source:  res.DocumentID,
				Score:   float64(res.Score),
			})
		}
		cached = searchcache.CachedResult{Passages: passages}
		t.cache.Store(scope, q.Text, queryVector, cached, 0)
	}

	if len(cached.Passages) == 0 {
		return answering.NoAnswer()
	}

	// Confidence derives from top-result relevance; the handler applies
	// the acceptance threshold.
	best := cached.Passages[0]
	return answering.Answered(answering.Candidate{
		Source:     answering.SourceDocumentSearch,
		Text:       best.Content,
		Confidence: best.Score,
		ProducedAt: time.Now(),
	})
}
