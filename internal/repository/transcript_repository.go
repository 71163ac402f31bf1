package repository

import (
	"context"
	"time"

	"ai-meetingassist-be/internal/model"

	"github.com/google/uuid"
)

// ScoredTranscript pairs a transcript embedding with its cosine similarity
// against a query vector.
type ScoredTranscript struct {
	Embedding  *model.TranscriptEmbedding
	Similarity float64
}

// TranscriptEmbeddingRepository indexes a meeting's transcript chunks for
// semantic search. The meeting-context tier searches only the prefix
// spoken before the question was asked.
type TranscriptEmbeddingRepository interface {
	Create(ctx context.Context, embedding *model.TranscriptEmbedding) error

	// SearchSimilarWithScore returns chunks of one session spoken before
	// the cutoff, with similarity scores, filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID, before time.Time, threshold float64) ([]*ScoredTranscript, error)

	// DeleteBySessionId clears a session's index on teardown.
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
