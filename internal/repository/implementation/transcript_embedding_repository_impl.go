package implementation

import (
	"context"
	"time"

	"ai-meetingassist-be/internal/model"
	"ai-meetingassist-be/internal/repository"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type TranscriptEmbeddingRepositoryImpl struct {
	db *gorm.DB
}

func NewTranscriptEmbeddingRepository(db *gorm.DB) repository.TranscriptEmbeddingRepository {
	return &TranscriptEmbeddingRepositoryImpl{db: db}
}

func (r *TranscriptEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *model.TranscriptEmbedding) error {
	return r.db.WithContext(ctx).Create(embedding).Error
}

// SearchSimilarWithScore returns the session's chunks spoken before the
// cutoff, with similarity scores, filtered by threshold.
func (r *TranscriptEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID, before time.Time, threshold float64) ([]*repository.ScoredTranscript, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.TranscriptEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("transcript_embeddings").
		Select("transcript_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("session_id = ?", sessionId).
		Where("spoken_at < ?", before).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*repository.ScoredTranscript, 0, len(results))
	for i := range results {
		if results[i].Similarity < threshold {
			continue
		}
		scored = append(scored, &repository.ScoredTranscript{
			Embedding:  &results[i].TranscriptEmbedding,
			Similarity: results[i].Similarity,
		})
	}
	return scored, nil
}

func (r *TranscriptEmbeddingRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.TranscriptEmbedding{}).Error
}
