package tiers

import (
	"context"
	"testing"
	"time"

	"ai-meetingassist-be/internal/model"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/internal/repository"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/searchcache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscripts struct {
	scored []*repository.ScoredTranscript

	lastSessionId uuid.UUID
	lastBefore    time.Time
}

func (f *fakeTranscripts) Create(ctx context.Context, embedding *model.TranscriptEmbedding) error {
	return nil
}

func (f *fakeTranscripts) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, sessionId uuid.UUID, before time.Time, threshold float64) ([]*repository.ScoredTranscript, error) {
	f.lastSessionId = sessionId
	f.lastBefore = before
	return f.scored, nil
}

func (f *fakeTranscripts) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}

func TestMeetingTierSearchesTranscriptPrefix(t *testing.T) {
	detectedAt := time.Now()
	transcripts := &fakeTranscripts{scored: []*repository.ScoredTranscript{
		{
			Embedding:  &model.TranscriptEmbedding{Chunk: "we agreed on a 30 day refund window", Speaker: "dana"},
			Similarity: 0.74,
		},
	}}
	cache := searchcache.New(16, time.Minute, 0.92)
	tier := NewMeetingTier(cache, &fakeEmbedder{vector: []float32{1, 0}}, transcripts, 5, logger.NewNopLogger())

	q := answering.NewQuestion(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"what did we decide about refunds?", detectedAt, "tok")

	res := tier.Answer(context.Background(), q)

	require.True(t, res.HasAnswer())
	assert.Equal(t, answering.SourceMeetingContext, res.Candidate.Source)
	assert.Equal(t, "we agreed on a 30 day refund window", res.Candidate.Text)
	assert.Equal(t, "dana", res.Candidate.Speaker)
	assert.Equal(t, 0.74, res.Candidate.Confidence)

	// Only the prefix spoken before detection is searched.
	assert.Equal(t, q.SessionId, transcripts.lastSessionId)
	assert.Equal(t, detectedAt, transcripts.lastBefore)
}

func TestMeetingTierNoMatchesIsNoAnswer(t *testing.T) {
	cache := searchcache.New(16, time.Minute, 0.92)
	tier := NewMeetingTier(cache, &fakeEmbedder{vector: []float32{1, 0}}, &fakeTranscripts{}, 5, logger.NewNopLogger())

	q := answering.NewQuestion(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"did anyone mention the venue?", time.Now(), "tok")

	res := tier.Answer(context.Background(), q)
	assert.False(t, res.HasAnswer())
}
