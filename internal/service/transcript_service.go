package service

import (
	"context"
	"strings"
	"time"

	"ai-meetingassist-be/internal/dto"
	"ai-meetingassist-be/internal/model"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/internal/repository"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/embedding"
	"ai-meetingassist-be/pkg/events"
	pktNats "ai-meetingassist-be/pkg/nats" // Renamed to avoid collision
	"ai-meetingassist-be/pkg/searchcache"
	"ai-meetingassist-be/pkg/transcript"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ITranscriptService interface {
	Ingest(ctx context.Context, req *dto.IngestChunkRequest) (*dto.IngestChunkResponse, error)
}

// SessionContext resolves the meeting/tenant identity of a live session.
// Backed by the session registry filled when a meeting bot joins.
type SessionContext interface {
	Resolve(sessionId uuid.UUID) (meetingId, organizationId, projectId uuid.UUID, ok bool)
}

type transcriptService struct {
	feed        *transcript.Feed
	embedder    embedding.EmbeddingProvider
	transcripts repository.TranscriptEmbeddingRepository
	publisher   *pktNats.Publisher
	sessions    SessionContext
	logger      logger.ILogger
}

func NewTranscriptService(
	feed *transcript.Feed,
	embedder embedding.EmbeddingProvider,
	transcripts repository.TranscriptEmbeddingRepository,
	publisher *pktNats.Publisher,
	sessions SessionContext,
	log logger.ILogger,
) ITranscriptService {
	return &transcriptService{
		feed:        feed,
		embedder:    embedder,
		transcripts: transcripts,
		publisher:   publisher,
		sessions:    sessions,
		logger:      log,
	}
}

// Ingest accepts one transcript chunk: fans it out to live subscribers,
// indexes it for later context search, and raises a detection event when
// the chunk reads as a question.
func (s *transcriptService) Ingest(ctx context.Context, req *dto.IngestChunkRequest) (*dto.IngestChunkResponse, error) {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	chunk := transcript.Chunk{
		SessionId: req.SessionId,
		Speaker:   req.Speaker,
		Text:      req.Text,
		Timestamp: ts,
	}
	if err := s.feed.Publish(ctx, chunk); err != nil {
		return nil, err
	}

	// Indexing happens off the hot path so a slow embedding call never
	// delays the live fan-out.
	go s.indexChunk(chunk)

	res := &dto.IngestChunkResponse{SessionId: req.SessionId}

	if !IsQuestion(req.Text) {
		return res, nil
	}

	meetingId, orgId, projectId, ok := s.sessions.Resolve(req.SessionId)
	if !ok {
		s.logger.Warn("TranscriptService", "Question detected for unknown session", map[string]interface{}{
			"session_id": req.SessionId,
		})
		return res, nil
	}

	token := searchcache.Fingerprint(req.SessionId.String() + ":" + req.Text)
	q := answering.NewQuestion(uuid.New(), req.SessionId, meetingId, orgId, projectId, req.Text, ts, token)

	if err := s.publisher.Publish(ctx, events.QuestionDetected(q)); err != nil {
		s.logger.Error("TranscriptService", "Failed to publish question detection", map[string]interface{}{
			"session_id": req.SessionId, "error": err.Error(),
		})
		return nil, err
	}

	res.QuestionDetected = true
	res.QuestionId = &q.Id
	return res, nil
}

func (s *transcriptService) indexChunk(chunk transcript.Chunk) {
	embRes, err := s.embedder.Generate(chunk.Text, "RETRIEVAL_DOCUMENT")
	if err != nil {
		s.logger.Warn("TranscriptService", "Failed to embed transcript chunk", map[string]interface{}{
			"session_id": chunk.SessionId, "error": err.Error(),
		})
		return
	}

	row := &model.TranscriptEmbedding{
		SessionId:      chunk.SessionId,
		Speaker:        chunk.Speaker,
		Chunk:          chunk.Text,
		EmbeddingValue: pgvector.NewVector(embRes.Embedding.Values),
		SpokenAt:       chunk.Timestamp,
	}
	if err := s.transcripts.Create(context.Background(), row); err != nil {
		s.logger.Error("TranscriptService", "Failed to index transcript chunk", map[string]interface{}{
			"session_id": chunk.SessionId, "error": err.Error(),
		})
	}
}

var interrogativeStarters = []string{
	"what", "who", "where", "when", "why", "how",
	"does", "do", "did", "is", "are", "can", "could",
	"should", "would", "will", "has", "have",
}

// IsQuestion reports whether an utterance reads as a question. A trailing
// question mark always qualifies; otherwise the utterance must open with
// an interrogative word.
func IsQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	if strings.HasSuffix(trimmed, "?") {
		return true
	}

	first := strings.ToLower(strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.'
	})[0])
	for _, starter := range interrogativeStarters {
		if first == starter {
			return true
		}
	}
	return false
}
