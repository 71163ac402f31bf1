package service

import (
	"context"
	"time"

	"ai-meetingassist-be/internal/dto"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/internal/repository"
	"ai-meetingassist-be/internal/repository/memory"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/events"
	pktNats "ai-meetingassist-be/pkg/nats" // Renamed to avoid collision
	"ai-meetingassist-be/pkg/searchcache"

	"github.com/google/uuid"
)

type IQuestionService interface {
	Detect(ctx context.Context, req *dto.DetectQuestionRequest) (*dto.DetectQuestionResponse, error)
	Status(ctx context.Context, questionId uuid.UUID) (*dto.QuestionStatusResponse, error)
}

type questionService struct {
	publisher *pktNats.Publisher
	registry  *memory.QuestionRegistry
	questions repository.QuestionRepository
	logger    logger.ILogger
}

func NewQuestionService(
	publisher *pktNats.Publisher,
	registry *memory.QuestionRegistry,
	questions repository.QuestionRepository,
	log logger.ILogger,
) IQuestionService {
	return &questionService{
		publisher: publisher,
		registry:  registry,
		questions: questions,
		logger:    log,
	}
}

// Detect raises a detection event for an externally spotted question. The
// same consumer that handles passive transcript detections picks it up,
// so both entry points share one dedup and one lifecycle.
func (s *questionService) Detect(ctx context.Context, req *dto.DetectQuestionRequest) (*dto.DetectQuestionResponse, error) {
	detectedAt := req.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now()
	}

	token := searchcache.Fingerprint(req.SessionId.String() + ":" + req.Text)
	q := answering.NewQuestion(uuid.New(), req.SessionId, req.MeetingId, req.OrganizationId, req.ProjectId, req.Text, detectedAt, token)

	if err := s.publisher.Publish(ctx, events.QuestionDetected(q)); err != nil {
		return nil, err
	}

	return &dto.DetectQuestionResponse{
		QuestionId: q.Id,
		Status:     string(q.Status()),
	}, nil
}

// Status reads the live state of an in-flight question, falling back to
// the persisted record once the question has completed.
func (s *questionService) Status(ctx context.Context, questionId uuid.UUID) (*dto.QuestionStatusResponse, error) {
	if q, ok := s.registry.Find(questionId); ok {
		res := &dto.QuestionStatusResponse{
			QuestionId: q.Id,
			Status:     string(q.Status()),
		}
		if answer := q.Answer(); answer != nil {
			res.Answer = candidateToResponse(answer)
		}
		return res, nil
	}

	row, answer, err := s.questions.FindById(ctx, questionId)
	if err != nil {
		return nil, err
	}

	res := &dto.QuestionStatusResponse{
		QuestionId: row.Id,
		Status:     row.Status,
	}
	if answer != nil {
		res.Answer = &dto.AnswerResponse{
			Text:       answer.Text,
			Source:     answer.Source,
			Speaker:    answer.Speaker,
			Confidence: answer.Confidence,
			Disclaimer: answer.Disclaimer,
			ProducedAt: answer.ProducedAt,
		}
	}
	return res, nil
}

func candidateToResponse(c *answering.Candidate) *dto.AnswerResponse {
	return &dto.AnswerResponse{
		Text:       c.Text,
		Source:     string(c.Source),
		Speaker:    c.Speaker,
		Confidence: c.Confidence,
		Disclaimer: c.Disclaimer,
		ProducedAt: c.ProducedAt,
	}
}
