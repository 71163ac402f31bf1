package service

import (
	"context"

	"ai-meetingassist-be/internal/dto"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/events"
	pktNats "ai-meetingassist-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

// StatusDelivery defines how to push real-time status updates.
// Typically implemented by the WebSocket Hub.
type StatusDelivery interface {
	Send(sessionID uuid.UUID, eventType string, payload interface{})
}

// NotifierService is the single outbound path for question lifecycle
// results: websocket push for the session's participants plus a bus event
// for downstream consumers. Invoked exactly once per commit or expiry.
type NotifierService struct {
	delivery  StatusDelivery
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNotifierService(delivery StatusDelivery, publisher *pktNats.Publisher, log logger.ILogger) *NotifierService {
	return &NotifierService{
		delivery:  delivery,
		publisher: publisher,
		logger:    log,
	}
}

func (s *NotifierService) QuestionAnswered(q *answering.Question, c answering.Candidate) {
	if s.delivery != nil {
		s.delivery.Send(q.SessionId, "question_status", dto.QuestionStatusEvent{
			QuestionId: q.Id,
			SessionId:  q.SessionId,
			Text:       q.Text,
			Status:     string(answering.StatusAnswered),
			Answer:     candidateToResponse(&c),
		})
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(context.Background(), events.QuestionAnswered(q, c)); err != nil {
			s.logger.Error("NotifierService", "Failed to publish answer event", map[string]interface{}{
				"question_id": q.Id, "error": err.Error(),
			})
		}
	}
}

func (s *NotifierService) QuestionExpired(q *answering.Question) {
	if s.delivery != nil {
		s.delivery.Send(q.SessionId, "question_status", dto.QuestionStatusEvent{
			QuestionId: q.Id,
			SessionId:  q.SessionId,
			Text:       q.Text,
			Status:     string(answering.StatusExpired),
		})
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(context.Background(), events.QuestionExpired(q)); err != nil {
			s.logger.Error("NotifierService", "Failed to publish expiry event", map[string]interface{}{
				"question_id": q.Id, "error": err.Error(),
			})
		}
	}
}
