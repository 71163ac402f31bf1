package service

import (
	"context"
	"fmt"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/answering/orchestrator"
	"ai-meetingassist-be/pkg/events"
	pktNats "ai-meetingassist-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

// QuestionConsumerService bridges the event bus and the discovery
// pipeline. Every QUESTION_DETECTED event, whether raised by transcript
// ingestion or the detection endpoint, is dispatched here exactly once
// per consumer group.
type QuestionConsumerService struct {
	subscriber   *pktNats.Subscriber
	orchestrator *orchestrator.Orchestrator
	logger       logger.ILogger
}

func NewQuestionConsumerService(sub *pktNats.Subscriber, orch *orchestrator.Orchestrator, log logger.ILogger) *QuestionConsumerService {
	return &QuestionConsumerService{
		subscriber:   sub,
		orchestrator: orch,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *QuestionConsumerService) Start() {
	err := s.subscriber.Subscribe("events."+events.TypeQuestionDetected, "question-pipeline-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("QuestionConsumerService", "Failed to start question consumer", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("QuestionConsumerService", "Question consumer started", nil)
}

func (s *QuestionConsumerService) handleEvent(ctx context.Context, event events.Event) error {
	q, err := questionFromPayload(event.Payload())
	if err != nil {
		// Malformed events are dropped, not retried; NATS redelivery
		// cannot fix a bad payload.
		s.logger.Warn("QuestionConsumerService", "Dropping malformed detection event", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	s.orchestrator.HandleDetected(ctx, q)
	return nil
}

func questionFromPayload(payload map[string]interface{}) (*answering.Question, error) {
	id, err := parseUUIDField(payload, "question_id")
	if err != nil {
		return nil, err
	}
	sessionId, err := parseUUIDField(payload, "session_id")
	if err != nil {
		return nil, err
	}
	meetingId, err := parseUUIDField(payload, "meeting_id")
	if err != nil {
		return nil, err
	}
	orgId, err := parseUUIDField(payload, "organization_id")
	if err != nil {
		return nil, err
	}
	// project scope is optional
	projectId, _ := parseUUIDField(payload, "project_id")

	text, _ := payload["text"].(string)
	if text == "" {
		return nil, fmt.Errorf("missing question text")
	}
	token, _ := payload["correlation_token"].(string)
	if token == "" {
		return nil, fmt.Errorf("missing correlation token")
	}

	detectedAt := time.Now()
	if raw, ok := payload["detected_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			detectedAt = parsed
		}
	}

	return answering.NewQuestion(id, sessionId, meetingId, orgId, projectId, text, detectedAt, token), nil
}

func parseUUIDField(payload map[string]interface{}, key string) (uuid.UUID, error) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing field %q", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid in field %q: %w", key, err)
	}
	return id, nil
}
