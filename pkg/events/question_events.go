package events

import (
	"time"

	"ai-meetingassist-be/pkg/answering"
)

const (
	TypeQuestionDetected = "QUESTION_DETECTED"
	TypeQuestionAnswered = "QUESTION_ANSWERED"
	TypeQuestionExpired  = "QUESTION_EXPIRED"
)

// QuestionDetected builds the lifecycle event emitted when a spoken question
// enters the discovery pipeline.
func QuestionDetected(q *answering.Question) Event {
	return BaseEvent{
		Type: TypeQuestionDetected,
		Data: map[string]interface{}{
			"question_id":       q.Id.String(),
			"session_id":        q.SessionId.String(),
			"meeting_id":        q.MeetingId.String(),
			"organization_id":   q.OrganizationId.String(),
			"project_id":        q.ProjectId.String(),
			"text":              q.Text,
			"detected_at":       q.DetectedAt.Format(time.RFC3339),
			"correlation_token": q.CorrelationToken,
		},
		OccurredAt: time.Now(),
	}
}

// QuestionAnswered builds the lifecycle event for a committed answer.
func QuestionAnswered(q *answering.Question, c answering.Candidate) Event {
	return BaseEvent{
		Type: TypeQuestionAnswered,
		Data: map[string]interface{}{
			"question_id": q.Id.String(),
			"session_id":  q.SessionId.String(),
			"status":      string(answering.StatusAnswered),
			"answer":      c.Text,
			"source":      string(c.Source),
			"confidence":  c.Confidence,
			"disclaimer":  c.Disclaimer,
		},
		OccurredAt: c.ProducedAt,
	}
}

// QuestionExpired builds the lifecycle event for a question that ran out
// of time with no acceptable answer.
func QuestionExpired(q *answering.Question) Event {
	return BaseEvent{
		Type: TypeQuestionExpired,
		Data: map[string]interface{}{
			"question_id": q.Id.String(),
			"session_id":  q.SessionId.String(),
			"status":      string(answering.StatusExpired),
		},
		OccurredAt: time.Now(),
	}
}
