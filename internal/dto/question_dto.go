package dto

import (
	"time"

	"github.com/google/uuid"
)

type DetectQuestionRequest struct {
	SessionId      uuid.UUID `json:"session_id" validate:"required"`
	MeetingId      uuid.UUID `json:"meeting_id" validate:"required"`
	OrganizationId uuid.UUID `json:"organization_id" validate:"required"`
	ProjectId      uuid.UUID `json:"project_id"`
	Text           string    `json:"text" validate:"required"`
	DetectedAt     time.Time `json:"detected_at"`
}

type DetectQuestionResponse struct {
	QuestionId uuid.UUID `json:"question_id"`
	Status     string    `json:"status"`
}

type QuestionStatusResponse struct {
	QuestionId uuid.UUID       `json:"question_id"`
	Status     string          `json:"status"`
	Answer     *AnswerResponse `json:"answer,omitempty"`
}

type AnswerResponse struct {
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Speaker    string    `json:"speaker,omitempty"`
	Confidence float64   `json:"confidence"`
	Disclaimer bool      `json:"disclaimer"`
	ProducedAt time.Time `json:"produced_at"`
}

// QuestionStatusEvent is the websocket payload pushed on every status
// change of a tracked question.
type QuestionStatusEvent struct {
	QuestionId uuid.UUID       `json:"question_id"`
	SessionId  uuid.UUID       `json:"session_id"`
	Text       string          `json:"text"`
	Status     string          `json:"status"`
	Answer     *AnswerResponse `json:"answer,omitempty"`
}
