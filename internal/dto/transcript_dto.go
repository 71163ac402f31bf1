package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestChunkRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Speaker   string    `json:"speaker" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

type IngestChunkResponse struct {
	SessionId        uuid.UUID  `json:"session_id"`
	QuestionDetected bool       `json:"question_detected"`
	QuestionId       *uuid.UUID `json:"question_id,omitempty"`
}
