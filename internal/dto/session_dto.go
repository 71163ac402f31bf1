package dto

import "github.com/google/uuid"

type StartSessionRequest struct {
	SessionId      uuid.UUID `json:"session_id" validate:"required"`
	MeetingId      uuid.UUID `json:"meeting_id" validate:"required"`
	OrganizationId uuid.UUID `json:"organization_id" validate:"required"`
	ProjectId      uuid.UUID `json:"project_id"`
}

type StartSessionResponse struct {
	SessionId uuid.UUID `json:"session_id"`
}

type EndSessionResponse struct {
	SessionId          uuid.UUID `json:"session_id"`
	QuestionsCancelled int       `json:"questions_cancelled"`
}
