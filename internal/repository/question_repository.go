package repository

import (
	"context"

	"ai-meetingassist-be/internal/model"
	"ai-meetingassist-be/pkg/answering"

	"github.com/google/uuid"
)

// QuestionRepository is the persistence collaborator for question/answer
// records. The core only writes commits and expiries through it; the
// orchestrator holds the authoritative in-memory state while a question
// is active.
type QuestionRepository interface {
	// SaveAnswer upserts the question row and writes its committed answer.
	SaveAnswer(ctx context.Context, q *answering.Question, c answering.Candidate) error

	// SaveExpiry upserts the question row in the EXPIRED state.
	SaveExpiry(ctx context.Context, q *answering.Question) error

	// FindById loads a persisted question and its answer, if committed.
	FindById(ctx context.Context, id uuid.UUID) (*model.Question, *model.Answer, error)
}
