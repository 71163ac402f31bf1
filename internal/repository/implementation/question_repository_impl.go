package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-meetingassist-be/internal/model"
	"ai-meetingassist-be/internal/repository"
	"ai-meetingassist-be/pkg/answering"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepositoryImpl struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) repository.QuestionRepository {
	return &QuestionRepositoryImpl{db: db}
}

func (r *QuestionRepositoryImpl) SaveAnswer(ctx context.Context, q *answering.Question, c answering.Candidate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.upsertQuestion(tx, q, string(answering.StatusAnswered)); err != nil {
			return err
		}

		answer := &model.Answer{
			QuestionId: q.Id,
			Text:       c.Text,
			Source:     string(c.Source),
			Speaker:    c.Speaker,
			Confidence: c.Confidence,
			Disclaimer: c.Disclaimer,
			ProducedAt: c.ProducedAt,
		}
		// An answer is immutable once committed; DoNothing keeps the first write.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}},
			DoNothing: true,
		}).Create(answer).Error; err != nil {
			return fmt.Errorf("failed to persist answer: %w", err)
		}
		return nil
	})
}

func (r *QuestionRepositoryImpl) SaveExpiry(ctx context.Context, q *answering.Question) error {
	return r.upsertQuestion(r.db.WithContext(ctx), q, string(answering.StatusExpired))
}

func (r *QuestionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*model.Question, *model.Answer, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, nil, err
	}

	var answer model.Answer
	err := r.db.WithContext(ctx).First(&answer, "question_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &question, nil, nil
		}
		return nil, nil, err
	}
	return &question, &answer, nil
}

func (r *QuestionRepositoryImpl) upsertQuestion(tx *gorm.DB, q *answering.Question, status string) error {
	row := &model.Question{
		Id:               q.Id,
		SessionId:        q.SessionId,
		MeetingId:        q.MeetingId,
		OrganizationId:   q.OrganizationId,
		ProjectId:        q.ProjectId,
		Text:             q.Text,
		CorrelationToken: q.CorrelationToken,
		Status:           status,
		DetectedAt:       q.DetectedAt,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(row).Error; err != nil {
		return fmt.Errorf("failed to persist question: %w", err)
	}
	return nil
}
