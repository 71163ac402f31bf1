package model

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionId        uuid.UUID `gorm:"type:uuid;not null;index"`
	MeetingId        uuid.UUID `gorm:"type:uuid;not null;index"`
	OrganizationId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProjectId        uuid.UUID `gorm:"type:uuid;index"`
	Text             string    `gorm:"type:text;not null"`
	CorrelationToken string    `gorm:"size:64;uniqueIndex"`
	Status           string    `gorm:"size:16;not null"`
	DetectedAt       time.Time `gorm:"not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Question) TableName() string {
	return "questions"
}

type Answer struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	QuestionId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Text       string    `gorm:"type:text;not null"`
	Source     string    `gorm:"size:32;not null"`
	Speaker    string    `gorm:"size:128"`
	Confidence float64   `gorm:"not null"`
	Disclaimer bool      `gorm:"default:false"`
	ProducedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Answer) TableName() string {
	return "answers"
}
