package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type TranscriptEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Speaker        string          `gorm:"size:128"`
	Chunk          string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 uses 768 dimensions
	SpokenAt       time.Time       `gorm:"not null;index"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
}

func (TranscriptEmbedding) TableName() string {
	return "transcript_embeddings"
}
