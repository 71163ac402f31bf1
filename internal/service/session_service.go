package service

import (
	"context"
	"sync"

	"ai-meetingassist-be/internal/dto"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/internal/repository"
	"ai-meetingassist-be/pkg/answering/orchestrator"
	"ai-meetingassist-be/pkg/searchcache"

	"github.com/google/uuid"
)

type ISessionService interface {
	Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	End(ctx context.Context, sessionId uuid.UUID) (*dto.EndSessionResponse, error)
	Resolve(sessionId uuid.UUID) (meetingId, organizationId, projectId uuid.UUID, ok bool)
}

type sessionIdentity struct {
	meetingId      uuid.UUID
	organizationId uuid.UUID
	projectId      uuid.UUID
}

// sessionService tracks the identity of every live session and owns its
// teardown: in-flight questions, cached search results and the transcript
// index all drop when the meeting ends.
type sessionService struct {
	orchestrator *orchestrator.Orchestrator
	cache        *searchcache.Cache
	transcripts  repository.TranscriptEmbeddingRepository
	logger       logger.ILogger

	mu       sync.RWMutex
	sessions map[uuid.UUID]sessionIdentity
}

func NewSessionService(
	orch *orchestrator.Orchestrator,
	cache *searchcache.Cache,
	transcripts repository.TranscriptEmbeddingRepository,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		orchestrator: orch,
		cache:        cache,
		transcripts:  transcripts,
		logger:       log,
		sessions:     make(map[uuid.UUID]sessionIdentity),
	}
}

func (s *sessionService) Start(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	s.mu.Lock()
	s.sessions[req.SessionId] = sessionIdentity{
		meetingId:      req.MeetingId,
		organizationId: req.OrganizationId,
		projectId:      req.ProjectId,
	}
	s.mu.Unlock()

	s.logger.Info("SessionService", "Session started", map[string]interface{}{
		"session_id": req.SessionId, "meeting_id": req.MeetingId,
	})
	return &dto.StartSessionResponse{SessionId: req.SessionId}, nil
}

func (s *sessionService) End(ctx context.Context, sessionId uuid.UUID) (*dto.EndSessionResponse, error) {
	s.mu.Lock()
	delete(s.sessions, sessionId)
	s.mu.Unlock()

	cancelled := s.orchestrator.CancelSession(ctx, sessionId)
	s.cache.DropSession(sessionId)

	if err := s.transcripts.DeleteBySessionId(ctx, sessionId); err != nil {
		s.logger.Error("SessionService", "Failed to drop transcript index", map[string]interface{}{
			"session_id": sessionId, "error": err.Error(),
		})
	}

	s.logger.Info("SessionService", "Session ended", map[string]interface{}{
		"session_id": sessionId, "questions_cancelled": cancelled,
	})
	return &dto.EndSessionResponse{SessionId: sessionId, QuestionsCancelled: cancelled}, nil
}

func (s *sessionService) Resolve(sessionId uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.sessions[sessionId]
	if !ok {
		return uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return identity.meetingId, identity.organizationId, identity.projectId, true
}
