package memory

import (
	"sync"
	"time"

	"ai-meetingassist-be/pkg/answering"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// QuestionRegistry is the orchestrator-scoped registry of active questions.
// Correlation tokens live in a TTL cache so a duplicate detection event is
// ignored even after its question has completed; the active set is a plain
// map for session-wide cancellation.
type QuestionRegistry struct {
	tokens *cache.Cache

	mu     sync.RWMutex
	active map[uuid.UUID]map[uuid.UUID]*answering.Question // session -> question id -> question
}

func NewQuestionRegistry(dedupTTL time.Duration) *QuestionRegistry {
	if dedupTTL <= 0 {
		dedupTTL = 1 * time.Hour
	}
	// Purge expired tokens every 10 minutes
	c := cache.New(dedupTTL, 10*time.Minute)
	return &QuestionRegistry{
		tokens: c,
		active: make(map[uuid.UUID]map[uuid.UUID]*answering.Question),
	}
}

// Register adds the question to the active set. Returns false if the
// correlation token was already seen (duplicate detection event).
func (r *QuestionRegistry) Register(q *answering.Question) bool {
	// cache.Add is atomic: it fails if the key exists.
	if err := r.tokens.Add(q.CorrelationToken, q.Id, cache.DefaultExpiration); err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.active[q.SessionId]
	if !ok {
		session = make(map[uuid.UUID]*answering.Question)
		r.active[q.SessionId] = session
	}
	session[q.Id] = q
	return true
}

// Deactivate removes a completed question from the active set. Its
// correlation token keeps deduplicating until the TTL lapses.
func (r *QuestionRegistry) Deactivate(q *answering.Question) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.active[q.SessionId]; ok {
		delete(session, q.Id)
		if len(session) == 0 {
			delete(r.active, q.SessionId)
		}
	}
}

// ActiveForSession snapshots the session's in-flight questions.
func (r *QuestionRegistry) ActiveForSession(sessionId uuid.UUID) []*answering.Question {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.active[sessionId]
	if !ok {
		return nil
	}
	questions := make([]*answering.Question, 0, len(session))
	for _, q := range session {
		questions = append(questions, q)
	}
	return questions
}

// Find looks up an in-flight question by id across all sessions.
func (r *QuestionRegistry) Find(questionId uuid.UUID) (*answering.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.active {
		if q, ok := session[questionId]; ok {
			return q, true
		}
	}
	return nil, false
}

// ActiveCount reports the number of in-flight questions across sessions.
func (r *QuestionRegistry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, session := range r.active {
		count += len(session)
	}
	return count
}
