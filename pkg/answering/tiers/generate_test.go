package tiers

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/llm"
	"ai-meetingassist-be/pkg/searchcache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func generatedQuestion() *answering.Question {
	return answering.NewQuestion(uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		"what is our refund policy?", time.Now(), "tok")
}

func newGenTier(provider llm.LLMProvider) *GeneratedTier {
	cache := searchcache.New(16, time.Minute, 0.92)
	return NewGeneratedTier(provider, cache, nil, 0.7, logger.NewNopLogger())
}

func TestGeneratedTierAcceptsConfidentAnswer(t *testing.T) {
	provider := &scriptedLLM{response: `{"answer": "Refunds within 30 days.", "confidence": 0.85}`}
	tier := newGenTier(provider)

	res := tier.Answer(context.Background(), generatedQuestion())

	require.True(t, res.HasAnswer())
	assert.Equal(t, answering.SourceGeneratedFallback, res.Candidate.Source)
	assert.Equal(t, "Refunds within 30 days.", res.Candidate.Text)
	assert.Equal(t, 0.85, res.Candidate.Confidence)
	assert.True(t, res.Candidate.Disclaimer)
}

func TestGeneratedTierParsesFencedResponse(t *testing.T) {
	provider := &scriptedLLM{response: "Sure, here you go:\n```json\n{\"answer\": \"30 days\", \"confidence\": 0.9}\n```"}
	tier := newGenTier(provider)

	res := tier.Answer(context.Background(), generatedQuestion())
	require.True(t, res.HasAnswer())
	assert.Equal(t, "30 days", res.Candidate.Text)
}

func TestGeneratedTierRejections(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{name: "provider error", response: "", err: errors.New("model unavailable")},
		{name: "no json at all", response: "I think the refund policy is 30 days."},
		{name: "malformed json", response: `{"answer": "x", "confidence": }`},
		{name: "empty answer", response: `{"answer": "  ", "confidence": 0.9}`},
		{name: "confidence above one", response: `{"answer": "x", "confidence": 1.5}`},
		{name: "negative confidence", response: `{"answer": "x", "confidence": -0.1}`},
		{name: "below threshold", response: `{"answer": "maybe 30 days", "confidence": 0.4}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := newGenTier(&scriptedLLM{response: tt.response, err: tt.err})
			res := tier.Answer(context.Background(), generatedQuestion())
			assert.False(t, res.HasAnswer())
		})
	}
}

func TestGeneratedTierPromptIncludesCachedContext(t *testing.T) {
	provider := &scriptedLLM{response: `{"answer": "30 days", "confidence": 0.9}`}
	cache := searchcache.New(16, time.Minute, 0.92)
	tier := NewGeneratedTier(provider, cache, nil, 0.7, logger.NewNopLogger())

	q := generatedQuestion()
	scope := searchcache.Scope{
		SessionId: q.SessionId,
		TenantId:  q.OrganizationId,
		Target:    searchcache.TargetOrganization,
	}
	cache.Store(scope, q.Text, nil, searchcache.CachedResult{
		Passages: []searchcache.Passage{{Content: "Policy doc: refunds within 30 days", Score: 0.8}},
	}, 0)

	res := tier.Answer(context.Background(), q)
	require.True(t, res.HasAnswer())

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "Policy doc: refunds within 30 days")
	assert.Contains(t, provider.prompts[0], q.Text)
}
