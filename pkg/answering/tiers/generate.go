package tiers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/embedding"
	"ai-meetingassist-be/pkg/llm"
	"ai-meetingassist-be/pkg/searchcache"
)

// GeneratedTier asks a language model to synthesize a best-effort answer
// when no grounded answer surfaced in time. The model's own answer is
// rejected locally when confidence is below threshold or the response
// does not parse as the expected JSON shape. Accepted answers always
// carry the disclaimer flag.
type GeneratedTier struct {
	provider  llm.LLMProvider
	cache     *searchcache.Cache
	embedder  embedding.EmbeddingProvider
	threshold float64
	logger    logger.ILogger
}

func NewGeneratedTier(provider llm.LLMProvider, cache *searchcache.Cache, embedder embedding.EmbeddingProvider, threshold float64, log logger.ILogger) *GeneratedTier {
	return &GeneratedTier{
		provider:  provider,
		cache:     cache,
		embedder:  embedder,
		threshold: threshold,
		logger:    log,
	}
}

func (t *GeneratedTier) Source() answering.Source {
	return answering.SourceGeneratedFallback
}

type generatedAnswer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

func (t *GeneratedTier) Answer(ctx context.Context, q *answering.Question) answering.Result {
	prompt := t.buildPrompt(q)

	raw, err := t.provider.Generate(ctx, prompt, llm.WithTemperature(0.2))
	if err != nil {
		t.logger.Warn("GeneratedTier", "Generation failed", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
		return answering.NoAnswer()
	}

	parsed, err := parseGeneratedAnswer(raw)
	if err != nil {
		t.logger.Warn("GeneratedTier", "Malformed generation response", map[string]interface{}{
			"question_id": q.Id, "error": err.Error(),
		})
		return answering.NoAnswer()
	}

	if parsed.Confidence < t.threshold {
		t.logger.Info("GeneratedTier", "Model self-reported confidence below threshold", map[string]interface{}{
			"question_id": q.Id, "confidence": parsed.Confidence,
		})
		return answering.NoAnswer()
	}

	return answering.Answered(answering.Candidate{
		Source:     answering.SourceGeneratedFallback,
		Text:       parsed.Answer,
		Confidence: parsed.Confidence,
		Disclaimer: true, // generated, not grounded
		ProducedAt: time.Now(),
	})
}

// buildPrompt assembles the question plus whatever meeting/document context
// the earlier search tiers left behind in the shared cache.
func (t *GeneratedTier) buildPrompt(q *answering.Question) string {
	var queryVector []float32
	if t.embedder != nil {
		if embeddingRes, err := t.embedder.Generate(q.Text, "RETRIEVAL_QUERY"); err == nil {
			queryVector = embeddingRes.Embedding.Values
		}
	}

	var contextPassages []searchcache.Passage
	scopes := []searchcache.Scope{
		{SessionId: q.SessionId, TenantId: q.OrganizationId, Target: searchcache.TargetOrganization},
		{SessionId: q.SessionId, TenantId: q.MeetingId, Target: searchcache.TargetMeeting},
	}
	for _, scope := range scopes {
		if cached, ok := t.cache.Lookup(scope, q.Text, queryVector); ok {
			contextPassages = append(contextPassages, cached.Passages...)
		}
	}

	var prompt strings.Builder
	prompt.WriteString("You are answering a question asked out loud during a meeting.\n\n")

	if len(contextPassages) > 0 {
		prompt.WriteString("<context>\n")
		for _, p := range contextPassages {
			prompt.WriteString("- ")
			prompt.WriteString(p.Content)
			prompt.WriteString("\n")
		}
		prompt.WriteString("</context>\n\n")
	}

	prompt.WriteString("<question>\n")
	prompt.WriteString(q.Text)
	prompt.WriteString("\n</question>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with ONLY valid JSON:\n")
	prompt.WriteString("{\n")
	prompt.WriteString("  \"answer\": \"your best-effort answer\",\n")
	prompt.WriteString("  \"confidence\": 0.80\n")
	prompt.WriteString("}\n")
	prompt.WriteString("confidence is your own estimate in [0,1] of the answer being correct.\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}

func parseGeneratedAnswer(response string) (*generatedAnswer, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var parsed generatedAnswer
	if err := json.Unmarshal([]byte(jsonContent), &parsed); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	if strings.TrimSpace(parsed.Answer) == "" {
		return nil, fmt.Errorf("empty answer field")
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return nil, fmt.Errorf("confidence %f outside [0,1]", parsed.Confidence)
	}

	return &parsed, nil
}

// extractJSON pulls the first JSON object out of a model response that may
// be wrapped in prose or code fences.
func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
