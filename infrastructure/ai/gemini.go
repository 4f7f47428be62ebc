package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eunyuson/GRACE-sub002/application/ports"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiGenerator implements ports.TextGenerator against the Gemini
// API. All prompts ask for a JSON array so the responses parse without
// heuristics.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGeminiGenerator creates a Gemini-backed text generator. A missing
// API key is not an error: the generator comes up disabled and every
// pipeline entry point reports the collaborator as unavailable.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		logger.Warn("GenAI API key not set, text generation disabled")
		return &GeminiGenerator{model: model, logger: logger}, nil
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiGenerator{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// IsEnabled reports whether the generator can serve requests
func (g *GeminiGenerator) IsEnabled() bool {
	return g.client != nil
}

// GenerateReactionSnippets drafts short first-person reactions to a
// news item, framed around the concept the card is about.
func (g *GeminiGenerator) GenerateReactionSnippets(ctx context.Context, title, body, conceptName string) ([]string, error) {
	prompt := fmt.Sprintf(`다음 뉴스 기사를 읽고, "%s"(이)라는 개념의 관점에서 떠오르는 짧은 반응을 3개 작성해 주세요.
각 반응은 한두 문장의 일인칭 소감이어야 합니다.

제목: %s

본문:
%s

JSON 문자열 배열로만 답해 주세요. 예: ["반응 1", "반응 2", "반응 3"]`, conceptName, title, body)

	return g.generateStrings(ctx, prompt)
}

// GenerateConclusionCandidates synthesizes one-line conclusion
// candidates from the reactions the author confirmed.
func (g *GeminiGenerator) GenerateConclusionCandidates(ctx context.Context, pinnedReactions []string, conceptName, question string) ([]string, error) {
	prompt := fmt.Sprintf(`"%s"(이)라는 개념에 대한 질문과, 작성자가 확정한 반응들이 있습니다.

질문: %s

확정된 반응:
- %s

이 반응들을 종합해 질문에 대한 한 문장짜리 결론 후보를 3개 작성해 주세요.
JSON 문자열 배열로만 답해 주세요.`, conceptName, question, strings.Join(pinnedReactions, "\n- "))

	return g.generateStrings(ctx, prompt)
}

// scriptureResult is the wire shape of one ranked recommendation
type scriptureResult struct {
	ReflectionID string  `json:"reflectionId"`
	Reason       string  `json:"reason"`
	Similarity   float64 `json:"similarity"`
}

// RecommendScriptures ranks the user's own reflections against the
// picked conclusion. Only IDs from the given pool are valid answers.
func (g *GeminiGenerator) RecommendScriptures(ctx context.Context, conclusion string, pool []ports.Reflection) ([]ports.ScriptureRecommendation, error) {
	if len(pool) == 0 {
		return []ports.ScriptureRecommendation{}, nil
	}

	var sb strings.Builder
	for _, r := range pool {
		fmt.Fprintf(&sb, "- id: %s / 구절: %s / 내용: %s\n", r.ID, r.BibleRef, r.Content)
	}

	prompt := fmt.Sprintf(`작성자가 내린 결론과, 작성자가 기록해 둔 묵상 목록이 있습니다.

결론: %s

묵상 목록:
%s

결론을 뒷받침하는 묵상을 최대 3개 골라 주세요. 반드시 목록에 있는 id만 사용하세요.
다음 형식의 JSON 배열로만 답해 주세요:
[{"reflectionId": "...", "reason": "추천 이유 한 문장", "similarity": 0.0에서 1.0 사이의 관련도}]`, conclusion, sb.String())

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var results []scriptureResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("failed to parse scripture recommendations: %w", err)
	}

	valid := make(map[string]bool, len(pool))
	for _, r := range pool {
		valid[r.ID] = true
	}

	recs := make([]ports.ScriptureRecommendation, 0, len(results))
	for _, r := range results {
		if !valid[r.ReflectionID] {
			g.logger.Warn("Dropping recommendation outside the pool",
				zap.String("reflectionID", r.ReflectionID),
			)
			continue
		}
		recs = append(recs, ports.ScriptureRecommendation{
			ReflectionID: r.ReflectionID,
			Reason:       r.Reason,
			Similarity:   r.Similarity,
		})
	}
	return recs, nil
}

func (g *GeminiGenerator) generateStrings(ctx context.Context, prompt string) ([]string, error) {
	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var texts []string
	if err := json.Unmarshal([]byte(raw), &texts); err != nil {
		return nil, fmt.Errorf("failed to parse generated texts: %w", err)
	}

	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

func (g *GeminiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("text generation is disabled")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("GenAI generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("GenAI returned an empty response")
	}
	return text, nil
}
