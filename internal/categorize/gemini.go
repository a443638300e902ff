package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"finboard/internal/core"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// generator is the subset of genai.Models used here.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini categorizes and narrates through the Gemini API.
type Gemini struct {
	models generator
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGemini(client.Models, model, logger), nil
}

func newGemini(models generator, model string, logger *slog.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{models: models, model: model, logger: logger.With("component", "gemini")}
}

func userPrompt(text string) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: text}},
	}}
}

// Categorize asks the model for one label per description, constrained to
// the vocabulary of kind by a JSON response schema.
func (g *Gemini) Categorize(ctx context.Context, kind core.Kind, descriptions []string) []string {
	if len(descriptions) == 0 {
		return []string{}
	}
	v, err := core.VocabularyFor(kind)
	if err != nil {
		v, _ = core.VocabularyFor(core.KindAccount)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString, Enum: v.Labels},
		},
	}
	resp, err := g.models.GenerateContent(ctx, g.model, userPrompt(categorizationPrompt(kind, v, descriptions)), cfg)
	if err != nil {
		g.logger.ErrorContext(ctx, "Categorization request failed", "kind", kind, "count", len(descriptions), "error", err)
		return v.Fill(len(descriptions))
	}

	var labels []string
	if err := json.Unmarshal([]byte(cleanModelJSON(resp.Text())), &labels); err != nil {
		g.logger.ErrorContext(ctx, "Categorization response is not a JSON array", "kind", kind, "error", err)
		return v.Fill(len(descriptions))
	}
	out, ok := conform(v, labels, len(descriptions))
	if !ok {
		g.logger.WarnContext(ctx, "Categorization response length mismatch",
			"kind", kind, "expected", len(descriptions), "got", len(labels))
	}
	return out
}

// GenerateAnalysis returns the model's markdown or FailureMessage.
func (g *Gemini) GenerateAnalysis(ctx context.Context, in AnalysisInput) string {
	resp, err := g.models.GenerateContent(ctx, g.model, userPrompt(analysisPrompt(in)), nil)
	if err != nil {
		g.logger.ErrorContext(ctx, "Analysis request failed", "kind", in.Kind, "error", err)
		return FailureMessage
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.logger.WarnContext(ctx, "Analysis response was empty", "kind", in.Kind)
		return FailureMessage
	}
	return text
}

// cleanModelJSON strips markdown fences and surrounding prose from a model
// answer that should have been a bare JSON array.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}
