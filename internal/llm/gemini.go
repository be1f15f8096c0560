package llm

import (
	"context"
	"fmt"
	"strings"

	"ai-fitness-planner/internal/config"
	"ai-fitness-planner/internal/schema"
	"ai-fitness-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is a client for the Google Gemini API using controlled JSON output.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: cfg.GeminiModel}, nil
}

// Generate sends the prompt with the response schema and returns the JSON text.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (ContentResponse, error) {
	// A model handle per call keeps concurrent requests from sharing settings.
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(req.Temperature)
	model.ResponseMIMEType = "application/json"
	if req.Schema != nil {
		model.ResponseSchema = ToGenaiSchema(req.Schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			return ContentResponse{}, fmt.Errorf("generated content is not text")
		}
		sb.WriteString(string(text))
	}

	usage := shared.TokenUsage{Model: c.modelName}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return ContentResponse{Content: sb.String(), Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// ToGenaiSchema converts a schema tree to Gemini's response schema.
// Gemini has no notion of closed objects or non-empty strings, so those rules
// are only enforced when the response is validated.
func ToGenaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
	}

	switch s.Type {
	case schema.TypeObject:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = ToGenaiSchema(p.Schema)
		}
		out.Required = append([]string(nil), s.Required...)
	case schema.TypeArray:
		out.Type = genai.TypeArray
		out.Items = ToGenaiSchema(s.Items)
	case schema.TypeString:
		out.Type = genai.TypeString
	case schema.TypeInteger:
		out.Type = genai.TypeInteger
	case schema.TypeNumber:
		out.Type = genai.TypeNumber
	case schema.TypeBoolean:
		out.Type = genai.TypeBoolean
	}

	return out
}
