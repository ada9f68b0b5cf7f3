package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"docstore/internal/config"
	"docstore/internal/logger"
)

// Vertex completes prompts with a Gemini model on Vertex AI.
type Vertex struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *logger.Logger
}

func NewVertex(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (*Vertex, error) {
	if cfg.VertexProject == "" {
		return nil, fmt.Errorf("missing VERTEX_PROJECT_ID")
	}
	if log == nil {
		log = logger.Nop()
	}
	client, err := genai.NewClient(ctx, cfg.VertexProject, cfg.VertexRegion)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	name := cfg.Model
	if name == "" || strings.Contains(name, "/") {
		// OpenRouter-style names are not valid Vertex model ids.
		name = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(name)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	return &Vertex{client: client, model: model, log: log.Named("llm")}, nil
}

func (v *Vertex) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

func (v *Vertex) Close() error {
	return v.client.Close()
}
