package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements Generator by calling Google Gemini directly
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a new Gemini generator
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	return NewGeminiWithOptions(apiKey, modelName)
}

// NewGeminiWithOptions creates a Gemini generator with extra client options,
// e.g. option.WithEndpoint for tests
func NewGeminiWithOptions(apiKey string, modelName string, opts ...option.ClientOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{client: client, modelName: modelName}, nil
}

// Complete asks the model for a reply to the prompt
func (g *Gemini) Complete(ctx context.Context, system, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no response from gemini", ErrGateway)
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply.WriteString(string(text))
		}
	}
	return reply.String(), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
