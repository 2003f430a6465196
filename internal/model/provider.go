// Package model wraps the fine-tuned temple expert model behind a narrow
// text-generation interface. The model holds "frozen knowledge": historical
// and cultural facts baked into its weights at fine-tuning time.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/karpagadevi/templed/internal/ollama"
)

const defaultMaxTokens = 512

// Provider generates text from the fine-tuned model. A nil Provider on the
// router is valid and degrades to a placeholder response.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Generation parameters matching those used during fine-tuning evaluation.
const (
	genTemperature = 0.7
	genTopP        = 0.9
)

// OllamaProvider serves the fine-tuned model through a local Ollama instance.
type OllamaProvider struct {
	client *ollama.Client
	model  string
}

// NewOllamaProvider creates a provider for the named model. A missing model
// name is a configuration error.
func NewOllamaProvider(client *ollama.Client, model string) (*OllamaProvider, error) {
	if model == "" {
		return nil, errors.New("model name not set; configure ollama.model or leave the model disabled")
	}
	return &OllamaProvider{client: client, model: model}, nil
}

// Generate formats the query in the instruction template the model was
// fine-tuned on, runs the completion, and returns only the answer portion.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	raw, err := p.client.Generate(ctx, p.model, BuildPrompt(prompt), &ollama.GenerateOptions{
		NumPredict:  maxTokens,
		Temperature: genTemperature,
		TopP:        genTopP,
	})
	if err != nil {
		return "", fmt.Errorf("generating model response: %w", err)
	}

	return ExtractResponse(raw), nil
}
