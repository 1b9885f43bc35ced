// Package llm provides chat clients for the local model servers used to
// generate task insights.
package llm

import (
	"context"
	"errors"
)

// ErrNoModels is returned when the model server has no model installed.
var ErrNoModels = errors.New("no model is available, install one with 'ollama pull llama3.1'")

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sampling holds generation settings sent with every request.
type Sampling struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// DefaultSampling keeps answers short enough to read in a modal.
var DefaultSampling = Sampling{Temperature: 0.7, TopP: 0.9, MaxTokens: 800}

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends messages to the LLM and returns the response.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Model returns the model used for generation.
	Model() string
}

// ModelLister lists the models installed on the server.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
}

// fallbackModels are tried in order after the configured model.
var fallbackModels = []string{
	"llama3.1:latest",
	"llama3.1",
	"llama3:latest",
	"llama3",
	"mistral:latest",
	"mistral",
}

// ChooseModel picks the model to use: the configured one when installed,
// then the first known fallback, then whatever is installed first.
func ChooseModel(configured string, available []string) (string, error) {
	installed := make(map[string]bool, len(available))
	for _, m := range available {
		installed[m] = true
	}

	candidates := fallbackModels
	if configured != "" {
		candidates = append([]string{configured}, fallbackModels...)
	}
	for _, m := range candidates {
		if installed[m] {
			return m, nil
		}
	}
	if len(available) > 0 {
		return available[0], nil
	}
	return "", ErrNoModels
}
