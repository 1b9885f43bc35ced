package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

// NormalizeProvider maps accepted spellings to a provider constant.
func NormalizeProvider(provider string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOllama:
		return ProviderOllama, nil
	case ProviderLMStudio, "lm-studio", "llmstudio":
		return ProviderLMStudio, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// NewClient creates an LLM client based on provider configuration.
func NewClient(provider, model, baseURL string) (Client, error) {
	p, err := NormalizeProvider(provider)
	if err != nil {
		return nil, err
	}
	switch p {
	case ProviderLMStudio:
		return NewLMStudioClient(model, baseURL)
	default:
		return NewOllamaClient(model, baseURL)
	}
}

// Resolve lists the installed models, chooses one with ChooseModel and
// returns a client for it.
func Resolve(ctx context.Context, provider, model, baseURL string) (Client, error) {
	p, err := NormalizeProvider(provider)
	if err != nil {
		return nil, err
	}

	var lister ModelLister
	switch p {
	case ProviderLMStudio:
		lister = NewLMStudioModels(baseURL)
	default:
		lister = NewOllamaModels(baseURL, nil)
	}

	available, err := lister.Models(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	chosen, err := ChooseModel(model, available)
	if err != nil {
		return nil, err
	}
	if chosen != model {
		log.Warn().Str("configured", model).Str("model", chosen).Msg("configured model not installed, using another one")
	}
	return NewClient(p, chosen, baseURL)
}
