package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultLMStudioBaseURL = "http://localhost:1234/v1"

// LMStudioClient implements the Client interface using LM Studio's OpenAI-compatible API.
type LMStudioClient struct {
	client   openai.Client
	model    string
	baseURL  string
	sampling Sampling
}

// NewLMStudioClient creates a new LM Studio client.
func NewLMStudioClient(model, baseURL string) (*LMStudioClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("lm studio model is required")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}

	return &LMStudioClient{
		client:   newOpenAI(baseURL),
		model:    model,
		baseURL:  baseURL,
		sampling: DefaultSampling,
	}, nil
}

func newOpenAI(baseURL string) openai.Client {
	apiKey := os.Getenv("LMSTUDIO_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = "lm-studio"
	}
	return openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
}

// Model implements Client.
func (c *LMStudioClient) Model() string { return c.model }

// Chat sends messages to the LLM and returns the response.
func (c *LMStudioClient) Chat(ctx context.Context, messages []Message) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case "system":
			openaiMessages[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			openaiMessages[i] = openai.AssistantMessage(msg.Content)
		default:
			openaiMessages[i] = openai.UserMessage(msg.Content)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    openaiMessages,
		Temperature: openai.Float(c.sampling.Temperature),
		TopP:        openai.Float(c.sampling.TopP),
		MaxTokens:   openai.Int(int64(c.sampling.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("lm studio chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// LMStudioModels lists the models loaded in LM Studio.
type LMStudioModels struct {
	client openai.Client
}

// NewLMStudioModels creates a lister for the server at baseURL.
func NewLMStudioModels(baseURL string) *LMStudioModels {
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}
	return &LMStudioModels{client: newOpenAI(baseURL)}
}

// Models implements ModelLister using GET /models.
func (m *LMStudioModels) Models(ctx context.Context) ([]string, error) {
	page, err := m.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("lm studio models: %w", err)
	}
	names := make([]string, 0, len(page.Data))
	for _, model := range page.Data {
		names = append(names, model.ID)
	}
	return names, nil
}
