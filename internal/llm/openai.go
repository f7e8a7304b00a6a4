package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Default OpenAI models for each flow.
const (
	DefaultTextModel   = "gpt-4o-mini"
	DefaultVisionModel = "gpt-4o"
)

// OpenAIProvider calls the OpenAI chat completions API.
type OpenAIProvider struct {
	client      *openai.Client
	textModel   string
	visionModel string
}

// NewOpenAIProvider creates a provider from opts. OpenAIURL overrides the API
// base URL, which is how tests and compatible gateways are targeted.
func NewOpenAIProvider(opts Options) (*OpenAIProvider, error) {
	if opts.OpenAIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY must be set", ErrNotConfigured)
	}
	cfg := openai.DefaultConfig(opts.OpenAIKey)
	if opts.OpenAIURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.OpenAIURL, "/")
	}
	p := &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		textModel:   opts.TextModel,
		visionModel: opts.VisionModel,
	}
	if p.textModel == "" {
		p.textModel = DefaultTextModel
	}
	if p.visionModel == "" {
		p.visionModel = DefaultVisionModel
	}
	return p, nil
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	model := p.textModel
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User}
	if req.HasImage() {
		model = p.visionModel
		user = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.User},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    req.ImageDataURL,
						Detail: openai.ImageURLDetailHigh,
					},
				},
			},
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, user)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
