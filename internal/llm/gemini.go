package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pageza/cravewise/backend/internal/media"
)

// DefaultGeminiModel handles both text and image prompts.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider calls Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider initializes a Gemini client from opts.
func NewGeminiProvider(ctx context.Context, opts Options) (*GeminiProvider, error) {
	if opts.GeminiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY must be set", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.GeminiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := opts.GeminiModel
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Complete implements Provider. Each call gets its own model handle.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	model := p.client.GenerativeModel(p.model)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	parts := []genai.Part{genai.Text(req.User)}
	if req.HasImage() {
		img, err := media.ParseDataURL(req.ImageDataURL)
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.ImageData(img.Format(), img.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
