// Package llm wraps the hosted completion APIs behind a single Provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrEmptyCompletion is returned when the provider answers with no text.
	ErrEmptyCompletion = errors.New("completion returned no content")
	// ErrNotConfigured is returned when no API key is available for the provider.
	ErrNotConfigured = errors.New("completion provider not configured")
)

// Request is one completion call. ImageDataURL is optional and switches the
// call to the vision model.
type Request struct {
	System       string
	User         string
	ImageDataURL string
	Temperature  float32
	MaxTokens    int
}

// HasImage reports whether the request carries an image.
func (r Request) HasImage() bool {
	return r.ImageDataURL != ""
}

// Provider returns the raw text of a single completion.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Options selects and configures a Provider.
type Options struct {
	Provider    string
	OpenAIKey   string
	OpenAIURL   string
	TextModel   string
	VisionModel string
	GeminiKey   string
	GeminiModel string
	Timeout     time.Duration
}

// New builds the provider named in opts.Provider ("openai" or "gemini").
func New(ctx context.Context, opts Options, logger *zap.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(opts.Provider) {
	case "", "openai":
		p, err = NewOpenAIProvider(opts)
	case "gemini":
		p, err = NewGeminiProvider(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithLogging(WithTimeout(p, opts.Timeout), logger), nil
}

// Close releases whatever client sits underneath the wrappers of p. Providers
// without resources return nil.
func Close(p Provider) error {
	for p != nil {
		switch v := p.(type) {
		case io.Closer:
			return v.Close()
		case interface{ Unwrap() Provider }:
			p = v.Unwrap()
		default:
			return nil
		}
	}
	return nil
}

type timeoutProvider struct {
	Provider
	timeout time.Duration
}

// WithTimeout bounds every call made through p. A zero timeout returns p as is.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: timeout}
}

func (t *timeoutProvider) Unwrap() Provider { return t.Provider }

func (t *timeoutProvider) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Provider.Complete(ctx, req)
}

type loggingProvider struct {
	Provider
	logger *zap.Logger
}

// WithLogging logs the size and latency of every call made through p.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	if logger == nil {
		return p
	}
	return &loggingProvider{Provider: p, logger: logger.Named("llm")}
}

func (l *loggingProvider) Unwrap() Provider { return l.Provider }

func (l *loggingProvider) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := l.Provider.Complete(ctx, req)
	fields := []zap.Field{
		zap.String("provider", l.Provider.Name()),
		zap.Bool("vision", req.HasImage()),
		zap.Int("prompt_length", len(req.System)+len(req.User)),
		zap.Int("response_length", len(out)),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		l.logger.Error("completion failed", append(fields, zap.Error(err))...)
		return "", err
	}
	l.logger.Info("completion finished", fields...)
	return out, nil
}
