package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/internal/llm"
	"github.com/pageza/cravewise/backend/internal/media"
	"github.com/pageza/cravewise/backend/internal/recommend"
	"github.com/pageza/cravewise/backend/internal/types"
)

// DefaultMaxImageBytes matches the upload limit of the client.
const DefaultMaxImageBytes = 10 << 20

// MenuResult is a validated menu analysis.
type MenuResult struct {
	Analysis types.RecommendationSet `json:"analysis"`
	ImageURL string                  `json:"imageUrl,omitempty"`
}

// MenuService recommends dishes from a photographed menu. Scans are one-shot
// and do not open a session.
type MenuService struct {
	provider llm.Provider
	parser   *recommend.MenuParser
	archiver ImageArchiver
	maxBytes int64
	logger   *zap.Logger
}

// NewMenuService creates a new MenuService. archiver may be nil.
func NewMenuService(provider llm.Provider, parser *recommend.MenuParser, archiver ImageArchiver, maxBytes int64, logger *zap.Logger) *MenuService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = recommend.NewMenuParser(nil, logger)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &MenuService{
		provider: provider,
		parser:   parser,
		archiver: archiver,
		maxBytes: maxBytes,
		logger:   logger.Named("menu"),
	}
}

// MaxBytes is the largest accepted image.
func (s *MenuService) MaxBytes() int64 { return s.maxBytes }

// ScanDataURL decodes a base64 data URL and scans it.
func (s *MenuService) ScanDataURL(ctx context.Context, dataURL, cravings string) (*MenuResult, error) {
	dataURL = strings.TrimSpace(dataURL)
	if dataURL == "" {
		return nil, ErrMissingImage
	}
	// Reject before decoding: base64 inflates by 4/3.
	if int64(len(dataURL))*3/4 > s.maxBytes+512 {
		return nil, ErrImageTooLarge
	}
	img, err := media.ParseDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return s.Scan(ctx, img, cravings)
}

// Scan asks the vision model for dishes on the menu that match cravings.
func (s *MenuService) Scan(ctx context.Context, img media.Image, cravings string) (*MenuResult, error) {
	if len(img.Data) == 0 {
		return nil, ErrMissingImage
	}
	if int64(len(img.Data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	cravings = strings.TrimSpace(cravings)
	if cravings == "" {
		return nil, ErrEmptyCraving
	}

	s.logger.Info("analyzing menu", zap.String("cravings", cravings), zap.Int("image_bytes", len(img.Data)))
	raw, err := s.provider.Complete(ctx, llm.Request{
		System:       llm.MenuSystemPrompt,
		User:         llm.MenuPrompt(cravings),
		ImageDataURL: img.DataURL(),
		Temperature:  llm.MenuTemperature,
		MaxTokens:    llm.MenuMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	set, err := s.parser.Parse(raw)
	if err != nil {
		s.logger.Error("failed to parse menu analysis", zap.Error(err), zap.Int("response_length", len(raw)))
		return nil, err
	}

	result := &MenuResult{Analysis: set}
	if s.archiver != nil {
		url, err := s.archiver.Archive(ctx, img)
		if err == nil {
			result.ImageURL = url
		} else if !errors.Is(err, context.Canceled) {
			s.logger.Warn("failed to archive menu image", zap.Error(err))
		}
	}
	return result, nil
}
