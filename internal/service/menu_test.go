package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cravewise/backend/internal/media"
	"github.com/pageza/cravewise/backend/internal/mocks"
	"github.com/pageza/cravewise/backend/internal/types"
)

// 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

const menuJSON = `Sure! {"recommendations": [
	{"name": "Spicy Tuna Roll", "description": "Tuna, chili mayo", "price": "$12", "category": "sushi", "matchScore": 91, "spiceLevel": 2},
	{"name": "Miso Soup", "description": "Tofu and seaweed", "price": "$4", "category": "soup", "matchScore": 140}
], "summary": "Two light picks"}`

func pixelImage() media.Image {
	return media.Image{MIMEType: "image/png", Data: pngPixel}
}

func TestMenuService_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("should send the image and parse the analysis", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{menuJSON}}
		svc := NewMenuService(provider, nil, nil, 0, nil)

		result, err := svc.ScanDataURL(ctx, pixelImage().DataURL(), " something light ")
		require.NoError(t, err)

		require.Len(t, provider.Requests, 1)
		req := provider.Requests[0]
		assert.True(t, req.HasImage())
		assert.True(t, strings.HasPrefix(req.ImageDataURL, "data:image/png;base64,"))
		assert.Contains(t, req.User, "I'm craving: something light")

		recs := result.Analysis.Recommendations
		require.Len(t, recs, 2)
		assert.Equal(t, "Spicy Tuna Roll", recs[0].Name)
		assert.Equal(t, types.KindRestaurant, recs[0].Kind)
		require.NotNil(t, recs[1].MatchScore)
		assert.Equal(t, 100.0, *recs[1].MatchScore)
		assert.Equal(t, "Two light picks", result.Analysis.Summary)
		assert.Empty(t, result.ImageURL)
	})

	t.Run("should reject requests before calling the provider", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{menuJSON}}
		svc := NewMenuService(provider, nil, nil, 16, nil)

		_, err := svc.ScanDataURL(ctx, "", "sushi")
		assert.ErrorIs(t, err, ErrMissingImage)

		_, err = svc.Scan(ctx, media.Image{MIMEType: "image/png", Data: make([]byte, 17)}, "sushi")
		assert.ErrorIs(t, err, ErrImageTooLarge)

		_, err = svc.ScanDataURL(ctx, "data:image/png;base64,"+strings.Repeat("A", 1000), "sushi")
		assert.ErrorIs(t, err, ErrImageTooLarge)

		_, err = NewMenuService(provider, nil, nil, 0, nil).ScanDataURL(ctx, "data:image/png;base64,@@@", "sushi")
		assert.ErrorIs(t, err, ErrInvalidImage)

		_, err = NewMenuService(provider, nil, nil, 0, nil).Scan(ctx, pixelImage(), "   ")
		assert.ErrorIs(t, err, ErrEmptyCraving)

		assert.Equal(t, 0, provider.Calls)
	})

	t.Run("should surface parse failures", func(t *testing.T) {
		provider := &mocks.StaticProvider{Responses: []string{"I could not read the menu, sorry."}}
		svc := NewMenuService(provider, nil, nil, 0, nil)
		_, err := svc.Scan(ctx, pixelImage(), "sushi")
		assert.ErrorIs(t, err, ErrParseFailure)

		provider = &mocks.StaticProvider{Responses: []string{`{"recommendations": "none"}`}}
		svc = NewMenuService(provider, nil, nil, 0, nil)
		_, err = svc.Scan(ctx, pixelImage(), "sushi")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("should wrap provider failures", func(t *testing.T) {
		provider := &mocks.StaticProvider{Err: errors.New("vision model unavailable")}
		svc := NewMenuService(provider, nil, nil, 0, nil)
		_, err := svc.Scan(ctx, pixelImage(), "sushi")
		assert.ErrorIs(t, err, ErrCompletionFailed)
	})

	t.Run("should attach the archived image link", func(t *testing.T) {
		archiver := new(mocks.MockArchiver)
		archiver.On("Archive", mock.Anything, pixelImage()).Return("https://bucket.example.com/menus/abc.png", nil)

		provider := &mocks.StaticProvider{Responses: []string{menuJSON}}
		svc := NewMenuService(provider, nil, archiver, 0, nil)
		result, err := svc.Scan(ctx, pixelImage(), "sushi")
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.example.com/menus/abc.png", result.ImageURL)
		archiver.AssertExpectations(t)
	})

	t.Run("should ignore archive failures", func(t *testing.T) {
		archiver := new(mocks.MockArchiver)
		archiver.On("Archive", mock.Anything, mock.Anything).Return("", errors.New("access denied"))

		provider := &mocks.StaticProvider{Responses: []string{menuJSON}}
		svc := NewMenuService(provider, nil, archiver, 0, nil)
		result, err := svc.Scan(ctx, pixelImage(), "sushi")
		require.NoError(t, err)
		assert.Empty(t, result.ImageURL)
		assert.Len(t, result.Analysis.Recommendations, 2)
	})
}
