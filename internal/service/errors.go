package service

import (
	"errors"

	"github.com/pageza/cravewise/backend/internal/recommend"
)

// Input validation errors. These are raised before any network call.
var (
	ErrEmptyCraving  = errors.New("please describe what you are craving")
	ErrMissingImage  = errors.New("no menu image provided")
	ErrImageTooLarge = errors.New("image exceeds the maximum allowed size")
	ErrInvalidImage  = errors.New("invalid menu image")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrUnknownDish   = errors.New("dish is not part of the current recommendations")
)

// ErrCompletionFailed wraps transport and provider failures.
var ErrCompletionFailed = errors.New("failed to analyze your craving")

// Parse and shape errors from the menu flow.
var (
	ErrParseFailure  = recommend.ErrParseFailure
	ErrInvalidFormat = recommend.ErrInvalidFormat
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRequestInFlight = errors.New("request already in progress")
	ErrSessionClosed   = errors.New("session already satisfied")
)
