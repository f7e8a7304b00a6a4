package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cravewise/backend/internal/middleware"
	"github.com/pageza/cravewise/backend/internal/service"
)

type errorClass struct {
	target  error
	status  int
	message string
}

// errorClasses maps service errors to responses; the first match wins. An
// empty message means the error text is shown as is.
var errorClasses = []errorClass{
	{service.ErrEmptyCraving, http.StatusBadRequest, ""},
	{service.ErrMissingImage, http.StatusBadRequest, ""},
	{service.ErrInvalidImage, http.StatusBadRequest, ""},
	{service.ErrInvalidRating, http.StatusBadRequest, ""},
	{service.ErrUnknownDish, http.StatusBadRequest, ""},
	{service.ErrUserRequired, http.StatusUnauthorized, ""},
	{service.ErrInvalidRange, http.StatusBadRequest, ""},
	{service.ErrRecordNotFound, http.StatusNotFound, ""},
	{service.ErrImageTooLarge, http.StatusRequestEntityTooLarge, ""},
	{service.ErrCompletionFailed, http.StatusBadGateway, "Failed to analyze your craving. Please try again."},
	{service.ErrParseFailure, http.StatusUnprocessableEntity, "Failed to parse menu analysis. Please try again."},
	{service.ErrInvalidFormat, http.StatusUnprocessableEntity, "Invalid analysis format received"},
	{service.ErrSessionNotFound, http.StatusNotFound, ""},
	{service.ErrRequestInFlight, http.StatusConflict, ""},
	{service.ErrSessionClosed, http.StatusConflict, ""},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "The request timed out. Please try again."},
}

// classify returns the status and client message for err.
func classify(err error) (int, string) {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			if class.message == "" {
				return class.status, class.target.Error()
			}
			return class.status, class.message
		}
	}
	return http.StatusInternalServerError, "An unexpected error occurred. Please try again."
}

// respondError writes the error envelope for err and records it on the
// context for the request logger.
func respondError(c *gin.Context, err error) {
	status, message := classify(err)
	_ = c.Error(err)
	c.JSON(status, middleware.ErrorResponse{Success: false, Error: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Success: false, Error: message})
}
