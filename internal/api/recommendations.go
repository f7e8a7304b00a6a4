package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/cravewise/backend/internal/media"
	"github.com/pageza/cravewise/backend/internal/middleware"
	"github.com/pageza/cravewise/backend/internal/service"
)

// multipartOverhead is the slack allowed on top of the image limit for form
// fields and boundaries.
const multipartOverhead = 64 << 10

// RecommendationHandler serves craving analysis, menu scans and the
// regeneration loop.
type RecommendationHandler struct {
	cravings *service.CravingService
	menus    *service.MenuService
	logger   *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(cravings *service.CravingService, menus *service.MenuService, logger *zap.Logger) *RecommendationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationHandler{
		cravings: cravings,
		menus:    menus,
		logger:   logger.Named("api"),
	}
}

// RegisterRoutes registers the analysis routes. limited wraps the endpoints
// that spend a completion.
func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup, limited ...gin.HandlerFunc) {
	withLimit := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), handler)
	}

	router.POST("/analyze-craving", withLimit(h.AnalyzeCraving)...)
	router.POST("/analyze-menu", withLimit(h.AnalyzeMenu)...)
	router.POST("/analyze-menu/upload", withLimit(h.UploadMenu)...)

	sessions := router.Group("/sessions")
	{
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/regenerate", withLimit(h.Regenerate)...)
		sessions.POST("/:id/confirm", h.Confirm)
	}
}

// AnalyzeCraving handles POST /analyze-craving
func (h *RecommendationHandler) AnalyzeCraving(c *gin.Context) {
	var req AnalyzeCravingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.cravings.Analyze(c.Request.Context(), middleware.UserID(c), req.ToRecommendationRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AnalyzeCravingResponse{
		Success:         true,
		Analysis:        result.Analysis,
		Recommendations: result.Recommendations,
		SessionID:       result.SessionID,
	})
}

// AnalyzeMenu handles POST /analyze-menu with a base64 data URL body
func (h *RecommendationHandler) AnalyzeMenu(c *gin.Context) {
	// base64 inflates by 4/3
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.menus.MaxBytes()*4/3+multipartOverhead)

	var req AnalyzeMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, service.ErrImageTooLarge)
			return
		}
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.menus.ScanDataURL(c.Request.Context(), req.ImageBase64, req.Cravings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AnalyzeMenuResponse{Success: true, Analysis: result.Analysis, ImageURL: result.ImageURL})
}

// UploadMenu handles POST /analyze-menu/upload with a multipart image
func (h *RecommendationHandler) UploadMenu(c *gin.Context) {
	maxBytes := h.menus.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(c, service.ErrImageTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			respondError(c, service.ErrMissingImage)
		default:
			badRequest(c, "invalid multipart form")
		}
		return
	}
	if header.Size > maxBytes {
		respondError(c, service.ErrImageTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respondError(c, err)
		return
	}
	if int64(len(data)) > maxBytes {
		respondError(c, service.ErrImageTooLarge)
		return
	}

	img, err := media.FromBytes(data, header.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Debug("rejected menu upload", zap.String("filename", header.Filename), zap.Error(err))
		respondError(c, errors.Join(service.ErrInvalidImage, err))
		return
	}

	result, err := h.menus.Scan(c.Request.Context(), img, strings.TrimSpace(c.PostForm("cravings")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AnalyzeMenuResponse{Success: true, Analysis: result.Analysis, ImageURL: result.ImageURL})
}

// GetSession handles GET /sessions/:id
func (h *RecommendationHandler) GetSession(c *gin.Context) {
	sess, err := h.cravings.GetSession(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Success: true, Session: sess})
}

// Regenerate handles POST /sessions/:id/regenerate
func (h *RecommendationHandler) Regenerate(c *gin.Context) {
	result, err := h.cravings.Regenerate(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AnalyzeCravingResponse{
		Success:         true,
		Analysis:        result.Analysis,
		Recommendations: result.Recommendations,
		SessionID:       result.SessionID,
	})
}

// Confirm handles POST /sessions/:id/confirm
func (h *RecommendationHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dishName is required")
		return
	}

	record, err := h.cravings.Confirm(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.DishName, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ConfirmResponse{Success: true, Record: record})
}
