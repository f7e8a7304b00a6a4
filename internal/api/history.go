package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cravewise/backend/internal/middleware"
	"github.com/pageza/cravewise/backend/internal/models"
	"github.com/pageza/cravewise/backend/internal/service"
)

// HistoryHandler serves a signed-in user's confirmed cravings.
type HistoryHandler struct {
	history   service.IHistoryService
	validator middleware.TokenValidator
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history service.IHistoryService, validator middleware.TokenValidator) *HistoryHandler {
	return &HistoryHandler{history: history, validator: validator}
}

// RegisterRoutes registers the history routes behind authentication
func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	history := router.Group("/history")
	history.Use(middleware.AuthMiddleware(h.validator))
	{
		history.GET("", h.List)
		history.GET("/similar", h.Similar)
		history.GET("/favorites", h.Favorites)
		history.GET("/stats", h.Stats)
		history.DELETE("/:id", h.Delete)
	}
}

// List handles GET /history
func (h *HistoryHandler) List(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	from, ok := queryTime(c, "from", false)
	if !ok {
		return
	}
	to, ok := queryTime(c, "to", true)
	if !ok {
		return
	}

	records, err := h.history.List(c.Request.Context(), models.HistoryFilter{
		UserID: middleware.UserID(c),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": records})
}

// Similar handles GET /history/similar?craving=
func (h *HistoryHandler) Similar(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	records, err := h.history.Similar(c.Request.Context(), middleware.UserID(c), c.Query("craving"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "records": records})
}

// Favorites handles GET /history/favorites
func (h *HistoryHandler) Favorites(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	favorites, err := h.history.Favorites(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "favorites": favorites})
}

// Stats handles GET /history/stats
func (h *HistoryHandler) Stats(c *gin.Context) {
	limit, ok := queryInt(c, "cuisines")
	if !ok {
		return
	}
	stats, err := h.history.Stats(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// Delete handles DELETE /history/:id
func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.history.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// queryTime reads an optional RFC 3339 timestamp or YYYY-MM-DD date. A bare
// date used as an upper bound covers the whole day.
func queryTime(c *gin.Context, name string, upper bool) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		badRequest(c, name+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return time.Time{}, false
	}
	if upper {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

// queryInt reads an optional non-negative integer query parameter and writes
// a 400 when it is malformed.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
