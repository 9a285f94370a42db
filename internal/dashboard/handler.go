package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Handler handles HTTP requests for the founder dashboard
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers dashboard routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	dash := rg.Group("/dashboard")
	{
		dash.GET("/score", h.getScore)
		dash.GET("/files", h.listFiles)
		dash.GET("/notifications", h.listNotifications)
	}
}

func (h *Handler) getScore(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	score, err := h.service.Score(c.Request.Context(), sess)
	if err != nil {
		if apiErr, ok := marketplace.AsAPIError(err); ok && apiErr.Status == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "score not available until onboarding is complete"})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func (h *Handler) listFiles(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	files, err := h.service.Files(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *Handler) listNotifications(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	notes, err := h.service.Notifications(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, marketplace.ErrUnreachable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend unreachable"})
		return
	}
	if apiErr, ok := marketplace.AsAPIError(err); ok && apiErr.IsAuth() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	h.logger.Error("Dashboard request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
