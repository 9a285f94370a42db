package onboarding

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"capitalflow/founder-portal/founder-portal-backend/internal/auth"
	"capitalflow/founder-portal/founder-portal-backend/pkg/marketplace"
)

// Handler handles HTTP requests for the onboarding wizard
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new onboarding handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers onboarding routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	wizard := rg.Group("/onboarding")
	{
		wizard.POST("/session", h.startSession)
		wizard.GET("/session", h.getSession)
		wizard.PUT("/steps/:stepId/fields", h.setFields)
		wizard.POST("/next", h.next)
		wizard.POST("/back", h.back)
		wizard.POST("/goto/:stepId", h.goTo)
		wizard.POST("/documents", h.stageDocument)
		wizard.GET("/documents", h.listDocuments)
		wizard.DELETE("/documents/:id", h.removeDocument)
		wizard.POST("/submit", h.submit)
		wizard.POST("/reset", h.reset)
	}
}

func (h *Handler) startSession(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	progress, err := h.service.StartSession(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, progress)
}

func (h *Handler) getSession(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	progress, err := h.service.Progress(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	draft, err := h.service.Draft(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress, "draft": draft})
}

func (h *Handler) setFields(c *gin.Context) {
	sess, _ := auth.FromContext(c)

	var req struct {
		Fields Fields `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.SetFields(c.Request.Context(), sess.FounderID, StepID(c.Param("stepId")), req.Fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validation": result, "valid": result.Valid()})
}

func (h *Handler) next(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	progress, err := h.service.Next(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) back(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	progress, err := h.service.Back(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) goTo(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	progress, err := h.service.GoTo(c.Request.Context(), sess.FounderID, StepID(c.Param("stepId")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) stageDocument(c *gin.Context) {
	sess, _ := auth.FromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	cand, err := h.service.StageDocument(c.Request.Context(), sess.FounderID,
		file.Filename, file.Header.Get("Content-Type"), file.Size, content)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !cand.Accepted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "upload_rejected", "candidate": cand})
		return
	}
	c.JSON(http.StatusCreated, cand)
}

func (h *Handler) listDocuments(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	files, err := h.service.Documents(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]interface{}, len(files))
	for i, f := range files {
		out[i] = f.Candidate
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) removeDocument(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.RemoveDocument(c.Request.Context(), sess.FounderID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) submit(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	result, err := h.service.Submit(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !result.Submitted {
		// Partial failure: nothing was lost. Retryable as-is unless the
		// backend rejected the data itself.
		status := http.StatusBadGateway
		if apiErr, ok := marketplace.AsAPIError(result.Failure); ok && apiErr.IsValidation() {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": "submission_step_failed", "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) reset(c *gin.Context) {
	sess, _ := auth.FromContext(c)
	progress, err := h.service.Reset(c.Request.Context(), sess.FounderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// fail maps wizard errors to HTTP responses. Validation and lock errors
// stay inside the wizard with enough context to fix the form; they never
// escalate to a global error surface.
func (h *Handler) fail(c *gin.Context, err error) {
	var blocked *ValidationBlockedError
	var locked *StepLockedError
	var incomplete *IncompleteDraftError
	var stale *StaleDocumentsError

	switch {
	case errors.As(err, &blocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation_blocked",
			"step":   blocked.Step,
			"fields": blocked.Fields,
		})
	case errors.As(err, &locked):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "step_locked",
			"step":     locked.Step,
			"blocking": locked.Blocking,
		})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusConflict, gin.H{
			"error": "draft_incomplete",
			"steps": incomplete.Steps,
		})
	case errors.As(err, &stale):
		c.JSON(http.StatusConflict, gin.H{
			"error": "documents_unavailable",
			"refs":  stale.Refs,
		})
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": "already submitted"})
	case errors.Is(err, ErrUnknownStep), errors.Is(err, ErrNoNextStep):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, marketplace.ErrUnreachable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend unreachable, draft preserved"})
	default:
		h.logger.Error("Onboarding request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
