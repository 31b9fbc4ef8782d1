package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/api/dto"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/engine"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/service"
)

type Handler struct {
	engine    *engine.Engine
	triggers  service.TriggerService
	workflows service.WorkflowService
	audit     service.AuditService
}

func New(eng *engine.Engine, triggers service.TriggerService, workflows service.WorkflowService, audit service.AuditService) *Handler {
	return &Handler{
		engine:    eng,
		triggers:  triggers,
		workflows: workflows,
		audit:     audit,
	}
}

// Register mounts all routes under /api/v1.
func (h *Handler) Register(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/appointments/complete", h.CompleteAppointment)

		orgs := api.Group("/orgs/:orgId")
		{
			orgs.GET("/triggers/appointment/:appointmentId", h.GetTriggerByAppointment)
			orgs.GET("/triggers/recent", h.GetRecentTriggers)
			orgs.GET("/triggers/stats", h.GetTriggerStats)

			orgs.POST("/workflows", h.CreateWorkflow)
			orgs.GET("/workflows", h.ListWorkflows)
			orgs.GET("/workflows/:id", h.GetWorkflow)
			orgs.PATCH("/workflows/:id/status", h.UpdateWorkflowStatus)

			orgs.POST("/enrollments/:id/pause", h.PauseEnrollment)
			orgs.POST("/enrollments/:id/resume", h.ResumeEnrollment)
			orgs.POST("/enrollments/:id/cancel", h.CancelEnrollment)
			orgs.POST("/enrollments/:id/advance", h.AdvanceEnrollment)

			orgs.GET("/executions", h.ListExecutions)
		}
	}
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	var req dto.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.ProcessAppointmentCompletion(c.Request.Context(), engine.CompletionEvent{
		OrgID:              req.OrgID,
		AppointmentID:      req.AppointmentID,
		ClientID:           req.ClientID,
		AppointmentTitle:   req.AppointmentTitle,
		AppointmentEndTime: req.AppointmentEndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetTriggerByAppointment(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	view, err := h.triggers.GetTriggerByAppointment(c.Request.Context(), orgID, c.Param("appointmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GetRecentTriggers(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	views, err := h.triggers.GetRecentTriggers(c.Request.Context(), orgID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetTriggerStats(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	stats, err := h.triggers.GetTriggerStats(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) CreateWorkflow(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.workflows.CreateWorkflow(c.Request.Context(), orgID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateWorkflowResponse{ID: id})
}

func (h *Handler) ListWorkflows(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	workflows, err := h.workflows.ListWorkflows(c.Request.Context(), orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflows)
}

func (h *Handler) GetWorkflow(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	workflow, err := h.workflows.GetWorkflow(c.Request.Context(), orgID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, workflow)
}

func (h *Handler) UpdateWorkflowStatus(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.UpdateWorkflowStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.workflows.UpdateWorkflowStatus(c.Request.Context(), orgID, id, domain.WorkflowStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) PauseEnrollment(c *gin.Context) {
	h.enrollmentTransition(c, h.engine.Pause)
}

func (h *Handler) ResumeEnrollment(c *gin.Context) {
	h.enrollmentTransition(c, h.engine.Resume)
}

func (h *Handler) CancelEnrollment(c *gin.Context) {
	h.enrollmentTransition(c, h.engine.Cancel)
}

func (h *Handler) AdvanceEnrollment(c *gin.Context) {
	h.enrollmentTransition(c, h.engine.Advance)
}

func (h *Handler) enrollmentTransition(c *gin.Context, transition func(ctx context.Context, orgID, id uuid.UUID) error) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := transition(c.Request.Context(), orgID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListExecutions(c *gin.Context) {
	orgID, ok := orgParam(c)
	if !ok {
		return
	}

	query := service.AuditQuery{
		Cursor: c.Query("cursor"),
	}
	query.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	for param, target := range map[string]**uuid.UUID{
		"workflowId":   &query.WorkflowID,
		"clientId":     &query.ClientID,
		"enrollmentId": &query.EnrollmentID,
	} {
		if raw := c.Query(param); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
				return
			}
			*target = &id
		}
	}

	page, err := h.audit.ListExecutions(c.Request.Context(), orgID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func orgParam(c *gin.Context) (uuid.UUID, bool) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid org id"})
		return uuid.Nil, false
	}
	return orgID, true
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
