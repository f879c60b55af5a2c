package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ledgercore/subledger_app/internal/apperrors"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/ledgercore/subledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// eventHandler handles HTTP requests for cross-domain accounting events.
type eventHandler struct {
	eventService portssvc.EventSvcFacade
}

// newEventHandler creates a new eventHandler.
func newEventHandler(es portssvc.EventSvcFacade) *eventHandler {
	return &eventHandler{
		eventService: es,
	}
}

// registerEventRoutes registers routes for accounting event ingestion, nested
// under a specific organization.
func registerEventRoutes(rg *gin.RouterGroup, eventService portssvc.EventSvcFacade) {
	h := newEventHandler(eventService)

	events := rg.Group("/events")
	{
		events.POST("", h.submitEvent)
		events.GET("", h.listEvents)
		events.GET("/:event_id", h.getEvent)
	}
}

// submitEvent godoc
// @Summary Submit an accounting event
// @Description Ingests a business event, claims its idempotency key and posts
// @Description the resulting journal in one transaction. A replayed key returns
// @Description 409 with the already processed event.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   event body dto.SubmitEventRequest true "Event details"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} map[string]string "Invalid input or unmappable payload"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} dto.EventResponse "Idempotency key already processed"
// @Failure 500 {object} map[string]string "Failed to submit event"
// @Security BearerAuth
// @Router /organizations/{organization_id}/events [post]
func (h *eventHandler) submitEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	var req dto.SubmitEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("organization_id", organizationID),
		slog.String("source_system", req.SourceSystem),
		slog.String("event_type", req.EventType))

	event, err := h.eventService.SubmitAccountingEvent(c.Request.Context(), organizationID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateEvent):
			// The original outcome wins; surface it so the caller can correlate.
			logger.Info("Duplicate event submission", slog.String("error", err.Error()))
			if event != nil {
				c.JSON(http.StatusConflict, dto.ToEventResponse(event))
			} else {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			}
		case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrNoMappingFound), errors.Is(err, apperrors.ErrUnbalanced):
			logger.Warn("Rejected event submission", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to submit event", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit event"})
		}
		return
	}

	logger.Info("Event ingested",
		slog.String("event_id", event.EventID),
		slog.String("idempotency_key", event.IdempotencyKey))
	c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

// getEvent godoc
// @Summary Get an accounting event by ID
// @Tags events
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   event_id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /organizations/{organization_id}/events/{event_id} [get]
func (h *eventHandler) getEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	eventID := c.Param("event_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	event, err := h.eventService.GetEventByID(c.Request.Context(), organizationID, eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to get event", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get event"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

// listEvents godoc
// @Summary List accounting events
// @Description Retrieves ingested events for the organization, newest first
// @Tags events
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   limit query int false "Maximum number of events (default 20)"
// @Param   offset query int false "Number of events to skip (default 0)"
// @Success 200 {array} dto.EventResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /organizations/{organization_id}/events [get]
func (h *eventHandler) listEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.eventService.ListEvents(c.Request.Context(), organizationID, userID, limit, offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		logger.Error("Failed to list events", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	c.JSON(http.StatusOK, dto.ToEventResponses(events))
}
