package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ledgercore/subledger_app/internal/apperrors"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/ledgercore/subledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ruleSetHandler handles HTTP requests for posting rule sets and GL mappings.
type ruleSetHandler struct {
	ruleSetService portssvc.RuleSetSvcFacade
}

// newRuleSetHandler creates a new ruleSetHandler.
func newRuleSetHandler(rs portssvc.RuleSetSvcFacade) *ruleSetHandler {
	return &ruleSetHandler{
		ruleSetService: rs,
	}
}

// registerRuleSetRoutes registers routes for rule sets and GL mappings,
// nested under a specific organization.
func registerRuleSetRoutes(rg *gin.RouterGroup, ruleSetService portssvc.RuleSetSvcFacade) {
	h := newRuleSetHandler(ruleSetService)

	ruleSets := rg.Group("/rulesets")
	{
		ruleSets.POST("", h.createRuleSet)
		ruleSets.GET("", h.listRuleSets)
		ruleSets.GET("/:ruleset_id", h.getRuleSet)
		ruleSets.PUT("/:ruleset_id", h.updateRuleSet)
		ruleSets.POST("/:ruleset_id/publish", h.publishRuleSet)
		ruleSets.POST("/:ruleset_id/archive", h.archiveRuleSet)
		ruleSets.POST("/:ruleset_id/versions", h.createNewVersion)
	}

	mappings := rg.Group("/gl-mappings")
	{
		mappings.POST("", h.createGLMapping)
		mappings.GET("", h.listGLMappings)
		mappings.GET("/resolve", h.resolveGLMapping)
	}
}

func respondRuleSetError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule set not found"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on rule set "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRuleSetImmutable), errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Conflict on rule set "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Error("Failed to "+action+" rule set", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " rule set"})
	}
}

// createRuleSet godoc
// @Summary Create a posting rule set
// @Description Creates a rule set in DRAFT status at version 1
// @Tags rulesets
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   ruleset body dto.CreateRuleSetRequest true "Rule set details"
// @Success 201 {object} dto.RuleSetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Name and version already exist"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets [post]
func (h *ruleSetHandler) createRuleSet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	var req dto.CreateRuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRuleSet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ruleSet, err := h.ruleSetService.CreateRuleSet(c.Request.Context(), organizationID, req, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "create")
		return
	}

	logger.Info("Rule set created", slog.String("rule_set_id", ruleSet.RuleSetID))
	c.JSON(http.StatusCreated, dto.ToRuleSetResponse(ruleSet))
}

// listRuleSets godoc
// @Summary List posting rule sets
// @Tags rulesets
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Success 200 {array} dto.RuleSetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets [get]
func (h *ruleSetHandler) listRuleSets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ruleSets, err := h.ruleSetService.ListRuleSets(c.Request.Context(), organizationID, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "list")
		return
	}

	c.JSON(http.StatusOK, dto.ToListRuleSetResponse(ruleSets))
}

// getRuleSet godoc
// @Summary Get a posting rule set by ID
// @Description Returns the rule set with its rules ordered by priority
// @Tags rulesets
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   ruleset_id path string true "Rule Set ID"
// @Success 200 {object} dto.RuleSetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rule set not found"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets/{ruleset_id} [get]
func (h *ruleSetHandler) getRuleSet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	ruleSetID := c.Param("ruleset_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ruleSet, err := h.ruleSetService.GetRuleSetByID(c.Request.Context(), organizationID, ruleSetID, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "retrieve")
		return
	}

	c.JSON(http.StatusOK, dto.ToRuleSetResponse(ruleSet))
}

// updateRuleSet godoc
// @Summary Update a draft rule set
// @Description Replaces details and rules of a DRAFT rule set. Published and
// @Description archived rule sets are immutable.
// @Tags rulesets
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   ruleset_id path string true "Rule Set ID"
// @Param   ruleset body dto.UpdateRuleSetRequest true "Fields to update"
// @Success 200 {object} dto.RuleSetResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rule set not found"
// @Failure 409 {object} map[string]string "Rule set is no longer a draft"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets/{ruleset_id} [put]
func (h *ruleSetHandler) updateRuleSet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	ruleSetID := c.Param("ruleset_id")

	var req dto.UpdateRuleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ruleSet, err := h.ruleSetService.UpdateRuleSet(c.Request.Context(), organizationID, ruleSetID, req, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "update")
		return
	}

	logger.Info("Rule set updated", slog.String("rule_set_id", ruleSetID))
	c.JSON(http.StatusOK, dto.ToRuleSetResponse(ruleSet))
}

// publishRuleSet godoc
// @Summary Publish a rule set
// @Description Moves DRAFT -> PUBLISHED, freezing the rule set
// @Tags rulesets
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   ruleset_id path string true "Rule Set ID"
// @Success 200 {object} dto.RuleSetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rule set not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets/{ruleset_id}/publish [post]
func (h *ruleSetHandler) publishRuleSet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	ruleSetID := c.Param("ruleset_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ruleSet, err := h.ruleSetService.PublishRuleSet(c.Request.Context(), organizationID, ruleSetID, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "publish")
		return
	}

	logger.Info("Rule set published", slog.String("rule_set_id", ruleSetID))
	c.JSON(http.StatusOK, dto.ToRuleSetResponse(ruleSet))
}

// archiveRuleSet godoc
// @Summary Archive a rule set
// @Description Moves PUBLISHED -> ARCHIVED
// @Tags rulesets
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   ruleset_id path string true "Rule Set ID"
// @Success 200 {object} dto.RuleSetResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rule set not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets/{ruleset_id}/archive [post]
func (h *ruleSetHandler) archiveRuleSet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	ruleSetID := c.Param("ruleset_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ruleSet, err := h.ruleSetService.ArchiveRuleSet(c.Request.Context(), organizationID, ruleSetID, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "archive")
		return
	}

	logger.Info("Rule set archived", slog.String("rule_set_id", ruleSetID))
	c.JSON(http.StatusOK, dto.ToRuleSetResponse(ruleSet))
}

// createNewVersion godoc
// @Summary Create a new rule set version
// @Description Clones a PUBLISHED rule set into a new DRAFT with the next
// @Description version number
// @Tags rulesets
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   ruleset_id path string true "Rule Set ID"
// @Success 201 {object} dto.RuleSetResponse
// @Failure 400 {object} map[string]string "Source rule set is not published"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Rule set not found"
// @Security BearerAuth
// @Router /organizations/{organization_id}/rulesets/{ruleset_id}/versions [post]
func (h *ruleSetHandler) createNewVersion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	ruleSetID := c.Param("ruleset_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	clone, err := h.ruleSetService.CreateNewVersion(c.Request.Context(), organizationID, ruleSetID, userID)
	if err != nil {
		respondRuleSetError(c, logger, err, "version")
		return
	}

	logger.Info("Rule set version created",
		slog.String("source_rule_set_id", ruleSetID),
		slog.String("rule_set_id", clone.RuleSetID))
	c.JSON(http.StatusCreated, dto.ToRuleSetResponse(clone))
}

// createGLMapping godoc
// @Summary Create a GL mapping
// @Description Maps an external code from a source system to a GL account for
// @Description an effective date window
// @Tags gl-mappings
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   mapping body dto.CreateGLMappingRequest true "Mapping details"
// @Success 201 {object} dto.GLMappingResponse
// @Failure 400 {object} map[string]string "Invalid input or inverted date window"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "GL account not found"
// @Security BearerAuth
// @Router /organizations/{organization_id}/gl-mappings [post]
func (h *ruleSetHandler) createGLMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	var req dto.CreateGLMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mapping, err := h.ruleSetService.CreateGLMapping(c.Request.Context(), organizationID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "GL account not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to create GL mapping", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create GL mapping"})
		}
		return
	}

	logger.Info("GL mapping created", slog.String("mapping_id", mapping.MappingID))
	c.JSON(http.StatusCreated, dto.ToGLMappingResponse(mapping))
}

// listGLMappings godoc
// @Summary List GL mappings for a source system
// @Tags gl-mappings
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   sourceSystem query string true "Source system"
// @Success 200 {array} dto.GLMappingResponse
// @Failure 400 {object} map[string]string "Missing sourceSystem"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /organizations/{organization_id}/gl-mappings [get]
func (h *ruleSetHandler) listGLMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	sourceSystem := c.Query("sourceSystem")
	if sourceSystem == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sourceSystem query parameter is required"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mappings, err := h.ruleSetService.ListGLMappings(c.Request.Context(), organizationID, sourceSystem, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		logger.Error("Failed to list GL mappings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list GL mappings"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGLMappingResponses(mappings))
}

// resolveGLMapping godoc
// @Summary Resolve a GL mapping
// @Description Selects the effective mapping for the source system and
// @Description external code at the given date, highest priority first
// @Tags gl-mappings
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   sourceSystem query string true "Source system"
// @Param   externalCode query string true "External code"
// @Param   date query string true "Resolution date (YYYY-MM-DD)"
// @Success 200 {object} dto.GLMappingResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No mapping found"
// @Security BearerAuth
// @Router /organizations/{organization_id}/gl-mappings/resolve [get]
func (h *ruleSetHandler) resolveGLMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	var params dto.ResolveGLMappingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mapping, err := h.ruleSetService.ResolveGLMapping(c.Request.Context(), organizationID, params.SourceSystem, params.ExternalCode, params.Date, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoMappingFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		default:
			logger.Error("Failed to resolve GL mapping", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve GL mapping"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGLMappingResponse(mapping))
}
