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

// APITokenHandler handles API token management endpoints.
type APITokenHandler struct {
	tokenService portssvc.APITokenSvc
}

// NewAPITokenHandler creates a new APITokenHandler.
func NewAPITokenHandler(ts portssvc.APITokenSvc) *APITokenHandler {
	return &APITokenHandler{
		tokenService: ts,
	}
}

// RegisterAPITokenRoutes registers API token routes on the authenticated group.
func RegisterAPITokenRoutes(rg *gin.RouterGroup, tokenService portssvc.APITokenSvc) {
	h := NewAPITokenHandler(tokenService)

	tokens := rg.Group("/tokens")
	{
		tokens.POST("", h.createToken)
		tokens.GET("", h.listTokens)
		tokens.DELETE("/:token_id", h.revokeToken)
	}
}

// createToken godoc
// @Summary Create an API token
// @Description Creates a machine token for the caller. The plaintext token is
// @Description only returned once.
// @Tags api-tokens
// @Accept  json
// @Produce  json
// @Param   token body dto.CreateAPITokenRequest true "Token details"
// @Success 201 {object} dto.CreateAPITokenResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /tokens [post]
func (h *APITokenHandler) createToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAPITokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokenStr, token, err := h.tokenService.CreateToken(c.Request.Context(), userID, req.Name, req.ExpiresIn)
	if err != nil {
		logger.Error("Failed to create API token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create API token"})
		return
	}

	logger.Info("API token created", slog.String("token_id", token.ID))
	c.JSON(http.StatusCreated, dto.ToCreateAPITokenResponse(tokenStr, *token))
}

// listTokens godoc
// @Summary List the caller's API tokens
// @Tags api-tokens
// @Produce  json
// @Success 200 {object} dto.ListAPITokensResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /tokens [get]
func (h *APITokenHandler) listTokens(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokens, err := h.tokenService.ListTokens(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list API tokens", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list API tokens"})
		return
	}

	c.JSON(http.StatusOK, dto.ToAPITokenResponseList(tokens))
}

// revokeToken godoc
// @Summary Revoke an API token
// @Tags api-tokens
// @Produce  json
// @Param   token_id path string true "Token ID"
// @Success 204 "Token revoked"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Token not found"
// @Security BearerAuth
// @Router /tokens/{token_id} [delete]
func (h *APITokenHandler) revokeToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tokenID := c.Param("token_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.tokenService.RevokeToken(c.Request.Context(), userID, tokenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
			return
		}
		logger.Error("Failed to revoke API token",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke API token"})
		return
	}

	c.Status(http.StatusNoContent)
}
