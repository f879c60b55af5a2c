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

// refundHandler handles HTTP requests for the refund payment workflow and
// the accounts-receivable read side.
type refundHandler struct {
	refundService portssvc.RefundSvcFacade
}

// newRefundHandler creates a new refundHandler.
func newRefundHandler(rs portssvc.RefundSvcFacade) *refundHandler {
	return &refundHandler{
		refundService: rs,
	}
}

// registerRefundRoutes registers routes for refunds and AR transactions,
// nested under a specific organization.
func registerRefundRoutes(rg *gin.RouterGroup, refundService portssvc.RefundSvcFacade) {
	h := newRefundHandler(refundService)

	refunds := rg.Group("/refunds")
	{
		refunds.POST("", h.initiateRefund)
		refunds.GET("", h.findRefunds)
		refunds.GET("/summary", h.getRefundSummary)
		refunds.GET("/:refund_id", h.getRefund)
		refunds.POST("/:refund_id/approve", h.approveRefund)
		refunds.POST("/:refund_id/process", h.processRefund)
		refunds.POST("/:refund_id/complete", h.completeRefund)
		refunds.POST("/:refund_id/fail", h.failRefund)
		refunds.POST("/:refund_id/cancel", h.cancelRefund)
	}

	arTransactions := rg.Group("/ar-transactions")
	{
		arTransactions.POST("", h.recordArTransaction)
		arTransactions.GET("", h.listArTransactions)
	}
}

// respondRefundError translates workflow errors into HTTP responses. The
// transition table violations and guarded-update misses both map to 409.
func respondRefundError(c *gin.Context, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Refund payment not found"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on refund "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Illegal refund transition on "+action, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.Error("Failed to "+action+" refund", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + " refund"})
	}
}

// initiateRefund godoc
// @Summary Initiate a refund payment
// @Description Creates a refund payment in INITIATED status
// @Tags refunds
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund body dto.InitiateRefundRequest true "Refund details"
// @Success 201 {object} dto.RefundPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input or non-positive amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to initiate refund"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds [post]
func (h *refundHandler) initiateRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	var req dto.InitiateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitiateRefund", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("organization_id", organizationID), slog.String("customer_id", req.CustomerID))

	refund, err := h.refundService.InitiateRefundPayment(c.Request.Context(), organizationID, req, userID)
	if err != nil {
		respondRefundError(c, logger, err, "initiate")
		return
	}

	logger.Info("Refund initiated", slog.String("refund_payment_id", refund.RefundPaymentID))
	c.JSON(http.StatusCreated, dto.ToRefundPaymentResponse(refund))
}

// getRefund godoc
// @Summary Get a refund payment by ID
// @Tags refunds
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund_id path string true "Refund Payment ID"
// @Success 200 {object} dto.RefundPaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Refund not found"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/{refund_id} [get]
func (h *refundHandler) getRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	refundID := c.Param("refund_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	refund, err := h.refundService.GetRefundPaymentByID(c.Request.Context(), organizationID, refundID, userID)
	if err != nil {
		respondRefundError(c, logger, err, "retrieve")
		return
	}

	c.JSON(http.StatusOK, dto.ToRefundPaymentResponse(refund))
}

// findRefunds godoc
// @Summary List refund payments
// @Description Retrieves refunds matching the ANDed filters, newest first
// @Tags refunds
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   customerID query string false "Filter by customer"
// @Param   status query string false "Filter by workflow status"
// @Success 200 {array} dto.RefundPaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list refunds"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds [get]
func (h *refundHandler) findRefunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.FindRefundPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	refunds, err := h.refundService.FindRefundPayments(c.Request.Context(), organizationID, params, userID)
	if err != nil {
		respondRefundError(c, logger, err, "list")
		return
	}

	c.JSON(http.StatusOK, dto.ToRefundPaymentResponses(refunds))
}

// getRefundSummary godoc
// @Summary Summarize refund payments
// @Description Aggregates count, total, average and per-status counts,
// @Description optionally narrowed to one customer
// @Tags refunds
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   customerID query string false "Narrow to one customer"
// @Success 200 {object} dto.RefundSummaryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to summarize refunds"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/summary [get]
func (h *refundHandler) getRefundSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var customerID *string
	if v := c.Query("customerID"); v != "" {
		customerID = &v
	}

	summary, err := h.refundService.GetRefundSummary(c.Request.Context(), organizationID, customerID, userID)
	if err != nil {
		respondRefundError(c, logger, err, "summarize")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// approveRefund godoc
// @Summary Approve a refund payment
// @Description Moves INITIATED -> APPROVED, stamping approver and approval date
// @Tags refunds
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund_id path string true "Refund Payment ID"
// @Success 200 {object} dto.RefundPaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Refund not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/{refund_id}/approve [post]
func (h *refundHandler) approveRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	refundID := c.Param("refund_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("refund_payment_id", refundID))

	refund, err := h.refundService.ApproveRefundPayment(c.Request.Context(), organizationID, refundID, userID)
	if err != nil {
		respondRefundError(c, logger, err, "approve")
		return
	}

	logger.Info("Refund approved")
	c.JSON(http.StatusOK, dto.ToRefundPaymentResponse(refund))
}

// processRefund godoc
// @Summary Start processing a refund payment
// @Description Moves APPROVED -> PROCESSING, stamping the payment reference
// @Tags refunds
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund_id path string true "Refund Payment ID"
// @Param   process body dto.ProcessRefundRequest true "Payment reference"
// @Success 200 {object} dto.RefundPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Refund not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/{refund_id}/process [post]
func (h *refundHandler) processRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	refundID := c.Param("refund_id")

	var req dto.ProcessRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("refund_payment_id", refundID))

	refund, err := h.refundService.ProcessRefundPayment(c.Request.Context(), organizationID, refundID, req.ReferenceNumber, userID)
	if err != nil {
		respondRefundError(c, logger, err, "process")
		return
	}

	logger.Info("Refund processing started", slog.String("reference_number", req.ReferenceNumber))
	c.JSON(http.StatusOK, dto.ToRefundPaymentResponse(refund))
}

// completeRefund godoc
// @Summary Complete a refund payment
// @Description Moves PROCESSING -> COMPLETED and atomically posts the
// @Description correlated REFUND AR transaction
// @Tags refunds
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund_id path string true "Refund Payment ID"
// @Success 200 {object} dto.RefundPaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Refund not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/{refund_id}/complete [post]
func (h *refundHandler) completeRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	refundID := c.Param("refund_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("refund_payment_id", refundID))

	refund, err := h.refundService.CompleteRefundPayment(c.Request.Context(), organizationID, refundID, userID)
	if err != nil {
		respondRefundError(c, logger, err, "complete")
		return
	}

	logger.Info("Refund completed")
	c.JSON(http.StatusOK, dto.ToRefundPaymentResponse(refund))
}

// failRefund godoc
// @Summary Fail a refund payment
// @Description Moves PROCESSING -> FAILED, stamping the failure reason
// @Tags refunds
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund_id path string true "Refund Payment ID"
// @Param   failure body dto.FailRefundRequest true "Failure reason"
// @Success 200 {object} dto.RefundPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Refund not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/{refund_id}/fail [post]
func (h *refundHandler) failRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	refundID := c.Param("refund_id")

	var req dto.FailRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("refund_payment_id", refundID))

	refund, err := h.refundService.FailRefundPayment(c.Request.Context(), organizationID, refundID, req.FailureReason, userID)
	if err != nil {
		respondRefundError(c, logger, err, "fail")
		return
	}

	logger.Info("Refund marked as failed", slog.String("failure_reason", req.FailureReason))
	c.JSON(http.StatusOK, dto.ToRefundPaymentResponse(refund))
}

// cancelRefund godoc
// @Summary Cancel a refund payment
// @Description Moves INITIATED or APPROVED -> CANCELLED with a reason
// @Tags refunds
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   refund_id path string true "Refund Payment ID"
// @Param   cancellation body dto.CancelRefundRequest true "Cancellation reason"
// @Success 200 {object} dto.RefundPaymentResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Refund not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Security BearerAuth
// @Router /organizations/{organization_id}/refunds/{refund_id}/cancel [post]
func (h *refundHandler) cancelRefund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")
	refundID := c.Param("refund_id")

	var req dto.CancelRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("refund_payment_id", refundID))

	refund, err := h.refundService.CancelRefundPayment(c.Request.Context(), organizationID, refundID, req.CancellationReason, userID)
	if err != nil {
		respondRefundError(c, logger, err, "cancel")
		return
	}

	logger.Info("Refund cancelled")
	c.JSON(http.StatusOK, dto.ToRefundPaymentResponse(refund))
}

// recordArTransaction godoc
// @Summary Record an AR transaction
// @Description Posts an INVOICE or PAYMENT accounts-receivable row directly.
// @Description REFUND rows are written only by the refund completion workflow.
// @Tags ar-transactions
// @Accept  json
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   transaction body dto.RecordArTransactionRequest true "AR transaction details"
// @Success 201 {object} dto.ArTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input, zero amount, or REFUND type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to record AR transaction"
// @Security BearerAuth
// @Router /organizations/{organization_id}/ar-transactions [post]
func (h *refundHandler) recordArTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	var req dto.RecordArTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	arTxn, err := h.refundService.RecordArTransaction(c.Request.Context(), organizationID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error recording AR transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		} else {
			logger.Error("Failed to record AR transaction", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record AR transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToArTransactionResponse(arTxn))
}

// listArTransactions godoc
// @Summary List AR transactions for a customer
// @Tags ar-transactions
// @Produce  json
// @Param   organization_id path string true "Organization ID"
// @Param   customerID query string true "Customer ID"
// @Success 200 {array} dto.ArTransactionResponse
// @Failure 400 {object} map[string]string "Missing customerID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list AR transactions"
// @Security BearerAuth
// @Router /organizations/{organization_id}/ar-transactions [get]
func (h *refundHandler) listArTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organization_id")

	customerID := c.Query("customerID")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerID query parameter is required"})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	arTxns, err := h.refundService.ListArTransactions(c.Request.Context(), organizationID, customerID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		logger.Error("Failed to list AR transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list AR transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToArTransactionResponses(arTxns))
}
