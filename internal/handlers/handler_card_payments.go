package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// cardPaymentHandler handles HTTP requests for POS card payments.
type cardPaymentHandler struct {
	cardPaymentService portssvc.CardPaymentSvcFacade
}

func newCardPaymentHandler(cs portssvc.CardPaymentSvcFacade) *cardPaymentHandler {
	return &cardPaymentHandler{
		cardPaymentService: cs,
	}
}

// registerCardPaymentRoutes registers all card payment routes.
func registerCardPaymentRoutes(rg *gin.RouterGroup, cardPaymentService portssvc.CardPaymentSvcFacade) {
	h := newCardPaymentHandler(cardPaymentService)

	payments := rg.Group("/card-payments")
	{
		payments.GET("", h.listCardPayments)
		payments.GET("/dates", h.listDates)
		payments.GET("/total", h.totalForDate)
		payments.GET("/:id", h.getCardPayment)
		payments.POST("", h.createCardPayment)
		payments.PUT("/:id", h.updateCardPayment)
		payments.DELETE("/:id", h.deleteCardPayment)
	}
}

// listCardPayments godoc
// @Summary List card payments
// @Description Lists card payments, newest date first, with keyset pagination through nextToken.
// @Tags card-payments
// @Produce json
// @Param date query string false "Single date (YYYY-MM-DD)"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListCardPaymentsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments [get]
func (h *cardPaymentHandler) listCardPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListCardPaymentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	resp, err := h.cardPaymentService.ListCardPayments(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list card payments")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listDates godoc
// @Summary List card payment dates
// @Description Returns the distinct dates having card payments, newest first.
// @Tags card-payments
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments/dates [get]
func (h *cardPaymentHandler) listDates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	dates, err := h.cardPaymentService.ListCardPaymentDates(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list card payment dates")
		return
	}
	c.JSON(http.StatusOK, dates)
}

// totalForDate godoc
// @Summary Card total of a day
// @Tags card-payments
// @Produce json
// @Param date query string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} dto.CardPaymentTotalResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments/total [get]
func (h *cardPaymentHandler) totalForDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	date := c.Query("date")

	total, err := h.cardPaymentService.TotalForDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, logger, err, "Failed to sum card payments")
		return
	}
	c.JSON(http.StatusOK, dto.CardPaymentTotalResponse{Date: date, Total: total})
}

// getCardPayment godoc
// @Summary Get a card payment
// @Tags card-payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} domain.CardPayment
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments/{id} [get]
func (h *cardPaymentHandler) getCardPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payment, err := h.cardPaymentService.GetCardPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve card payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// createCardPayment godoc
// @Summary Log a card payment
// @Tags card-payments
// @Accept json
// @Produce json
// @Param payment body dto.CreateCardPaymentRequest true "Card payment"
// @Success 201 {object} domain.CardPayment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Day closed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments [post]
func (h *cardPaymentHandler) createCardPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.CreateCardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	payment, err := h.cardPaymentService.CreateCardPayment(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create card payment")
		return
	}
	logger.Info("Card payment created", slog.String("payment_id", payment.PaymentID))
	c.JSON(http.StatusCreated, payment)
}

// updateCardPayment godoc
// @Summary Edit a card payment
// @Tags card-payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payment body dto.UpdateCardPaymentRequest true "Changed fields"
// @Success 200 {object} domain.CardPayment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Day closed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments/{id} [put]
func (h *cardPaymentHandler) updateCardPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateCardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	payment, err := h.cardPaymentService.UpdateCardPayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update card payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// deleteCardPayment godoc
// @Summary Delete a card payment
// @Tags card-payments
// @Param id path string true "Payment ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Day closed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /card-payments/{id} [delete]
func (h *cardPaymentHandler) deleteCardPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.cardPaymentService.DeleteCardPayment(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete card payment")
		return
	}
	c.Status(http.StatusNoContent)
}
