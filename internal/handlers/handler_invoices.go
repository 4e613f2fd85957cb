package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler handles HTTP requests for invoices.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{
		invoiceService: is,
	}
}

// registerInvoiceRoutes registers all invoice routes.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)

	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.listInvoices)
		invoices.GET("/next-number", h.nextNumber)
		invoices.GET("/stats", h.stats)
		invoices.GET("/periods", h.periods)
		invoices.POST("/preview-totals", h.previewTotals)
		invoices.GET("/:id", h.getInvoice)
		invoices.GET("/:id/pdf", h.invoicePDF)
		invoices.POST("", h.createInvoice)
		invoices.PUT("/:id", h.updateInvoice)
		invoices.POST("/:id/status", h.changeStatus)
		invoices.DELETE("/:id", h.deleteInvoice)
	}
}

// listInvoices godoc
// @Summary List invoices
// @Description Lists invoices, newest number first, with page based pagination.
// @Tags invoices
// @Produce json
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Param status query string false "draft, issued, sent, paid or void"
// @Param clientID query string false "Client ID"
// @Param page query int false "Page" default(1)
// @Param perPage query int false "Page size" default(20)
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// nextNumber godoc
// @Summary Preview the next invoice number
// @Tags invoices
// @Produce json
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} dto.NextNumberResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/next-number [get]
func (h *invoiceHandler) nextNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.NextNumberParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	year := params.Year
	if year == 0 {
		year = time.Now().Year()
	}

	number, err := h.invoiceService.NextInvoiceNumber(c.Request.Context(), year)
	if err != nil {
		respondError(c, logger, err, "Failed to compute next invoice number")
		return
	}
	c.JSON(http.StatusOK, dto.NextNumberResponse{Year: year, Number: number})
}

// stats godoc
// @Summary Invoice statistics
// @Description Totals invoiced, paid and outstanding for a year. Void invoices are left out.
// @Tags invoices
// @Produce json
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} domain.InvoiceStats
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/stats [get]
func (h *invoiceHandler) stats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.InvoiceStatsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	stats, err := h.invoiceService.InvoiceStats(c.Request.Context(), params.Year)
	if err != nil {
		respondError(c, logger, err, "Failed to compute invoice statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// periods godoc
// @Summary Invoice periods
// @Description Lists the year/months having at least one invoice, newest first.
// @Tags invoices
// @Produce json
// @Success 200 {object} dto.PeriodsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/periods [get]
func (h *invoiceHandler) periods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	periods, err := h.invoiceService.AvailablePeriods(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list invoice periods")
		return
	}
	c.JSON(http.StatusOK, dto.PeriodsResponse{Periods: periods})
}

// previewTotals godoc
// @Summary Preview invoice totals
// @Description Computes line totals, subtotal, VAT and total without saving anything.
// @Tags invoices
// @Accept json
// @Produce json
// @Param lines body dto.PreviewTotalsRequest true "Invoice lines"
// @Success 200 {object} dto.InvoiceTotalsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/preview-totals [post]
func (h *invoiceHandler) previewTotals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PreviewTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	totals, err := h.invoiceService.PreviewTotals(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to compute totals")
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// invoicePDF godoc
// @Summary Download an invoice as PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *invoiceHandler) invoicePDF(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var buf bytes.Buffer
	invoice, err := h.invoiceService.RenderInvoicePDF(c.Request.Context(), c.Param("id"), &buf)
	if err != nil {
		respondError(c, logger, err, "Failed to render invoice")
		return
	}

	filename := fmt.Sprintf("fattura_%d_%d.pdf", invoice.Year, invoice.Number)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Creates a draft invoice. The number is the next free one of the invoice year.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} domain.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Client not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create invoice")
		return
	}
	logger.Info("Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("number", invoice.FullNumber()))
	c.JSON(http.StatusCreated, invoice)
}

// updateInvoice godoc
// @Summary Edit an invoice
// @Description Edits the header of an invoice. Lines can only be replaced while the invoice is a draft.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param invoice body dto.UpdateInvoiceRequest true "Changed fields"
// @Success 200 {object} domain.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// changeStatus godoc
// @Summary Change the status of an invoice
// @Description draft → issued → sent → paid, or void from any non-final status. Paying requires a payment date.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param status body dto.ChangeInvoiceStatusRequest true "New status"
// @Success 200 {object} domain.Invoice
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Transition not allowed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/status [post]
func (h *invoiceHandler) changeStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.ChangeInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	invoice, err := h.invoiceService.ChangeInvoiceStatus(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to change invoice status")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// deleteInvoice godoc
// @Summary Delete an invoice
// @Description Deletes an invoice (admin only). Its number is never reused.
// @Tags invoices
// @Param id path string true "Invoice ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *invoiceHandler) deleteInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete invoice")
		return
	}
	c.Status(http.StatusNoContent)
}
