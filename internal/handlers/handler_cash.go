package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// cashHandler serves the cash ledger: business days, movements and the monthly figures.
type cashHandler struct {
	ledger    portssvc.LedgerSvcFacade
	reporting portssvc.ReportingService
}

func newCashHandler(ledger portssvc.LedgerSvcFacade, reporting portssvc.ReportingService) *cashHandler {
	return &cashHandler{
		ledger:    ledger,
		reporting: reporting,
	}
}

// registerCashRoutes registers the cash ledger routes.
func registerCashRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerSvcFacade, reporting portssvc.ReportingService) {
	h := newCashHandler(ledger, reporting)

	cash := rg.Group("/cash")
	{
		days := cash.Group("/days")
		days.GET("", h.listDailyRecords)
		days.GET("/:date", h.getDailyState)
		days.POST("/:date/open", h.openDay)
		days.POST("/:date/close", h.closeDay)
		days.POST("/:date/reopen", h.reopenDay)
		days.POST("/:date/refresh", h.refreshDay)
		days.PUT("/:date/other-income", h.setOtherIncome)

		cash.GET("/movements", h.listMovements)
		cash.POST("/movements", h.recordMovement)
		cash.GET("/sums", h.sum)
		cash.GET("/stats/monthly", h.monthlyStats)
		cash.GET("/reports/monthly", h.monthlyReport)
	}
}

// listDailyRecords godoc
// @Summary List daily cash records
// @Description Returns the stored daily snapshots between from and to, newest first.
// @Tags cash
// @Produce json
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} dto.ListDailyRecordsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days [get]
func (h *cashHandler) listDailyRecords(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDailyRecordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	records, err := h.ledger.ListDailyRecords(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to list daily records")
		return
	}
	if records == nil {
		records = []domain.DailyCashRecord{}
	}
	c.JSON(http.StatusOK, dto.ListDailyRecordsResponse{Records: records})
}

// getDailyState godoc
// @Summary Get the state of a business day
// @Description Computes the figures of a business day. Stored figures of a closed day are returned unchanged.
// @Tags cash
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} dto.DailyStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days/{date} [get]
func (h *cashHandler) getDailyState(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	date := c.Param("date")

	state, err := h.ledger.ComputeDailyState(c.Request.Context(), date)
	if err != nil {
		respondError(c, logger, err, "Failed to compute daily state")
		return
	}
	c.JSON(http.StatusOK, dto.ToDailyStateResponse(state))
}

// openDay godoc
// @Summary Open a business day
// @Description Records the opening float of a day. Without a body the configured default float is used.
// @Tags cash
// @Accept json
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param body body dto.OpenDayRequest false "Opening float"
// @Success 201 {object} dto.DailyStateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Day already opened or closed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days/{date}/open [post]
func (h *cashHandler) openDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.OpenDayRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, logger, err, "request body")
		return
	}

	state, err := h.ledger.OpenDay(c.Request.Context(), c.Param("date"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to open day")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDailyStateResponse(state))
}

// closeDay godoc
// @Summary Close a business day
// @Description Stores the counted float and its discrepancy against the theoretical float. Closing again requires admin.
// @Tags cash
// @Accept json
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param body body dto.CloseDayRequest true "Counted float"
// @Success 200 {object} domain.DailyCashRecord
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days/{date}/close [post]
func (h *cashHandler) closeDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	record, err := h.ledger.CloseDay(c.Request.Context(), c.Param("date"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to close day")
		return
	}
	logger.Info("Day closed", slog.String("date", record.Date))
	c.JSON(http.StatusOK, record)
}

// reopenDay godoc
// @Summary Reopen a business day
// @Description Clears the closure of a day (admin only).
// @Tags cash
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} domain.DailyCashRecord
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days/{date}/reopen [post]
func (h *cashHandler) reopenDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	record, err := h.ledger.ReopenDay(c.Request.Context(), c.Param("date"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reopen day")
		return
	}
	c.JSON(http.StatusOK, record)
}

// refreshDay godoc
// @Summary Refresh a daily record
// @Description Recomputes the figures of a day from its movements and card payments and stores them.
// @Tags cash
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} domain.DailyCashRecord
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days/{date}/refresh [post]
func (h *cashHandler) refreshDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	record, err := h.ledger.RefreshDailyRecord(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, logger, err, "Failed to refresh daily record")
		return
	}
	c.JSON(http.StatusOK, record)
}

// setOtherIncome godoc
// @Summary Set other income
// @Description Stores the non-sale income of a day.
// @Tags cash
// @Accept json
// @Produce json
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param body body dto.SetOtherIncomeRequest true "Amount"
// @Success 200 {object} domain.DailyCashRecord
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/days/{date}/other-income [put]
func (h *cashHandler) setOtherIncome(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.SetOtherIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	record, err := h.ledger.SetOtherIncome(c.Request.Context(), c.Param("date"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to set other income")
		return
	}
	c.JSON(http.StatusOK, record)
}

// listMovements godoc
// @Summary List cash movements
// @Description Returns the movements of a business date in timestamp order.
// @Tags cash
// @Produce json
// @Param date query string true "Business date (YYYY-MM-DD)"
// @Success 200 {array} domain.CashMovement
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/movements [get]
func (h *cashHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	movements, err := h.ledger.ListMovements(c.Request.Context(), date)
	if err != nil {
		respondError(c, logger, err, "Failed to list movements")
		return
	}
	if movements == nil {
		movements = []domain.CashMovement{}
	}
	c.JSON(http.StatusOK, movements)
}

// recordMovement godoc
// @Summary Record a cash movement
// @Description Appends an income or expense to the cash log and refreshes the day's record.
// @Tags cash
// @Accept json
// @Produce json
// @Param movement body dto.RecordMovementRequest true "Movement"
// @Success 201 {object} domain.CashMovement
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Day closed"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/movements [post]
func (h *cashHandler) recordMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var req dto.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request body")
		return
	}

	movement, err := h.ledger.RecordMovement(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to record movement")
		return
	}
	logger.Info("Movement recorded",
		slog.String("movement_id", movement.MovementID),
		slog.String("kind", string(movement.Kind)))
	c.JSON(http.StatusCreated, movement)
}

// sum godoc
// @Summary Sum the movements of a day
// @Description Sums the movements of one kind, or the card payments when kind is "card".
// @Tags cash
// @Produce json
// @Param date query string true "Business date (YYYY-MM-DD)"
// @Param kind query string false "income, expense, opening_float, closing_float or card" default(income)
// @Success 200 {object} dto.MovementSumResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/sums [get]
func (h *cashHandler) sum(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.MovementSumParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}
	kind := string(params.Kind)
	if kind == "" {
		kind = string(domain.MovementIncome)
	}

	var (
		total decimal.Decimal
		err   error
	)
	if kind == "card" {
		total, err = h.ledger.SumCardPayments(c.Request.Context(), params.Date)
	} else {
		total, err = h.ledger.SumByKind(c.Request.Context(), params.Date, domain.MovementKind(kind))
	}
	if err != nil {
		respondError(c, logger, err, "Failed to sum movements")
		return
	}
	c.JSON(http.StatusOK, dto.MovementSumResponse{Date: params.Date, Kind: kind, Total: total})
}

// monthlyStats godoc
// @Summary Monthly cash statistics
// @Description Aggregates the business days of a month. Totals cover closed days only.
// @Tags cash
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} domain.MonthlyReport
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/stats/monthly [get]
func (h *cashHandler) monthlyStats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.MonthlyReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	rep, err := h.reporting.MonthlyReport(c.Request.Context(), params.Year, params.Month)
	if err != nil {
		respondError(c, logger, err, "Failed to build monthly report")
		return
	}
	c.JSON(http.StatusOK, rep)
}

var reportContentTypes = map[portssvc.ReportFormat]string{
	portssvc.ReportPDF:  "application/pdf",
	portssvc.ReportXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// monthlyReport godoc
// @Summary Download the monthly cash report
// @Description Renders the monthly report as PDF or XLSX.
// @Tags cash
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Param format query string false "pdf or xlsx" default(pdf)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /cash/reports/monthly [get]
func (h *cashHandler) monthlyReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.MonthlyReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}
	format := portssvc.ReportFormat(params.Format)
	if format == "" {
		format = portssvc.ReportPDF
	}

	// Rendered into memory first so a failure can still be answered with JSON.
	var buf bytes.Buffer
	if err := h.reporting.RenderMonthlyReport(c.Request.Context(), params.Year, params.Month, format, &buf); err != nil {
		respondError(c, logger, err, "Failed to render monthly report")
		return
	}

	filename := fmt.Sprintf("cassa_%04d_%02d.%s", params.Year, params.Month, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, reportContentTypes[format], buf.Bytes())
}
