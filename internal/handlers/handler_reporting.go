package handlers

import (
	"net/http"

	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves the dashboard and the static reference tables.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers the dashboard and reference data routes
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	rg.GET("/dashboard", h.getDashboard)
	rg.GET("/reference", h.getReferenceData)
}

// getDashboard godoc
// @Summary Dashboard
// @Description Today's cash and card figures, the invoices of the month and the latest activity.
// @Tags reports
// @Produce json
// @Param date query string false "Business date (YYYY-MM-DD)" default(today)
// @Success 200 {object} domain.DashboardStats
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to build dashboard"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *reportingHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.DashboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	stats, err := h.reportingService.Dashboard(c.Request.Context(), params.Date)
	if err != nil {
		respondError(c, logger, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// getReferenceData godoc
// @Summary Reference data
// @Description VAT codes, fiscal regimes, document types, payment methods and categories.
// @Tags reports
// @Produce json
// @Success 200 {object} dto.ReferenceDataResponse
// @Security BearerAuth
// @Router /reference [get]
func (h *reportingHandler) getReferenceData(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewReferenceDataResponse())
}
