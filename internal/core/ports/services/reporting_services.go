package services

import (
	"context"
	"io"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
)

// ReportFormat selects the rendering of an exported report.
type ReportFormat string

const (
	ReportPDF  ReportFormat = "pdf"
	ReportXLSX ReportFormat = "xlsx"
)

// ReportingService defines operations for reports and the dashboard
type ReportingService interface {
	// MonthlyReport aggregates the business days of a month.
	MonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error)

	// RenderMonthlyReport writes the monthly report to w in format.
	RenderMonthlyReport(ctx context.Context, year, month int, format ReportFormat, w io.Writer) error

	// Dashboard summarises the state of date and the recent activity.
	Dashboard(ctx context.Context, date string) (*domain.DashboardStats, error)
}
