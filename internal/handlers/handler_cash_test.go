package handlers_test

import (
	"io"
	"net/http"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestOpenDay_EmptyBodyUsesDefaults() {
	state := &domain.DailyState{
		DailyCashRecord: domain.DailyCashRecord{
			Date:             "2026-03-02",
			OpeningFloat:     decimal.NewFromInt(200),
			TheoreticalFloat: decimal.NewFromInt(200),
		},
		Opened: true,
	}
	suite.ledger.On("OpenDay", mock.Anything, "2026-03-02", dto.OpenDayRequest{}, testUserID).Return(state, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/cash/days/2026-03-02/open", nil)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.DailyStateResponse
	suite.decode(w, &resp)
	suite.True(resp.Opened)
	suite.True(resp.OpeningFloat.Equal(decimal.NewFromInt(200)))
	suite.NotNil(resp.Movements)
}

func (suite *HandlerTestSuite) TestOpenDay_AlreadyOpenIsConflict() {
	suite.ledger.On("OpenDay", mock.Anything, "2026-03-02", mock.Anything, testUserID).
		Return(nil, apperrors.ErrAlreadyOpen).Once()

	w := suite.do(http.MethodPost, "/api/v1/cash/days/2026-03-02/open", `{"openingFloat": 150}`)

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(suite.errorMessage(w), "already opened")
}

func (suite *HandlerTestSuite) TestOpenDay_NegativeFloatRejected() {
	w := suite.do(http.MethodPost, "/api/v1/cash/days/2026-03-02/open", `{"openingFloat": -10}`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.ledger.AssertNotCalled(suite.T(), "OpenDay", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestRecordMovement_Success() {
	movement := &domain.CashMovement{
		MovementID:  "mov-1",
		Date:        "2026-03-02",
		Kind:        domain.MovementExpense,
		Amount:      decimal.RequireFromString("42.50"),
		Description: "Acquisto polli",
		Operator:    "mario",
	}
	suite.ledger.On("RecordMovement", mock.Anything, mock.MatchedBy(func(req dto.RecordMovementRequest) bool {
		return req.Kind == domain.MovementExpense &&
			req.Amount.Equal(decimal.RequireFromString("42.50")) &&
			req.Timestamp != nil && *req.Timestamp == "2026-03-02 10:15:00"
	}), testUserID).Return(movement, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/cash/movements", map[string]any{
		"kind":        "expense",
		"amount":      "42.50",
		"description": "Acquisto polli",
		"category":    "Acquisto polli",
		"timestamp":   "2026-03-02 10:15:00",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp domain.CashMovement
	suite.decode(w, &resp)
	suite.Equal("mov-1", resp.MovementID)
}

func (suite *HandlerTestSuite) TestRecordMovement_RejectsSystemKinds() {
	w := suite.do(http.MethodPost, "/api/v1/cash/movements", map[string]any{
		"kind":        "opening_float",
		"amount":      100,
		"description": "Fondo",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(suite.errorMessage(w), "Invalid request body")
}

func (suite *HandlerTestSuite) TestRecordMovement_DayClosed() {
	suite.ledger.On("RecordMovement", mock.Anything, mock.Anything, testUserID).
		Return(nil, apperrors.ErrDayClosed).Once()

	w := suite.do(http.MethodPost, "/api/v1/cash/movements", map[string]any{
		"kind":        "income",
		"amount":      10,
		"description": "Vendita",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestRecordMovement_RequiresToken() {
	w := suite.doAnonymous(http.MethodPost, "/api/v1/cash/movements", map[string]any{
		"kind": "income", "amount": 10, "description": "Vendita",
	})

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestCloseDay_ReturnsRecord() {
	actual := decimal.NewFromInt(480)
	discrepancy := decimal.NewFromInt(-20)
	record := &domain.DailyCashRecord{
		Date:             "2026-03-02",
		TheoreticalFloat: decimal.NewFromInt(500),
		ActualFloat:      &actual,
		Discrepancy:      &discrepancy,
		Closed:           true,
	}
	suite.ledger.On("CloseDay", mock.Anything, "2026-03-02", mock.MatchedBy(func(req dto.CloseDayRequest) bool {
		return req.ActualFloat.Equal(actual) && req.Note == "manca un resto"
	}), testUserID).Return(record, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/cash/days/2026-03-02/close", map[string]any{
		"actualFloat": 480,
		"note":        "manca un resto",
	})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp domain.DailyCashRecord
	suite.decode(w, &resp)
	suite.True(resp.Closed)
	suite.Require().NotNil(resp.Discrepancy)
	suite.True(resp.Discrepancy.Equal(discrepancy))
}

func (suite *HandlerTestSuite) TestReopenDay_ForbiddenForOperators() {
	suite.ledger.On("ReopenDay", mock.Anything, "2026-03-02", testUserID).
		Return(nil, apperrors.ErrForbidden).Once()

	w := suite.do(http.MethodPost, "/api/v1/cash/days/2026-03-02/reopen", nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestGetDailyState_NotFound() {
	suite.ledger.On("ComputeDailyState", mock.Anything, "2026-03-03").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/days/2026-03-03", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListDailyRecords_NilBecomesEmpty() {
	suite.ledger.On("ListDailyRecords", mock.Anything, "2026-03-01", "2026-03-31").Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/days?from=2026-03-01&to=2026-03-31", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"records":[]}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestListDailyRecords_BadDate() {
	w := suite.do(http.MethodGet, "/api/v1/cash/days?from=01/03/2026", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListMovements_DateRequired() {
	w := suite.do(http.MethodGet, "/api/v1/cash/movements", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestSum_DefaultsToIncome() {
	suite.ledger.On("SumByKind", mock.Anything, "2026-03-02", domain.MovementIncome).
		Return(decimal.RequireFromString("310.40"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/sums?date=2026-03-02", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.MovementSumResponse
	suite.decode(w, &resp)
	suite.Equal("income", resp.Kind)
	suite.True(resp.Total.Equal(decimal.RequireFromString("310.40")))
}

func (suite *HandlerTestSuite) TestSum_CardUsesCardPayments() {
	suite.ledger.On("SumCardPayments", mock.Anything, "2026-03-02").
		Return(decimal.NewFromInt(95), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/sums?date=2026-03-02&kind=card", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.ledger.AssertNotCalled(suite.T(), "SumByKind", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestSum_UnknownKind() {
	w := suite.do(http.MethodGet, "/api/v1/cash/sums?date=2026-03-02&kind=refund", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestMonthlyReport_XLSXDownload() {
	suite.reporting.On("RenderMonthlyReport", mock.Anything, 2026, 3, portssvc.ReportXLSX, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(4).(io.Writer), "xlsx-bytes")
		}).Return(nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/reports/monthly?year=2026&month=3&format=xlsx", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(`attachment; filename="cassa_2026_03.xlsx"`, w.Header().Get("Content-Disposition"))
	suite.Contains(w.Header().Get("Content-Type"), "spreadsheetml")
	suite.Equal("xlsx-bytes", w.Body.String())
}

func (suite *HandlerTestSuite) TestMonthlyReport_DefaultsToPDF() {
	suite.reporting.On("RenderMonthlyReport", mock.Anything, 2026, 2, portssvc.ReportPDF, mock.Anything).
		Return(nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/reports/monthly?year=2026&month=2", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))
}

func (suite *HandlerTestSuite) TestMonthlyReport_RenderFailureIsJSON() {
	suite.reporting.On("RenderMonthlyReport", mock.Anything, 2026, 2, portssvc.ReportPDF, mock.Anything).
		Return(io.ErrUnexpectedEOF).Once()

	w := suite.do(http.MethodGet, "/api/v1/cash/reports/monthly?year=2026&month=2", nil)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal("Failed to render monthly report", suite.errorMessage(w))
}

func (suite *HandlerTestSuite) TestMonthlyStats_InvalidMonth() {
	w := suite.do(http.MethodGet, "/api/v1/cash/stats/monthly?year=2026&month=13", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}
