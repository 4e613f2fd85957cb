package handlers_test

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Card payments ---

func (suite *HandlerTestSuite) TestCreateCardPayment_Success() {
	payment := &domain.CardPayment{
		PaymentID: "card-1",
		Date:      "2026-03-02",
		Amount:    decimal.RequireFromString("18.90"),
	}
	suite.cards.On("CreateCardPayment", mock.Anything, mock.MatchedBy(func(req dto.CreateCardPaymentRequest) bool {
		return req.Date == "2026-03-02" && req.Amount.Equal(decimal.RequireFromString("18.90"))
	}), testUserID).Return(payment, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/card-payments", map[string]any{
		"date":        "2026-03-02",
		"amount":      18.90,
		"description": "Pollo intero",
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp domain.CardPayment
	suite.decode(w, &resp)
	suite.Equal("card-1", resp.PaymentID)
}

func (suite *HandlerTestSuite) TestCreateCardPayment_ClosedDayIsConflict() {
	suite.cards.On("CreateCardPayment", mock.Anything, mock.Anything, testUserID).
		Return(nil, apperrors.ErrDayClosed).Once()

	w := suite.do(http.MethodPost, "/api/v1/card-payments", map[string]any{
		"date":   "2026-03-01",
		"amount": 5,
	})

	suite.Equal(http.StatusConflict, w.Code)
	suite.Contains(suite.errorMessage(w), "closed")
}

func (suite *HandlerTestSuite) TestCreateCardPayment_InvalidDate() {
	w := suite.do(http.MethodPost, "/api/v1/card-payments", map[string]any{
		"date":   "2026-02-30",
		"amount": 5,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListCardPayments_DefaultLimit() {
	suite.cards.On("ListCardPayments", mock.Anything, dto.ListCardPaymentsParams{Date: "2026-03-02", Limit: 50}).
		Return(&dto.ListCardPaymentsResponse{Payments: []domain.CardPayment{}, PageTotal: decimal.Zero}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/card-payments?date=2026-03-02", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestDeleteCardPayment_NoContent() {
	suite.cards.On("DeleteCardPayment", mock.Anything, "card-1", testUserID).Return(nil).Once()

	w := suite.do(http.MethodDelete, "/api/v1/card-payments/card-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
}

func (suite *HandlerTestSuite) TestCardPaymentTotal() {
	suite.cards.On("TotalForDate", mock.Anything, "2026-03-02").Return(decimal.RequireFromString("120.40"), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/card-payments/total?date=2026-03-02", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CardPaymentTotalResponse
	suite.decode(w, &resp)
	suite.Equal("2026-03-02", resp.Date)
	suite.True(resp.Total.Equal(decimal.RequireFromString("120.40")))
}

// --- Invoices ---

func validInvoiceBody() map[string]any {
	return map[string]any{
		"clientID": "client-1",
		"date":     "2026-03-02",
		"lines": []map[string]any{{
			"description":   "Catering pranzo aziendale",
			"quantity":      2,
			"unitOfMeasure": "pz",
			"unitPrice":     "45.00",
			"vatCode":       "22",
		}},
	}
}

func (suite *HandlerTestSuite) TestCreateInvoice_Success() {
	invoice := &domain.Invoice{
		InvoiceID: "inv-1",
		Number:    7,
		Year:      2026,
		Status:    domain.InvoiceDraft,
		Total:     decimal.RequireFromString("109.80"),
	}
	suite.invoices.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req dto.CreateInvoiceRequest) bool {
		return req.ClientID == "client-1" && len(req.Lines) == 1 && req.Lines[0].VATCode == "22"
	}), testUserID).Return(invoice, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices", validInvoiceBody())

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp domain.Invoice
	suite.decode(w, &resp)
	suite.Equal(7, resp.Number)
	suite.Equal(domain.InvoiceDraft, resp.Status)
}

func (suite *HandlerTestSuite) TestCreateInvoice_ValidationErrors() {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{name: "no lines", mutate: func(b map[string]any) { b["lines"] = []map[string]any{} }},
		{name: "bad date", mutate: func(b map[string]any) { b["date"] = "02/03/2026" }},
		{name: "unknown document type", mutate: func(b map[string]any) { b["documentType"] = "TD99" }},
		{name: "discount over 100", mutate: func(b map[string]any) {
			b["lines"].([]map[string]any)[0]["discountPercent"] = 150
		}},
		{name: "short recipient code", mutate: func(b map[string]any) { b["recipientCode"] = "ABC" }},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			body := validInvoiceBody()
			tt.mutate(body)

			w := suite.do(http.MethodPost, "/api/v1/invoices", body)

			suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	suite.invoices.AssertNotCalled(suite.T(), "CreateInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestChangeInvoiceStatus_InvalidTransition() {
	suite.invoices.On("ChangeInvoiceStatus", mock.Anything, "inv-1", mock.MatchedBy(func(req dto.ChangeInvoiceStatusRequest) bool {
		return req.Status == domain.InvoiceDraft
	}), testUserID).Return(nil, apperrors.ErrInvalidTransition).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/status", map[string]any{"status": "draft"})

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestChangeInvoiceStatus_Paid() {
	paymentDate := "2026-03-10"
	invoice := &domain.Invoice{InvoiceID: "inv-1", Status: domain.InvoicePaid, PaymentDate: &paymentDate}
	suite.invoices.On("ChangeInvoiceStatus", mock.Anything, "inv-1", mock.MatchedBy(func(req dto.ChangeInvoiceStatusRequest) bool {
		return req.Status == domain.InvoicePaid && req.PaymentDate != nil && *req.PaymentDate == paymentDate
	}), testUserID).Return(invoice, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/status", map[string]any{
		"status":      "paid",
		"paymentDate": paymentDate,
	})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestChangeInvoiceStatus_UnknownStatus() {
	w := suite.do(http.MethodPost, "/api/v1/invoices/inv-1/status", map[string]any{"status": "archived"})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestNextInvoiceNumber_DefaultsToCurrentYear() {
	year := time.Now().Year()
	suite.invoices.On("NextInvoiceNumber", mock.Anything, year).Return(12, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/invoices/next-number", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.NextNumberResponse
	suite.decode(w, &resp)
	suite.Equal(dto.NextNumberResponse{Year: year, Number: 12}, resp)
}

func (suite *HandlerTestSuite) TestInvoicePDF_Download() {
	invoice := &domain.Invoice{InvoiceID: "inv-1", Number: 3, Year: 2026}
	suite.invoices.On("RenderInvoicePDF", mock.Anything, "inv-1", mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(2).(io.Writer), "%PDF-1.3")
		}).Return(invoice, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/invoices/inv-1/pdf", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))
	suite.Equal(`attachment; filename="fattura_2026_3.pdf"`, w.Header().Get("Content-Disposition"))
	suite.Equal("%PDF-1.3", w.Body.String())
}

func (suite *HandlerTestSuite) TestDeleteInvoice_OperatorForbidden() {
	suite.invoices.On("DeleteInvoice", mock.Anything, "inv-2", testUserID).
		Return(fmt.Errorf("%w: user %s lacks role admin", apperrors.ErrForbidden, testUserID)).Once()

	w := suite.do(http.MethodDelete, "/api/v1/invoices/inv-2", nil)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteInvoice_NotFound() {
	suite.invoices.On("DeleteInvoice", mock.Anything, "missing", testUserID).Return(apperrors.ErrNotFound).Once()

	w := suite.do(http.MethodDelete, "/api/v1/invoices/missing", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

// --- Clients ---

func (suite *HandlerTestSuite) TestCreateClient_BadVATNumber() {
	w := suite.do(http.MethodPost, "/api/v1/clients", map[string]any{
		"businessName": "Trattoria da Gino",
		"vatNumber":    "01234567890",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.clients.AssertNotCalled(suite.T(), "CreateClient", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateClient_CompanyTaxCodeAcceptsVATNumber() {
	vat := "01234567897"
	client := &domain.Client{ClientID: "client-1", BusinessName: "Trattoria da Gino", VATNumber: &vat, TaxCode: &vat}
	suite.clients.On("CreateClient", mock.Anything, mock.MatchedBy(func(req dto.CreateClientRequest) bool {
		return req.TaxCode != nil && *req.TaxCode == vat
	}), testUserID).Return(client, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/clients", map[string]any{
		"businessName": "Trattoria da Gino",
		"vatNumber":    vat,
		"taxCode":      vat,
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestCreateClient_PrivatePersonWithTaxCode() {
	taxCode := "RSSMRA85T10A562S"
	client := &domain.Client{ClientID: "client-2", BusinessName: "Mario Rossi", TaxCode: &taxCode}
	suite.clients.On("CreateClient", mock.Anything, mock.MatchedBy(func(req dto.CreateClientRequest) bool {
		return req.VATNumber == nil && req.TaxCode != nil && *req.TaxCode == taxCode
	}), testUserID).Return(client, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/clients", map[string]any{
		"businessName": "Mario Rossi",
		"taxCode":      taxCode,
	})

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) TestCreateClient_TaxCodeWithWrongCheckCharacter() {
	w := suite.do(http.MethodPost, "/api/v1/clients", map[string]any{
		"businessName": "Mario Rossi",
		"taxCode":      "RSSMRA85T10A562T",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.clients.AssertNotCalled(suite.T(), "CreateClient", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListClients_NilBecomesEmpty() {
	suite.clients.On("ListClients", mock.Anything, "gino").Return(nil, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/clients?search=gino", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}
