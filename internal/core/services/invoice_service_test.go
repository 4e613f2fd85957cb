package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/core/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/report"
	"github.com/gestionale-jos/jos_backend/internal/repositories/memory"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const validVATNumber = "01234567897"

type InvoiceServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.Store
	authorizer *MockRoleAuthorizer
	events     *recordingPublisher
	clients    portssvc.ClientSvcFacade
	invoices   portssvc.InvoiceSvcFacade
	client     *domain.Client
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.authorizer = new(MockRoleAuthorizer)
	s.events = &recordingPublisher{}
	s.clients = services.NewClientService(s.store)
	s.invoices = services.NewInvoiceService(s.store, s.store, s.store,
		services.WithInvoiceRoleAuthorizer(s.authorizer),
		services.WithInvoiceEvents(s.events),
		services.WithInvoiceIssuer(report.Issuer{Name: "Rosticceria Jos", VATNumber: validVATNumber}),
		services.WithInvoiceLocation(time.UTC),
		services.WithInvoiceClock(func() time.Time { return time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC) }),
	)

	client, err := s.clients.CreateClient(s.ctx, dto.CreateClientRequest{
		BusinessName: "Trattoria Da Mario",
		VATNumber:    strPtr(validVATNumber),
		City:         "Milano",
	}, "op-1")
	s.Require().NoError(err)
	s.client = client
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (s *InvoiceServiceTestSuite) createRequest(date string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientID: s.client.ClientID,
		Date:     date,
		Lines: []dto.InvoiceLineRequest{{
			Description: "Pollo allo spiedo",
			Quantity:    dec("2"),
			UnitPrice:   dec("10"),
			VATCode:     "10V",
		}},
	}
}

func (s *InvoiceServiceTestSuite) TestCreateInvoice_ComputesTotalsAndDefaults() {
	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")

	s.Require().NoError(err)
	s.Equal(1, inv.Number)
	s.Equal(2024, inv.Year)
	s.Equal("1/2024", inv.FullNumber())
	s.Equal(domain.InvoiceDraft, inv.Status)
	s.Equal(domain.DefaultDocumentType, inv.DocumentType)
	s.Equal(domain.DefaultFiscalRegime, inv.FiscalRegime)
	s.True(dec("20").Equal(inv.Subtotal), "subtotal %s", inv.Subtotal)
	s.True(dec("2").Equal(inv.VAT), "vat %s", inv.VAT)
	s.True(dec("22").Equal(inv.Total), "total %s", inv.Total)
	s.Equal("pz", inv.Lines[0].UnitOfMeasure)
	s.Contains(s.events.keys(), domain.TableInvoices+".INSERT")

	stored, err := s.invoices.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Len(stored.Lines, 1)
	s.Equal("Trattoria Da Mario", stored.ClientName)
}

func (s *InvoiceServiceTestSuite) TestCreateInvoice_Validation() {
	req := s.createRequest("2024-05-10")
	req.Lines = nil
	_, err := s.invoices.CreateInvoice(s.ctx, req, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	req = s.createRequest("2024-05-10")
	req.Lines[0].VATCode = "99X"
	_, err = s.invoices.CreateInvoice(s.ctx, req, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	req = s.createRequest("2024-05-10")
	req.ClientID = "missing"
	_, err = s.invoices.CreateInvoice(s.ctx, req, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *InvoiceServiceTestSuite) TestNumbering_NeverReusesDeletedNumbers() {
	s.authorizer.On("AuthorizeUserRole", mock.Anything, "admin-1", domain.RoleAdmin).Return(nil)

	ids := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
		s.Require().NoError(err)
		s.Equal(i, inv.Number)
		ids = append(ids, inv.InvoiceID)
	}

	s.Require().NoError(s.invoices.DeleteInvoice(s.ctx, ids[2], "admin-1"))
	s.Require().NoError(s.invoices.DeleteInvoice(s.ctx, ids[4], "admin-1"))

	next, err := s.invoices.NextInvoiceNumber(s.ctx, 2024)
	s.Require().NoError(err)
	s.Equal(6, next)

	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-06-01"), "op-1")
	s.Require().NoError(err)
	s.Equal(6, inv.Number)

	other, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2025-01-02"), "op-1")
	s.Require().NoError(err)
	s.Equal(1, other.Number)
}

func (s *InvoiceServiceTestSuite) TestDeleteInvoice_RequiresAdmin() {
	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
	s.Require().NoError(err)
	s.authorizer.On("AuthorizeUserRole", mock.Anything, "op-1", domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	err = s.invoices.DeleteInvoice(s.ctx, inv.InvoiceID, "op-1")

	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.invoices.GetInvoice(s.ctx, inv.InvoiceID)
	s.NoError(err)
}

func (s *InvoiceServiceTestSuite) TestStatusLifecycle() {
	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
	s.Require().NoError(err)

	_, err = s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoicePaid}, "op-1")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	issued, err := s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoiceIssued}, "op-1")
	s.Require().NoError(err)
	s.Equal(domain.InvoiceIssued, issued.Status)

	_, err = s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoicePaid}, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	paid, err := s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{
		Status:        domain.InvoicePaid,
		PaymentDate:   strPtr("2024-05-30"),
		PaymentMethod: strPtr("MP05"),
	}, "op-1")
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, paid.Status)
	s.Equal("2024-05-30", *paid.PaymentDate)

	_, err = s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoiceVoid}, "op-1")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_DraftOnlyFields() {
	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
	s.Require().NoError(err)

	updated, err := s.invoices.UpdateInvoice(s.ctx, inv.InvoiceID, dto.UpdateInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{Description: "Patate", Quantity: dec("1"), UnitPrice: dec("100"), VATCode: "22V"}},
	}, "op-1")
	s.Require().NoError(err)
	s.True(dec("122").Equal(updated.Total))

	_, err = s.invoices.UpdateInvoice(s.ctx, inv.InvoiceID, dto.UpdateInvoiceRequest{Date: strPtr("2025-01-01")}, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoiceIssued}, "op-1")
	s.Require().NoError(err)

	_, err = s.invoices.UpdateInvoice(s.ctx, inv.InvoiceID, dto.UpdateInvoiceRequest{Date: strPtr("2024-05-11")}, "op-1")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	noted, err := s.invoices.UpdateInvoice(s.ctx, inv.InvoiceID, dto.UpdateInvoiceRequest{Notes: strPtr(" consegna ")}, "op-1")
	s.Require().NoError(err)
	s.Equal("consegna", noted.Notes)

	stored, err := s.invoices.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Len(stored.Lines, 1)
	s.Equal("Patate", stored.Lines[0].Description)
}

func (s *InvoiceServiceTestSuite) TestUpdateInvoice_VoidIsFrozen() {
	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
	s.Require().NoError(err)
	_, err = s.invoices.ChangeInvoiceStatus(s.ctx, inv.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoiceVoid}, "op-1")
	s.Require().NoError(err)

	_, err = s.invoices.UpdateInvoice(s.ctx, inv.InvoiceID, dto.UpdateInvoiceRequest{Notes: strPtr("x")}, "op-1")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *InvoiceServiceTestSuite) TestListInvoicesAndStats() {
	for _, date := range []string{"2024-04-02", "2024-05-10", "2024-05-12"} {
		_, err := s.invoices.CreateInvoice(s.ctx, s.createRequest(date), "op-1")
		s.Require().NoError(err)
	}
	voided, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-15"), "op-1")
	s.Require().NoError(err)
	_, err = s.invoices.ChangeInvoiceStatus(s.ctx, voided.InvoiceID, dto.ChangeInvoiceStatusRequest{Status: domain.InvoiceVoid}, "op-1")
	s.Require().NoError(err)

	resp, err := s.invoices.ListInvoices(s.ctx, dto.ListInvoicesParams{Year: 2024, Month: 5, Page: 1, PerPage: 2})
	s.Require().NoError(err)
	s.Equal(3, resp.Pagination.Total)
	s.Len(resp.Invoices, 2)
	s.Equal(4, resp.Invoices[0].Number)
	s.Nil(resp.Invoices[0].Lines)
	s.True(resp.Pagination.HasNext)

	stats, err := s.invoices.InvoiceStats(s.ctx, 2024)
	s.Require().NoError(err)
	s.Equal(3, stats.Count)
	s.True(dec("66").Equal(stats.TotalInvoiced))
	s.Equal(2, stats.CurrentMonthCount)

	periods, err := s.invoices.AvailablePeriods(s.ctx)
	s.Require().NoError(err)
	s.Equal([]domain.InvoicePeriod{{Year: 2024, Month: 5}, {Year: 2024, Month: 4}}, periods)
}

func (s *InvoiceServiceTestSuite) TestPreviewTotals() {
	resp, err := s.invoices.PreviewTotals(s.ctx, dto.PreviewTotalsRequest{Lines: []dto.InvoiceLineRequest{
		{Description: "Spiedo", Quantity: dec("3"), UnitPrice: dec("9.50"), DiscountPercent: dec("10"), VATCode: "10V"},
	}})
	s.Require().NoError(err)
	s.True(dec("25.65").Equal(resp.Subtotal), "subtotal %s", resp.Subtotal)
	s.Len(resp.LineTotals, 1)
}

func (s *InvoiceServiceTestSuite) TestRenderInvoicePDF() {
	inv, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
	s.Require().NoError(err)

	var buf bytes.Buffer
	rendered, err := s.invoices.RenderInvoicePDF(s.ctx, inv.InvoiceID, &buf)

	s.Require().NoError(err)
	s.Equal(inv.InvoiceID, rendered.InvoiceID)
	s.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func (s *InvoiceServiceTestSuite) TestDeleteClient_ReferencedByInvoice() {
	_, err := s.invoices.CreateInvoice(s.ctx, s.createRequest("2024-05-10"), "op-1")
	s.Require().NoError(err)

	err = s.clients.DeleteClient(s.ctx, s.client.ClientID, "op-1")
	s.ErrorIs(err, apperrors.ErrDuplicate)

	orphan, err := s.clients.CreateClient(s.ctx, dto.CreateClientRequest{
		BusinessName: "Mario Rossi",
		TaxCode:      strPtr("rssmra80a01h501u"),
	}, "op-1")
	s.Require().NoError(err)
	s.Equal("RSSMRA80A01H501U", *orphan.TaxCode)
	s.NoError(s.clients.DeleteClient(s.ctx, orphan.ClientID, "op-1"))
}

func (s *InvoiceServiceTestSuite) TestCreateClient_NeedsFiscalID() {
	_, err := s.clients.CreateClient(s.ctx, dto.CreateClientRequest{BusinessName: "Senza dati"}, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.clients.CreateClient(s.ctx, dto.CreateClientRequest{BusinessName: "PIVA errata", VATNumber: strPtr("01234567890")}, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)
}
