package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) SumByKind(ctx context.Context, date string, kind domain.MovementKind) (decimal.Decimal, error) {
	args := m.Called(ctx, date, kind)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) SumCardPayments(ctx context.Context, date string) (decimal.Decimal, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockLedgerService) ComputeDailyState(ctx context.Context, date string) (*domain.DailyState, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyState), args.Error(1)
}
func (m *MockLedgerService) ListDailyRecords(ctx context.Context, from, to string) ([]domain.DailyCashRecord, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyCashRecord), args.Error(1)
}
func (m *MockLedgerService) ListMovements(ctx context.Context, date string) ([]domain.CashMovement, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashMovement), args.Error(1)
}
func (m *MockLedgerService) OpenDay(ctx context.Context, date string, req dto.OpenDayRequest, userID string) (*domain.DailyState, error) {
	args := m.Called(ctx, date, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyState), args.Error(1)
}
func (m *MockLedgerService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest, userID string) (*domain.CashMovement, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashMovement), args.Error(1)
}
func (m *MockLedgerService) CloseDay(ctx context.Context, date string, req dto.CloseDayRequest, userID string) (*domain.DailyCashRecord, error) {
	args := m.Called(ctx, date, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyCashRecord), args.Error(1)
}
func (m *MockLedgerService) ReopenDay(ctx context.Context, date string, userID string) (*domain.DailyCashRecord, error) {
	args := m.Called(ctx, date, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyCashRecord), args.Error(1)
}
func (m *MockLedgerService) SetOtherIncome(ctx context.Context, date string, req dto.SetOtherIncomeRequest, userID string) (*domain.DailyCashRecord, error) {
	args := m.Called(ctx, date, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyCashRecord), args.Error(1)
}
func (m *MockLedgerService) EnsureDayWritable(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}
func (m *MockLedgerService) RefreshDailyRecord(ctx context.Context, date string) (*domain.DailyCashRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyCashRecord), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock CardPaymentService ---
type MockCardPaymentService struct {
	mock.Mock
}

func (m *MockCardPaymentService) GetCardPayment(ctx context.Context, paymentID string) (*domain.CardPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardPayment), args.Error(1)
}
func (m *MockCardPaymentService) ListCardPayments(ctx context.Context, params dto.ListCardPaymentsParams) (*dto.ListCardPaymentsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListCardPaymentsResponse), args.Error(1)
}
func (m *MockCardPaymentService) ListCardPaymentDates(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCardPaymentService) TotalForDate(ctx context.Context, date string) (decimal.Decimal, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockCardPaymentService) CreateCardPayment(ctx context.Context, req dto.CreateCardPaymentRequest, userID string) (*domain.CardPayment, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardPayment), args.Error(1)
}
func (m *MockCardPaymentService) UpdateCardPayment(ctx context.Context, paymentID string, req dto.UpdateCardPaymentRequest, userID string) (*domain.CardPayment, error) {
	args := m.Called(ctx, paymentID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CardPayment), args.Error(1)
}
func (m *MockCardPaymentService) DeleteCardPayment(ctx context.Context, paymentID string, userID string) error {
	args := m.Called(ctx, paymentID, userID)
	return args.Error(0)
}

var _ portssvc.CardPaymentSvcFacade = (*MockCardPaymentService)(nil)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListInvoicesResponse), args.Error(1)
}
func (m *MockInvoiceService) NextInvoiceNumber(ctx context.Context, year int) (int, error) {
	args := m.Called(ctx, year)
	return args.Int(0), args.Error(1)
}
func (m *MockInvoiceService) InvoiceStats(ctx context.Context, year int) (*domain.InvoiceStats, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceStats), args.Error(1)
}
func (m *MockInvoiceService) AvailablePeriods(ctx context.Context) ([]domain.InvoicePeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoicePeriod), args.Error(1)
}
func (m *MockInvoiceService) PreviewTotals(ctx context.Context, req dto.PreviewTotalsRequest) (*dto.InvoiceTotalsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InvoiceTotalsResponse), args.Error(1)
}
func (m *MockInvoiceService) RenderInvoicePDF(ctx context.Context, invoiceID string, w io.Writer) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ChangeInvoiceStatus(ctx context.Context, invoiceID string, req dto.ChangeInvoiceStatusRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) DeleteInvoice(ctx context.Context, invoiceID string, userID string) error {
	args := m.Called(ctx, invoiceID, userID)
	return args.Error(0)
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Mock ClientService ---
type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Client), args.Error(1)
}
func (m *MockClientService) CreateClient(ctx context.Context, req dto.CreateClientRequest, userID string) (*domain.Client, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, userID string) (*domain.Client, error) {
	args := m.Called(ctx, clientID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}
func (m *MockClientService) DeleteClient(ctx context.Context, clientID string, userID string) error {
	args := m.Called(ctx, clientID, userID)
	return args.Error(0)
}

var _ portssvc.ClientSvcFacade = (*MockClientService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, updaterUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) LinkGoogleUser(ctx context.Context, email, providerUserID string) (*domain.User, error) {
	args := m.Called(ctx, email, providerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) AuthorizeUserRole(ctx context.Context, userID string, required domain.UserRole) error {
	args := m.Called(ctx, userID, required)
	return args.Error(0)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock TokenService ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.TokenSvcFacade = (*MockTokenService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) MonthlyReport(ctx context.Context, year, month int) (*domain.MonthlyReport, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyReport), args.Error(1)
}
func (m *MockReportingService) RenderMonthlyReport(ctx context.Context, year, month int, format portssvc.ReportFormat, w io.Writer) error {
	args := m.Called(ctx, year, month, format, w)
	return args.Error(0)
}
func (m *MockReportingService) Dashboard(ctx context.Context, date string) (*domain.DashboardStats, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Fake EventStream ---

// fakeStream hands out a pre-filled, closed channel so that a stream request ends on its own.
type fakeStream struct {
	events    []domain.ChangeEvent
	cancelled bool
}

func (f *fakeStream) Publish(ctx context.Context, event domain.ChangeEvent) {
	f.events = append(f.events, event)
}

func (f *fakeStream) Subscribe() (<-chan domain.ChangeEvent, func()) {
	ch := make(chan domain.ChangeEvent, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, func() { f.cancelled = true }
}

var _ portssvc.EventStream = (*fakeStream)(nil)
