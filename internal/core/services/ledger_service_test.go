package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/core/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/gestionale-jos/jos_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockRoleAuthorizer struct {
	mock.Mock
}

func (m *MockRoleAuthorizer) AuthorizeUserRole(ctx context.Context, userID string, required domain.UserRole) error {
	args := m.Called(ctx, userID, required)
	return args.Error(0)
}

// recordingPublisher keeps every event it receives.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.RoutingKey()
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

const testDay = "2024-05-10"

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memory.Store
	authorizer *MockRoleAuthorizer
	events     *recordingPublisher
	ledger     portssvc.LedgerSvcFacade
	cards      portssvc.CardPaymentSvcFacade
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.authorizer = new(MockRoleAuthorizer)
	s.events = &recordingPublisher{}
	clock := func() time.Time { return time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC) }
	s.ledger = services.NewLedgerService(s.store, s.store, s.store,
		services.WithLedgerLocation(time.UTC),
		services.WithLedgerRoleAuthorizer(s.authorizer),
		services.WithLedgerEvents(s.events),
		services.WithLedgerClock(clock),
	)
	s.cards = services.NewCardPaymentService(s.store, s.ledger)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

// openDayWithSales opens testDay with 200, records 50 income and 20 expense.
func (s *LedgerServiceTestSuite) openDayWithSales() {
	_, err := s.ledger.OpenDay(s.ctx, testDay, dto.OpenDayRequest{OpeningFloat: decPtr("200")}, "op-1")
	s.Require().NoError(err)
	_, err = s.ledger.RecordMovement(s.ctx, dto.RecordMovementRequest{
		Kind:        domain.MovementIncome,
		Amount:      dec("50"),
		Description: "Vendite mattina",
		Category:    "Vendite al banco",
		Timestamp:   strPtr(testDay + " 12:00:00"),
	}, "op-1")
	s.Require().NoError(err)
	_, err = s.ledger.RecordMovement(s.ctx, dto.RecordMovementRequest{
		Kind:        domain.MovementExpense,
		Amount:      dec("20"),
		Description: "Carbone",
		Timestamp:   strPtr(testDay + " 13:30:00"),
	}, "op-1")
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TestComputeDailyState_EmptyDay() {
	state, err := s.ledger.ComputeDailyState(s.ctx, testDay)

	s.Require().NoError(err)
	s.False(state.Opened)
	s.False(state.Closed)
	s.True(state.TheoreticalFloat.IsZero())
	s.True(state.CashSales.IsZero())
	s.Empty(state.Movements)
	s.NotNil(state.Movements)
}

func (s *LedgerServiceTestSuite) TestComputeDailyState_InvalidDate() {
	_, err := s.ledger.ComputeDailyState(s.ctx, "10/05/2024")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestOpenDay_ThenMovements_ProjectsTheoreticalFloat() {
	s.openDayWithSales()

	state, err := s.ledger.ComputeDailyState(s.ctx, testDay)
	s.Require().NoError(err)
	s.True(state.Opened)
	s.True(dec("200").Equal(state.OpeningFloat))
	s.True(dec("50").Equal(state.CashSales))
	s.True(dec("20").Equal(state.Expenses))
	s.True(dec("230").Equal(state.TheoreticalFloat), "got %s", state.TheoreticalFloat)
	s.Len(state.Movements, 3)
	s.Equal(domain.MovementOpeningFloat, state.Movements[0].Kind)

	stored, err := s.store.FindDailyRecord(s.ctx, testDay)
	s.Require().NoError(err)
	s.True(dec("230").Equal(stored.TheoreticalFloat))
}

func (s *LedgerServiceTestSuite) TestOpenDay_DefaultFloatAndAlreadyOpen() {
	state, err := s.ledger.OpenDay(s.ctx, testDay, dto.OpenDayRequest{}, "")
	s.Require().NoError(err)
	s.True(dec("200").Equal(state.OpeningFloat))
	s.Equal(domain.SystemOperator, state.Movements[0].Operator)

	_, err = s.ledger.OpenDay(s.ctx, testDay, dto.OpenDayRequest{OpeningFloat: decPtr("150")}, "op-1")
	s.ErrorIs(err, apperrors.ErrAlreadyOpen)

	movements, err := s.ledger.ListMovements(s.ctx, testDay)
	s.Require().NoError(err)
	s.Len(movements, 1)
}

func (s *LedgerServiceTestSuite) TestRecordMovement_RejectsManualFloatKinds() {
	_, err := s.ledger.RecordMovement(s.ctx, dto.RecordMovementRequest{
		Kind:        domain.MovementOpeningFloat,
		Amount:      dec("10"),
		Description: "x",
	}, "op-1")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestRecordMovement_DefaultsToNow() {
	m, err := s.ledger.RecordMovement(s.ctx, dto.RecordMovementRequest{
		Kind:        domain.MovementIncome,
		Amount:      dec("12.50"),
		Description: "Asporto",
	}, "op-1")

	s.Require().NoError(err)
	s.Equal(testDay, m.Date)
	s.Equal(18, m.Timestamp.Hour())
}

func (s *LedgerServiceTestSuite) TestCloseDay_StoresDiscrepancy() {
	s.openDayWithSales()

	rec, err := s.ledger.CloseDay(s.ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("225"), Note: " manca resto "}, "op-1")

	s.Require().NoError(err)
	s.True(rec.Closed)
	s.Require().NotNil(rec.Discrepancy)
	s.True(dec("-5").Equal(*rec.Discrepancy), "got %s", rec.Discrepancy)
	s.True(dec("225").Equal(*rec.ActualFloat))
	s.Equal("manca resto", rec.Note)
	s.Require().NotNil(rec.ClosedAt)
	s.True(rec.ClosedAt.Equal(rec.UpdatedAt))
	s.Contains(s.events.keys(), domain.TableDailyRecords+".UPDATE")
	s.assertAuthorizerUnused()
}

func (s *LedgerServiceTestSuite) assertAuthorizerUnused() {
	s.authorizer.AssertNotCalled(s.T(), "AuthorizeUserRole", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCloseDay_IsAuthoritativeAndLocked() {
	s.openDayWithSales()
	_, err := s.ledger.CloseDay(s.ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("225")}, "op-1")
	s.Require().NoError(err)

	_, err = s.ledger.RecordMovement(s.ctx, dto.RecordMovementRequest{
		Kind:        domain.MovementIncome,
		Amount:      dec("5"),
		Description: "tardi",
		Timestamp:   strPtr(testDay + " 19:00:00"),
	}, "op-1")
	s.ErrorIs(err, apperrors.ErrDayClosed)

	_, err = s.cards.CreateCardPayment(s.ctx, dto.CreateCardPaymentRequest{Date: testDay, Amount: dec("30")}, "op-1")
	s.ErrorIs(err, apperrors.ErrDayClosed)

	state, err := s.ledger.ComputeDailyState(s.ctx, testDay)
	s.Require().NoError(err)
	s.True(state.Closed)
	s.True(state.Opened)
	s.True(dec("230").Equal(state.TheoreticalFloat))
}

func (s *LedgerServiceTestSuite) TestCloseDay_RecloseRequiresAdmin() {
	s.openDayWithSales()
	_, err := s.ledger.CloseDay(s.ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("225")}, "op-1")
	s.Require().NoError(err)

	s.authorizer.On("AuthorizeUserRole", mock.Anything, "op-1", domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()
	_, err = s.ledger.CloseDay(s.ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("230")}, "op-1")
	s.ErrorIs(err, apperrors.ErrForbidden)

	s.authorizer.On("AuthorizeUserRole", mock.Anything, "admin-1", domain.RoleAdmin).Return(nil).Once()
	rec, err := s.ledger.CloseDay(s.ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("230")}, "admin-1")
	s.Require().NoError(err)
	s.True(rec.Discrepancy.IsZero())
	s.authorizer.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestReopenDay() {
	s.authorizer.On("AuthorizeUserRole", mock.Anything, "admin-1", domain.RoleAdmin).Return(nil)

	_, err := s.ledger.ReopenDay(s.ctx, testDay, "admin-1")
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.openDayWithSales()
	_, err = s.ledger.ReopenDay(s.ctx, testDay, "admin-1")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.ledger.CloseDay(s.ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("225")}, "op-1")
	s.Require().NoError(err)

	rec, err := s.ledger.ReopenDay(s.ctx, testDay, "admin-1")
	s.Require().NoError(err)
	s.False(rec.Closed)
	s.Nil(rec.ActualFloat)
	s.Nil(rec.Discrepancy)
	s.Nil(rec.ClosedAt)

	_, err = s.cards.CreateCardPayment(s.ctx, dto.CreateCardPaymentRequest{Date: testDay, Amount: dec("30")}, "op-1")
	s.NoError(err)
}

func (s *LedgerServiceTestSuite) TestReopenDay_Forbidden() {
	s.authorizer.On("AuthorizeUserRole", mock.Anything, "op-1", domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()
	_, err := s.ledger.ReopenDay(s.ctx, testDay, "op-1")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *LedgerServiceTestSuite) TestCardSalesStayOutOfTheDrawer() {
	s.openDayWithSales()

	_, err := s.cards.CreateCardPayment(s.ctx, dto.CreateCardPaymentRequest{Date: testDay, Amount: dec("30"), Description: "POS"}, "op-1")
	s.Require().NoError(err)

	stored, err := s.store.FindDailyRecord(s.ctx, testDay)
	s.Require().NoError(err)
	s.True(dec("30").Equal(stored.CardSales))
	s.True(dec("230").Equal(stored.TheoreticalFloat))
	s.True(dec("80").Equal(stored.TotalIncome()), "cash 50 + card 30, got %s", stored.TotalIncome())
}

func (s *LedgerServiceTestSuite) TestSetOtherIncome_CountsInDrawerAndSurvivesRefresh() {
	s.openDayWithSales()

	rec, err := s.ledger.SetOtherIncome(s.ctx, testDay, dto.SetOtherIncomeRequest{Amount: dec("10")}, "op-1")
	s.Require().NoError(err)
	s.True(dec("240").Equal(rec.TheoreticalFloat))

	refreshed, err := s.ledger.RefreshDailyRecord(s.ctx, testDay)
	s.Require().NoError(err)
	s.True(dec("10").Equal(refreshed.OtherIncome))
	s.True(dec("240").Equal(refreshed.TheoreticalFloat))
}

func (s *LedgerServiceTestSuite) TestRefreshDailyRecord_IsIdempotent() {
	s.openDayWithSales()

	first, err := s.ledger.RefreshDailyRecord(s.ctx, testDay)
	s.Require().NoError(err)
	second, err := s.ledger.RefreshDailyRecord(s.ctx, testDay)
	s.Require().NoError(err)

	s.True(first.TheoreticalFloat.Equal(second.TheoreticalFloat))
	s.True(first.CashSales.Equal(second.CashSales))
	s.True(first.Expenses.Equal(second.Expenses))
}

func (s *LedgerServiceTestSuite) TestComputeDailyState_IsIdempotent() {
	s.openDayWithSales()
	_, err := s.cards.CreateCardPayment(s.ctx, dto.CreateCardPaymentRequest{Date: testDay, Amount: dec("12")}, "op-1")
	s.Require().NoError(err)
	eventsBefore := len(s.events.keys())

	first, err := s.ledger.ComputeDailyState(s.ctx, testDay)
	s.Require().NoError(err)
	second, err := s.ledger.ComputeDailyState(s.ctx, testDay)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Len(s.events.keys(), eventsBefore, "reading the state must not write")
}

func (s *LedgerServiceTestSuite) TestSumByKind() {
	s.openDayWithSales()
	_, err := s.cards.CreateCardPayment(s.ctx, dto.CreateCardPaymentRequest{Date: testDay, Amount: dec("7.25")}, "op-1")
	s.Require().NoError(err)

	income, err := s.ledger.SumByKind(s.ctx, testDay, domain.MovementIncome)
	s.Require().NoError(err)
	s.True(dec("50").Equal(income))

	closing, err := s.ledger.SumByKind(s.ctx, testDay, domain.MovementClosingFloat)
	s.Require().NoError(err)
	s.True(closing.IsZero())

	card, err := s.ledger.SumCardPayments(s.ctx, testDay)
	s.Require().NoError(err)
	s.True(dec("7.25").Equal(card))

	_, err = s.ledger.SumByKind(s.ctx, testDay, domain.MovementKind("bogus"))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestListDailyRecords_RejectsInvertedRange() {
	_, err := s.ledger.ListDailyRecords(s.ctx, "2024-05-31", "2024-05-01")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestLedgerService_UnlockedClosedDayKeepsClosure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := services.NewLedgerService(store, store, store,
		services.WithLedgerLocation(time.UTC),
		services.WithClosedDayLock(false),
	)
	cards := services.NewCardPaymentService(store, ledger)

	_, err := ledger.OpenDay(ctx, testDay, dto.OpenDayRequest{OpeningFloat: decPtr("100")}, "op-1")
	require.NoError(t, err)
	_, err = ledger.CloseDay(ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("100")}, "op-1")
	require.NoError(t, err)

	_, err = cards.CreateCardPayment(ctx, dto.CreateCardPaymentRequest{Date: testDay, Amount: dec("15")}, "op-1")
	require.NoError(t, err)

	rec, err := store.FindDailyRecord(ctx, testDay)
	require.NoError(t, err)
	assert.True(t, rec.Closed)
	assert.NotNil(t, rec.ActualFloat)
	assert.True(t, dec("15").Equal(rec.CardSales))
}

func TestLedgerService_DiscrepancyFixedAtClosure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ledger := services.NewLedgerService(store, store, store,
		services.WithLedgerLocation(time.UTC),
		services.WithClosedDayLock(false),
	)

	_, err := ledger.OpenDay(ctx, testDay, dto.OpenDayRequest{OpeningFloat: decPtr("100")}, "op-1")
	require.NoError(t, err)
	closed, err := ledger.CloseDay(ctx, testDay, dto.CloseDayRequest{ActualFloat: dec("95")}, "op-1")
	require.NoError(t, err)
	require.NotNil(t, closed.Discrepancy)
	require.True(t, dec("-5").Equal(*closed.Discrepancy))

	_, err = ledger.RecordMovement(ctx, dto.RecordMovementRequest{
		Kind:        domain.MovementIncome,
		Amount:      dec("20"),
		Description: "Vendita dopo chiusura",
		Timestamp:   strPtr(testDay + " 20:00:00"),
	}, "op-1")
	require.NoError(t, err)

	state, err := ledger.ComputeDailyState(ctx, testDay)
	require.NoError(t, err)
	assert.True(t, state.Closed)
	require.NotNil(t, state.ActualFloat)
	assert.True(t, dec("95").Equal(*state.ActualFloat))
	require.NotNil(t, state.Discrepancy)
	assert.True(t, dec("-5").Equal(*state.Discrepancy), "got %s", state.Discrepancy)
}
