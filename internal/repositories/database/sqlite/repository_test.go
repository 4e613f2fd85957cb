package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	"github.com/gestionale-jos/jos_backend/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	loc  *time.Location
	repo portsrepo.RepositoryProvider
}

func TestSQLiteRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepositoryTestSuite))
}

func (s *SQLiteRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.loc = time.FixedZone("CEST", 2*3600)
	path := filepath.Join(s.T().TempDir(), "jos.db")

	require.NoError(s.T(), database.MigrateSQLite(path, database.Up))
	db, err := database.OpenSQLite(s.ctx, path)
	require.NoError(s.T(), err)
	s.T().Cleanup(func() { db.Close() })
	s.repo = NewRepositoryProvider(db, s.loc)
}

func audit(at time.Time) domain.AuditFields {
	return domain.AuditFields{CreatedAt: at, CreatedBy: "u1", LastUpdatedAt: at, LastUpdatedBy: "u1"}
}

func (s *SQLiteRepositoryTestSuite) TestMovementKeepsShopWallClock() {
	ts := time.Date(2024, 5, 10, 23, 30, 0, 0, s.loc)
	err := s.repo.MovementRepo.AppendMovement(s.ctx, domain.CashMovement{
		MovementID:  "m1",
		Date:        "2024-05-10",
		Kind:        domain.MovementIncome,
		Amount:      decimal.RequireFromString("12.30"),
		Description: "Vendita",
		Timestamp:   ts,
		Operator:    "mario",
		CreatedAt:   ts.UTC(),
	})
	require.NoError(s.T(), err)

	got, err := s.repo.MovementRepo.FindMovementsByDate(s.ctx, "2024-05-10")
	require.NoError(s.T(), err)
	require.Len(s.T(), got, 1)
	assert.True(s.T(), ts.Equal(got[0].Timestamp))
	assert.Equal(s.T(), 23, got[0].Timestamp.Hour())
	assert.True(s.T(), decimal.RequireFromString("12.3").Equal(got[0].Amount))

	err = s.repo.MovementRepo.AppendMovement(s.ctx, got[0])
	assert.ErrorIs(s.T(), err, apperrors.ErrDuplicate)
}

func (s *SQLiteRepositoryTestSuite) TestDailyRecordUpsert() {
	_, err := s.repo.DailyRecordRepo.FindDailyRecord(s.ctx, "2024-05-10")
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)

	now := time.Date(2024, 5, 10, 20, 0, 0, 0, time.UTC)
	rec := domain.DailyCashRecord{
		Date:             "2024-05-10",
		OpeningFloat:     decimal.NewFromInt(100),
		CashSales:        decimal.NewFromInt(50),
		TheoreticalFloat: decimal.NewFromInt(150),
		UpdatedAt:        now,
	}
	require.NoError(s.T(), s.repo.DailyRecordRepo.UpsertDailyRecord(s.ctx, rec))

	actual := decimal.RequireFromString("145.50")
	diff := actual.Sub(rec.TheoreticalFloat)
	by := "mario"
	rec.ActualFloat, rec.Discrepancy, rec.Closed, rec.ClosedAt, rec.ClosedBy = &actual, &diff, true, &now, &by
	require.NoError(s.T(), s.repo.DailyRecordRepo.UpsertDailyRecord(s.ctx, rec))

	got, err := s.repo.DailyRecordRepo.FindDailyRecord(s.ctx, "2024-05-10")
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Closed)
	require.NotNil(s.T(), got.Discrepancy)
	assert.Equal(s.T(), "-4.5", got.Discrepancy.String())
	require.NotNil(s.T(), got.ClosedAt)
	assert.True(s.T(), now.Equal(*got.ClosedAt))

	list, err := s.repo.DailyRecordRepo.ListDailyRecords(s.ctx, "2024-05-01", "")
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 1)
}

func (s *SQLiteRepositoryTestSuite) TestCardPaymentKeyset() {
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	for i, date := range []string{"2024-05-09", "2024-05-10", "2024-05-10"} {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(s.T(), s.repo.CardPaymentRepo.SaveCardPayment(s.ctx, domain.CardPayment{
			PaymentID:   string(rune('a' + i)),
			Date:        date,
			Amount:      decimal.NewFromInt(int64(10 * (i + 1))),
			AuditFields: audit(at),
		}))
	}

	page, err := s.repo.CardPaymentRepo.ListCardPayments(s.ctx, domain.CardPaymentFilter{Limit: 2})
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 2)
	assert.Equal(s.T(), "c", page[0].PaymentID)
	assert.Equal(s.T(), "b", page[1].PaymentID)

	rest, err := s.repo.CardPaymentRepo.ListCardPayments(s.ctx, domain.CardPaymentFilter{
		AfterDate:      page[1].Date,
		AfterCreatedAt: &page[1].CreatedAt,
		AfterPaymentID: page[1].PaymentID,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), rest, 1)
	assert.Equal(s.T(), "a", rest[0].PaymentID)

	sales, err := s.repo.ReportingRepo.CardSalesByDate(s.ctx, "2024-05-10", "2024-05-10")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "50", sales["2024-05-10"].String())

	dates, err := s.repo.CardPaymentRepo.ListCardPaymentDates(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"2024-05-10", "2024-05-09"}, dates)

	assert.ErrorIs(s.T(), s.repo.CardPaymentRepo.DeleteCardPayment(s.ctx, "zz"), apperrors.ErrNotFound)
}

func (s *SQLiteRepositoryTestSuite) saveClient(id string) {
	vat := "01234567897"
	require.NoError(s.T(), s.repo.ClientRepo.SaveClient(s.ctx, domain.Client{
		ClientID:     id,
		BusinessName: "Trattoria " + id,
		VATNumber:    &vat,
		Country:      "IT",
		AuditFields:  audit(time.Now()),
	}))
}

func (s *SQLiteRepositoryTestSuite) newInvoice(id, date string) domain.Invoice {
	return domain.Invoice{
		InvoiceID:    id,
		Year:         2024,
		ClientID:     "c1",
		Date:         date,
		Subtotal:     decimal.NewFromInt(20),
		VAT:          decimal.NewFromInt(2),
		Total:        decimal.NewFromInt(22),
		Status:       domain.InvoiceDraft,
		DocumentType: "TD01",
		FiscalRegime: "RF01",
		Lines: []domain.InvoiceLine{{
			LineID:          id + "-l1",
			InvoiceID:       id,
			Position:        1,
			Description:     "Pollo intero",
			Quantity:        decimal.NewFromInt(2),
			UnitOfMeasure:   "pz",
			UnitPrice:       decimal.NewFromInt(10),
			DiscountPercent: decimal.Zero,
			VATRate:         decimal.NewFromInt(10),
			VATCode:         "10V",
			LineTotal:       decimal.NewFromInt(20),
		}},
		AuditFields: audit(time.Now()),
	}
}

func (s *SQLiteRepositoryTestSuite) TestInvoiceNumbersAreNeverReused() {
	s.saveClient("c1")
	for _, id := range []string{"i1", "i2", "i3"} {
		_, err := s.repo.InvoiceRepo.CreateInvoice(s.ctx, s.newInvoice(id, "2024-05-20"))
		require.NoError(s.T(), err)
	}
	require.NoError(s.T(), s.repo.InvoiceRepo.DeleteInvoice(s.ctx, "i3"))

	next, err := s.repo.InvoiceRepo.NextInvoiceNumber(s.ctx, 2024)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4, next)

	n, err := s.repo.InvoiceRepo.CreateInvoice(s.ctx, s.newInvoice("i4", "2024-06-01"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4, n)

	got, err := s.repo.InvoiceRepo.FindInvoiceByID(s.ctx, "i4")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Trattoria c1", got.ClientName)
	require.Len(s.T(), got.Lines, 1)
	assert.Equal(s.T(), "10V", got.Lines[0].VATCode)

	list, total, err := s.repo.InvoiceRepo.ListInvoices(s.ctx, domain.InvoiceFilter{Year: 2024, Month: 5, Limit: 1})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, total)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), 2, list[0].Number)
	assert.Nil(s.T(), list[0].Lines)

	totals, err := s.repo.ReportingRepo.InvoiceTotalsByStatus(s.ctx, "2024-05-01", "2024-05-31")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, totals[domain.InvoiceDraft].Count)
	assert.Equal(s.T(), "44", totals[domain.InvoiceDraft].Total.String())
}

func (s *SQLiteRepositoryTestSuite) TestUpdateInvoiceReplacesLines() {
	s.saveClient("c1")
	_, err := s.repo.InvoiceRepo.CreateInvoice(s.ctx, s.newInvoice("i1", "2024-05-20"))
	require.NoError(s.T(), err)

	inv, err := s.repo.InvoiceRepo.FindInvoiceByID(s.ctx, "i1")
	require.NoError(s.T(), err)
	inv.Status = domain.InvoiceIssued
	require.NoError(s.T(), s.repo.InvoiceRepo.UpdateInvoice(s.ctx, *inv, false))

	kept, err := s.repo.InvoiceRepo.FindInvoiceByID(s.ctx, "i1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.InvoiceIssued, kept.Status)
	assert.Len(s.T(), kept.Lines, 1)

	kept.Lines = nil
	require.NoError(s.T(), s.repo.InvoiceRepo.UpdateInvoice(s.ctx, *kept, true))
	cleared, err := s.repo.InvoiceRepo.FindInvoiceByID(s.ctx, "i1")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), cleared.Lines)
}

func (s *SQLiteRepositoryTestSuite) TestClientWithInvoicesCannotBeDeleted() {
	s.saveClient("c1")
	_, err := s.repo.InvoiceRepo.CreateInvoice(s.ctx, s.newInvoice("i1", "2024-05-20"))
	require.NoError(s.T(), err)

	assert.ErrorIs(s.T(), s.repo.ClientRepo.DeleteClient(s.ctx, "c1"), apperrors.ErrDuplicate)

	found, err := s.repo.ClientRepo.ListClients(s.ctx, "TRATT")
	require.NoError(s.T(), err)
	assert.Len(s.T(), found, 1)
}

func (s *SQLiteRepositoryTestSuite) TestProductsFollowCategoryOrder() {
	for i, p := range domain.DefaultProducts() {
		p.ProductID = string(rune('a' + i))
		p.AuditFields = audit(time.Now())
		require.NoError(s.T(), s.repo.ProductRepo.SaveProduct(s.ctx, p))
	}
	products, err := s.repo.ProductRepo.ListProducts(s.ctx, false)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), products)
	assert.Equal(s.T(), domain.CategorySpiedo, products[0].Category)
	assert.Equal(s.T(), domain.CategoryContorni, products[len(products)-1].Category)
}

func (s *SQLiteRepositoryTestSuite) TestUserLookups() {
	email := "Mario@Example.it"
	hash := "x"
	require.NoError(s.T(), s.repo.UserRepo.SaveUser(s.ctx, domain.User{
		UserID:       "u1",
		Username:     "mario",
		Name:         "Mario",
		Email:        &email,
		PasswordHash: &hash,
		Role:         domain.RoleAdmin,
		AuthProvider: domain.ProviderLocal,
		AuditFields:  audit(time.Now()),
	}))

	byEmail, err := s.repo.UserRepo.FindUserByEmail(s.ctx, "mario@example.it")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "u1", byEmail.UserID)

	err = s.repo.UserRepo.SaveUser(s.ctx, domain.User{UserID: "u2", Username: "mario", Name: "Dup", Role: domain.RoleOperator, AuthProvider: domain.ProviderLocal, AuditFields: audit(time.Now())})
	assert.ErrorIs(s.T(), err, apperrors.ErrDuplicate)

	users, err := s.repo.UserRepo.FindUsers(s.ctx, 0, 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 1)
}

func (s *SQLiteRepositoryTestSuite) TestCardPaymentKeyset_SameInstant() {
	at := time.Date(2024, 5, 11, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"x1", "x2", "x3"} {
		require.NoError(s.T(), s.repo.CardPaymentRepo.SaveCardPayment(s.ctx, domain.CardPayment{
			PaymentID:   id,
			Date:        "2024-05-11",
			Amount:      decimal.NewFromInt(5),
			AuditFields: audit(at),
		}))
	}

	first, err := s.repo.CardPaymentRepo.ListCardPayments(s.ctx, domain.CardPaymentFilter{Date: "2024-05-11", Limit: 2})
	require.NoError(s.T(), err)
	require.Len(s.T(), first, 2)
	assert.Equal(s.T(), "x3", first[0].PaymentID)
	assert.Equal(s.T(), "x2", first[1].PaymentID)

	rest, err := s.repo.CardPaymentRepo.ListCardPayments(s.ctx, domain.CardPaymentFilter{
		Date:           "2024-05-11",
		AfterDate:      first[1].Date,
		AfterCreatedAt: &first[1].CreatedAt,
		AfterPaymentID: first[1].PaymentID,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), rest, 1)
	assert.Equal(s.T(), "x1", rest[0].PaymentID)
}
