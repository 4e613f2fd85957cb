// Package memory is an in-process store for development and tests. Data is lost
// on restart.
package memory

import (
	"sync"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
)

// Store keeps every table in maps guarded by one lock.
type Store struct {
	mu sync.RWMutex

	movements      []domain.CashMovement
	dailyRecords   map[string]domain.DailyCashRecord
	cardPayments   map[string]domain.CardPayment
	invoices       map[string]domain.Invoice
	invoiceCounter map[int]int
	clients        map[string]domain.Client
	products       map[string]domain.Product
	users          map[string]domain.User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		dailyRecords:   make(map[string]domain.DailyCashRecord),
		cardPayments:   make(map[string]domain.CardPayment),
		invoices:       make(map[string]domain.Invoice),
		invoiceCounter: make(map[int]int),
		clients:        make(map[string]domain.Client),
		products:       make(map[string]domain.Product),
		users:          make(map[string]domain.User),
	}
}

var (
	_ portsrepo.CashMovementRepositoryFacade = (*Store)(nil)
	_ portsrepo.DailyRecordRepositoryFacade  = (*Store)(nil)
	_ portsrepo.CardPaymentRepositoryFacade  = (*Store)(nil)
	_ portsrepo.InvoiceRepositoryFacade      = (*Store)(nil)
	_ portsrepo.ClientRepositoryFacade       = (*Store)(nil)
	_ portsrepo.ProductRepositoryFacade      = (*Store)(nil)
	_ portsrepo.UserRepositoryFacade         = (*Store)(nil)
	_ portsrepo.ReportingRepository          = (*Store)(nil)
)

// NewRepositoryProvider backs every repository with one fresh store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return NewStore().Provider()
}

// Provider exposes s through the repository interfaces.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		MovementRepo:    s,
		DailyRecordRepo: s,
		CardPaymentRepo: s,
		InvoiceRepo:     s,
		ClientRepo:      s,
		ProductRepo:     s,
		UserRepo:        s,
		ReportingRepo:   s,
	}
}

func inRange(date, from, to string) bool {
	return (from == "" || date >= from) && (to == "" || date <= to)
}
