package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	MovementRepo    CashMovementRepositoryFacade
	DailyRecordRepo DailyRecordRepositoryFacade
	CardPaymentRepo CardPaymentRepositoryFacade
	InvoiceRepo     InvoiceRepositoryFacade
	ClientRepo      ClientRepositoryFacade
	ProductRepo     ProductRepositoryFacade
	UserRepo        UserRepositoryFacade
	ReportingRepo   ReportingRepository
}
