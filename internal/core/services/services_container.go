package services

import (
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/gestionale-jos/jos_backend/internal/report"
)

// IssuerFromConfig maps the configured shop details onto the block printed on documents.
func IssuerFromConfig(cfg *config.Config) report.Issuer {
	return report.Issuer{
		Name:      cfg.Shop.Name,
		Address:   cfg.Shop.Address,
		VATNumber: cfg.Shop.VATNumber,
		TaxCode:   cfg.Shop.TaxCode,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// events receives every change event; stream is what the SSE endpoint subscribes to.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, events portssvc.EventPublisher, stream portssvc.EventStream) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{Events: stream}

	// Initialize the user service first since every other service authorizes through it
	container.User = NewUserService(repos.UserRepo)
	roleAuthorizer := container.User.(portssvc.UserRoleAuthorizerSvc)
	issuer := IssuerFromConfig(cfg)

	ledger := NewLedgerService(
		repos.MovementRepo,
		repos.DailyRecordRepo,
		repos.CardPaymentRepo,
		WithLedgerLocation(cfg.ShopLocation),
		WithClosedDayLock(cfg.LockClosedDays),
		WithDefaultOpeningFloat(cfg.DefaultOpeningFloat),
		WithLedgerRoleAuthorizer(roleAuthorizer),
		WithLedgerEvents(events),
	)
	container.Ledger = ledger

	container.CardPayment = NewCardPaymentService(
		repos.CardPaymentRepo,
		ledger,
		WithCardPaymentEvents(events),
	)

	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		repos.ClientRepo,
		repos.ReportingRepo,
		WithInvoiceRoleAuthorizer(roleAuthorizer),
		WithInvoiceEvents(events),
		WithInvoiceIssuer(issuer),
		WithInvoiceLocation(cfg.ShopLocation),
	)
	container.Client = NewClientService(repos.ClientRepo)
	container.Product = NewProductService(repos.ProductRepo, WithProductRoleAuthorizer(roleAuthorizer))

	container.Reporting = NewReportingService(
		ledger,
		repos.ReportingRepo,
		repos.CardPaymentRepo,
		repos.MovementRepo,
		WithReportingIssuer(issuer),
		WithReportingLocation(cfg.ShopLocation),
	)

	container.TokenService = NewTokenService(cfg)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
