package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	portsrepo "github.com/gestionale-jos/jos_backend/internal/core/ports/repositories"
	portssvc "github.com/gestionale-jos/jos_backend/internal/core/ports/services"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/google/uuid"
)

// clientService implements the ClientSvcFacade interface
type clientService struct {
	BaseService
	clientRepo portsrepo.ClientRepositoryFacade
}

// NewClientService creates a new client service
func NewClientService(clientRepo portsrepo.ClientRepositoryFacade) portssvc.ClientSvcFacade {
	return &clientService{clientRepo: clientRepo}
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

// trimmed returns nil for nil or blank values.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func upper(v *string) *string {
	if v == nil {
		return nil
	}
	u := domain.NormalizeTaxCode(*v)
	return &u
}

// validateFiscalIDs checks the fiscal identifiers of a client. At least one of them is required.
func validateFiscalIDs(c *domain.Client) error {
	if c.VATNumber == nil && c.TaxCode == nil {
		return fmt.Errorf("%w: a VAT number or a tax code is required", apperrors.ErrValidation)
	}
	if c.VATNumber != nil && !domain.ValidVATNumber(*c.VATNumber) {
		return fmt.Errorf("%w: invalid VAT number %q", apperrors.ErrValidation, *c.VATNumber)
	}
	// Companies may use their VAT number as tax code.
	if c.TaxCode != nil && !domain.ValidTaxCode(*c.TaxCode) && !domain.ValidVATNumber(*c.TaxCode) {
		return fmt.Errorf("%w: invalid tax code %q", apperrors.ErrValidation, *c.TaxCode)
	}
	if c.RecipientCode != nil && !domain.ValidRecipientCode(*c.RecipientCode) {
		return fmt.Errorf("%w: invalid recipient code %q", apperrors.ErrValidation, *c.RecipientCode)
	}
	return nil
}

func (s *clientService) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.FindClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find client", slog.String("client_id", clientID))
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, search string) ([]domain.Client, error) {
	clients, err := s.clientRepo.ListClients(ctx, strings.TrimSpace(search))
	if err != nil {
		s.LogError(ctx, err, "Failed to list clients", slog.String("search", search))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	if clients == nil {
		return []domain.Client{}, nil
	}
	return clients, nil
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest, userID string) (*domain.Client, error) {
	name := strings.TrimSpace(req.BusinessName)
	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", apperrors.ErrValidation)
	}
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if country == "" {
		country = "IT"
	}
	now := time.Now().UTC()
	client := domain.Client{
		ClientID:      uuid.NewString(),
		BusinessName:  name,
		VATNumber:     trimmed(req.VATNumber),
		TaxCode:       upper(trimmed(req.TaxCode)),
		Address:       strings.TrimSpace(req.Address),
		ZipCode:       strings.TrimSpace(req.ZipCode),
		City:          strings.TrimSpace(req.City),
		Province:      strings.ToUpper(strings.TrimSpace(req.Province)),
		Country:       country,
		Email:         trimmed(req.Email),
		PEC:           trimmed(req.PEC),
		Phone:         trimmed(req.Phone),
		RecipientCode: upper(trimmed(req.RecipientCode)),
		SplitPayment:  req.SplitPayment,
		Notes:         strings.TrimSpace(req.Notes),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := validateFiscalIDs(&client); err != nil {
		return nil, err
	}
	if err := s.clientRepo.SaveClient(ctx, client); err != nil {
		s.LogError(ctx, err, "Failed to save client", slog.String("business_name", name))
		return nil, err
	}
	s.LogInfo(ctx, "Client created", slog.String("client_id", client.ClientID))
	return &client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID string, req dto.UpdateClientRequest, userID string) (*domain.Client, error) {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if req.BusinessName != nil {
		name := strings.TrimSpace(*req.BusinessName)
		if name == "" {
			return nil, fmt.Errorf("%w: business name is required", apperrors.ErrValidation)
		}
		client.BusinessName = name
	}
	// Optional identifiers are cleared by sending an empty string.
	if req.VATNumber != nil {
		client.VATNumber = trimmed(req.VATNumber)
	}
	if req.TaxCode != nil {
		client.TaxCode = upper(trimmed(req.TaxCode))
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.ZipCode != nil {
		client.ZipCode = strings.TrimSpace(*req.ZipCode)
	}
	if req.City != nil {
		client.City = strings.TrimSpace(*req.City)
	}
	if req.Province != nil {
		client.Province = strings.ToUpper(strings.TrimSpace(*req.Province))
	}
	if req.Country != nil {
		client.Country = strings.ToUpper(strings.TrimSpace(*req.Country))
	}
	if req.Email != nil {
		client.Email = trimmed(req.Email)
	}
	if req.PEC != nil {
		client.PEC = trimmed(req.PEC)
	}
	if req.Phone != nil {
		client.Phone = trimmed(req.Phone)
	}
	if req.RecipientCode != nil {
		client.RecipientCode = upper(trimmed(req.RecipientCode))
	}
	if req.SplitPayment != nil {
		client.SplitPayment = *req.SplitPayment
	}
	if req.Notes != nil {
		client.Notes = strings.TrimSpace(*req.Notes)
	}
	if err := validateFiscalIDs(client); err != nil {
		return nil, err
	}

	client.LastUpdatedAt = time.Now().UTC()
	client.LastUpdatedBy = userID
	if err := s.clientRepo.UpdateClient(ctx, *client); err != nil {
		s.LogError(ctx, err, "Failed to update client", slog.String("client_id", clientID))
		return nil, err
	}
	s.LogInfo(ctx, "Client updated", slog.String("client_id", clientID))
	return client, nil
}

// DeleteClient removes a client. Clients referenced by invoices are kept (ErrDuplicate from the store).
func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID string) error {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return err
	}
	if err := s.clientRepo.DeleteClient(ctx, clientID); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to delete client", slog.String("client_id", clientID))
		}
		return err
	}
	s.LogInfo(ctx, "Client deleted", slog.String("client_id", clientID), slog.String("user_id", userID))
	return nil
}
