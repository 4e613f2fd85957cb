package mapping

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/models"
)

// ToModelClient converts a domain Client to a model Client
func ToModelClient(d domain.Client) models.Client {
	return models.Client{
		ClientID:      d.ClientID,
		BusinessName:  d.BusinessName,
		VATNumber:     d.VATNumber,
		TaxCode:       d.TaxCode,
		Address:       d.Address,
		ZipCode:       d.ZipCode,
		City:          d.City,
		Province:      d.Province,
		Country:       d.Country,
		Email:         d.Email,
		PEC:           d.PEC,
		Phone:         d.Phone,
		RecipientCode: d.RecipientCode,
		SplitPayment:  d.SplitPayment,
		Notes:         d.Notes,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainClient converts a model Client to a domain Client
func ToDomainClient(m models.Client) domain.Client {
	return domain.Client{
		ClientID:      m.ClientID,
		BusinessName:  m.BusinessName,
		VATNumber:     m.VATNumber,
		TaxCode:       m.TaxCode,
		Address:       m.Address,
		ZipCode:       m.ZipCode,
		City:          m.City,
		Province:      m.Province,
		Country:       m.Country,
		Email:         m.Email,
		PEC:           m.PEC,
		Phone:         m.Phone,
		RecipientCode: m.RecipientCode,
		SplitPayment:  m.SplitPayment,
		Notes:         m.Notes,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelProduct converts a domain Product to a model Product
func ToModelProduct(d domain.Product) models.Product {
	return models.Product{
		ProductID:     d.ProductID,
		Name:          d.Name,
		Description:   d.Description,
		Category:      string(d.Category),
		Price:         d.Price,
		UnitOfMeasure: d.UnitOfMeasure,
		VATCode:       d.VATCode,
		VATRate:       d.VATRate,
		Active:        d.Active,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProduct converts a model Product to a domain Product
func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID:     m.ProductID,
		Name:          m.Name,
		Description:   m.Description,
		Category:      domain.ProductCategory(m.Category),
		Price:         m.Price,
		UnitOfMeasure: m.UnitOfMeasure,
		VATCode:       m.VATCode,
		VATRate:       m.VATRate,
		Active:        m.Active,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
