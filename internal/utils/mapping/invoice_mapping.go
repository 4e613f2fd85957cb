package mapping

import (
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice. Lines are mapped separately.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:      d.InvoiceID,
		Number:         d.Number,
		Year:           d.Year,
		ClientID:       d.ClientID,
		ClientName:     d.ClientName,
		Date:           d.Date,
		Subtotal:       d.Subtotal,
		VAT:            d.VAT,
		Total:          d.Total,
		Status:         string(d.Status),
		DocumentType:   d.DocumentType,
		FiscalRegime:   d.FiscalRegime,
		Reason:         d.Reason,
		Notes:          d.Notes,
		PaymentMethod:  d.PaymentMethod,
		PaymentDate:    d.PaymentDate,
		WithholdingTax: d.WithholdingTax,
		PensionFund:    d.PensionFund,
		RecipientCode:  d.RecipientCode,
		RecipientPEC:   d.RecipientPEC,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice and its lines to a domain Invoice
func ToDomainInvoice(m models.Invoice, lines []models.InvoiceLine) domain.Invoice {
	inv := domain.Invoice{
		InvoiceID:      m.InvoiceID,
		Number:         m.Number,
		Year:           m.Year,
		ClientID:       m.ClientID,
		ClientName:     m.ClientName,
		Date:           m.Date,
		Subtotal:       m.Subtotal,
		VAT:            m.VAT,
		Total:          m.Total,
		Status:         domain.InvoiceStatus(m.Status),
		DocumentType:   m.DocumentType,
		FiscalRegime:   m.FiscalRegime,
		Reason:         m.Reason,
		Notes:          m.Notes,
		PaymentMethod:  m.PaymentMethod,
		PaymentDate:    m.PaymentDate,
		WithholdingTax: m.WithholdingTax,
		PensionFund:    m.PensionFund,
		RecipientCode:  m.RecipientCode,
		RecipientPEC:   m.RecipientPEC,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if lines != nil {
		inv.Lines = make([]domain.InvoiceLine, len(lines))
		for i, l := range lines {
			inv.Lines[i] = ToDomainInvoiceLine(l)
		}
	}
	return inv
}

// ToModelInvoiceLine converts a domain InvoiceLine to a model InvoiceLine
func ToModelInvoiceLine(d domain.InvoiceLine) models.InvoiceLine {
	return models.InvoiceLine{
		LineID:          d.LineID,
		InvoiceID:       d.InvoiceID,
		Position:        d.Position,
		Description:     d.Description,
		Quantity:        d.Quantity,
		UnitOfMeasure:   d.UnitOfMeasure,
		UnitPrice:       d.UnitPrice,
		DiscountPercent: d.DiscountPercent,
		VATRate:         d.VATRate,
		VATCode:         d.VATCode,
		ProductID:       d.ProductID,
		LineTotal:       d.LineTotal,
	}
}

// ToDomainInvoiceLine converts a model InvoiceLine to a domain InvoiceLine
func ToDomainInvoiceLine(m models.InvoiceLine) domain.InvoiceLine {
	return domain.InvoiceLine{
		LineID:          m.LineID,
		InvoiceID:       m.InvoiceID,
		Position:        m.Position,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitOfMeasure:   m.UnitOfMeasure,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		VATRate:         m.VATRate,
		VATCode:         m.VATCode,
		ProductID:       m.ProductID,
		LineTotal:       m.LineTotal,
	}
}
