package domain

import "github.com/shopspring/decimal"

// ProductCategory groups the shop's catalogue.
type ProductCategory string

const (
	CategorySpiedo      ProductCategory = "Spiedo"
	CategoryPezzi       ProductCategory = "Pezzi"
	CategoryGastronomia ProductCategory = "Gastronomia"
	CategoryContorni    ProductCategory = "Contorni"
	CategoryBevande     ProductCategory = "Bevande"
)

// ProductCategories lists categories in display order.
var ProductCategories = []ProductCategory{
	CategorySpiedo,
	CategoryPezzi,
	CategoryGastronomia,
	CategoryContorni,
	CategoryBevande,
}

// IsValid reports whether c is a known category.
func (c ProductCategory) IsValid() bool {
	for _, known := range ProductCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a catalogue item used to prefill invoice lines.
type Product struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Category      ProductCategory `json:"category"`
	Price         decimal.Decimal `json:"price"`
	UnitOfMeasure string          `json:"unitOfMeasure"`
	VATCode       string          `json:"vatCode"`
	VATRate       decimal.Decimal `json:"vatRate"`
	Active        bool            `json:"active"`
	AuditFields
}

// ProductGroup is the active products of one category.
type ProductGroup struct {
	Category ProductCategory `json:"category"`
	Products []Product       `json:"products"`
}

// DefaultProducts is the starter catalogue seeded on a fresh install.
func DefaultProducts() []Product {
	p := func(name, description string, cat ProductCategory, price, uom string) Product {
		return Product{
			Name:          name,
			Description:   description,
			Category:      cat,
			Price:         decimal.RequireFromString(price),
			UnitOfMeasure: uom,
			VATCode:       "10V",
			VATRate:       decimal.NewFromInt(10),
			Active:        true,
		}
	}
	return []Product{
		p("Pollo intero allo spiedo", "Pollo intero cotto allo spiedo con spezie", CategorySpiedo, "8.50", "pz"),
		p("Mezzo pollo", "Mezza porzione di pollo allo spiedo", CategorySpiedo, "4.50", "pz"),
		p("Cosce di pollo (2 pz)", "Due cosce di pollo", CategoryPezzi, "3.00", "pz"),
		p("Ali di pollo (4 pz)", "Quattro ali di pollo", CategoryPezzi, "2.50", "pz"),
		p("Petto di pollo", "Petto di pollo grigliato", CategoryPezzi, "4.00", "pz"),
		p("Arancini di pollo", "Arancini siciliani con pollo", CategoryGastronomia, "1.50", "pz"),
		p("Supplì", "Supplì romani al telefono", CategoryGastronomia, "1.00", "pz"),
		p("Panelle (2 pz)", "Panelle siciliane fritte", CategoryGastronomia, "0.50", "pz"),
		p("Patatine fritte", "Porzione di patatine fritte", CategoryContorni, "2.00", "porzione"),
	}
}
