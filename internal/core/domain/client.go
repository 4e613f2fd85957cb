package domain

// Client is an invoice recipient.
type Client struct {
	ClientID      string  `json:"clientID"`
	BusinessName  string  `json:"businessName"`
	VATNumber     *string `json:"vatNumber,omitempty"` // partita IVA
	TaxCode       *string `json:"taxCode,omitempty"`   // codice fiscale
	Address       string  `json:"address"`
	ZipCode       string  `json:"zipCode"`
	City          string  `json:"city"`
	Province      string  `json:"province"`
	Country       string  `json:"country"`
	Email         *string `json:"email,omitempty"`
	PEC           *string `json:"pec,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	RecipientCode *string `json:"recipientCode,omitempty"` // codice destinatario SDI
	SplitPayment  bool    `json:"splitPayment"`
	Notes         string  `json:"notes,omitempty"`
	AuditFields
}
