package dto

// CreateClientRequest defines the data needed to register a client.
type CreateClientRequest struct {
	BusinessName  string  `json:"businessName" binding:"required,max=200"`
	VATNumber     *string `json:"vatNumber" binding:"omitempty,partitaiva"`
	TaxCode       *string `json:"taxCode" binding:"omitempty,codicefiscale"`
	Address       string  `json:"address" binding:"max=200"`
	ZipCode       string  `json:"zipCode" binding:"omitempty,len=5,numeric"`
	City          string  `json:"city" binding:"max=100"`
	Province      string  `json:"province" binding:"omitempty,len=2,alpha"`
	Country       string  `json:"country" binding:"omitempty,len=2,alpha"`
	Email         *string `json:"email" binding:"omitempty,email"`
	PEC           *string `json:"pec" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=30"`
	RecipientCode *string `json:"recipientCode" binding:"omitempty,len=7,alphanum"`
	SplitPayment  bool    `json:"splitPayment"`
	Notes         string  `json:"notes" binding:"max=2000"`
}

// UpdateClientRequest edits a client. Nil fields are left unchanged.
type UpdateClientRequest struct {
	BusinessName  *string `json:"businessName" binding:"omitempty,max=200"`
	VATNumber     *string `json:"vatNumber" binding:"omitempty,partitaiva"`
	TaxCode       *string `json:"taxCode" binding:"omitempty,codicefiscale"`
	Address       *string `json:"address" binding:"omitempty,max=200"`
	ZipCode       *string `json:"zipCode" binding:"omitempty,len=5,numeric"`
	City          *string `json:"city" binding:"omitempty,max=100"`
	Province      *string `json:"province" binding:"omitempty,len=2,alpha"`
	Country       *string `json:"country" binding:"omitempty,len=2,alpha"`
	Email         *string `json:"email" binding:"omitempty,email"`
	PEC           *string `json:"pec" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=30"`
	RecipientCode *string `json:"recipientCode" binding:"omitempty,len=7,alphanum"`
	SplitPayment  *bool   `json:"splitPayment"`
	Notes         *string `json:"notes" binding:"omitempty,max=2000"`
}
