package models

import "time"

// OrderStatus values. Transitions past "processing" belong to the payment
// and fulfilment collaborators.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
)

// PaymentMethod values offered at checkout.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPaypal PaymentMethod = "paypal"
	PaymentMethodBank   PaymentMethod = "bank"
)

// Order is the aggregate produced at final submission. Identity is immutable
// once created; only status and payment id change afterwards.
type Order struct {
	ID string `json:"id" db:"id"`

	// SessionID ties the order to the wizard session it came from. The
	// orders table enforces uniqueness on it, which is what keeps a
	// replayed finalize job from inserting twice.
	SessionID string `json:"sessionId" db:"session_id"`

	// Customer
	Email       string `json:"email" db:"email"`
	FirstName   string `json:"firstName" db:"first_name"`
	LastName    string `json:"lastName" db:"last_name"`
	Phone       string `json:"phone,omitempty" db:"phone"`
	CompanyName string `json:"companyName,omitempty" db:"company_name"`

	// Property
	Street            string `json:"street" db:"street"`
	HouseNumber       string `json:"houseNumber" db:"house_number"`
	PostalCode        string `json:"postalCode" db:"postal_code"`
	City              string `json:"city" db:"city"`
	SheetNumber       string `json:"sheetNumber,omitempty" db:"sheet_number"`
	FieldParcelNumber string `json:"fieldParcelNumber,omitempty" db:"field_parcel_number"`
	District          string `json:"district,omitempty" db:"district"`

	// Selection
	SelectedDocuments            []Document `json:"selectedDocuments" db:"selected_documents"`
	CertifiedGrundbuchauszug     bool       `json:"certifiedGrundbuchauszug" db:"certified_grundbuchauszug"`
	OwnerProofLiegenschaftskarte bool       `json:"ownerProofLiegenschaftskarte" db:"owner_proof_liegenschaftskarte"`

	// Purpose and interest (free-text overrides already resolved)
	DocumentPurpose string `json:"documentPurpose" db:"document_purpose"`
	LegalInterest   string `json:"legalInterest" db:"legal_interest"`

	// Signature and payment
	SignatureData    string        `json:"signatureData" db:"signature_data"`
	TotalAmountCents int64         `json:"totalAmountCents" db:"total_amount"`
	Status           OrderStatus   `json:"status" db:"status"`
	PaymentMethod    PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentID        string        `json:"paymentId,omitempty" db:"payment_id"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DocumentNames returns the selected document names in display order.
func (o *Order) DocumentNames() []string {
	names := make([]string, len(o.SelectedDocuments))
	for i, d := range o.SelectedDocuments {
		names[i] = d.Name
	}
	return names
}

// FormatTotal renders the order total with two decimals.
func (o *Order) FormatTotal() string {
	return FormatCents(o.TotalAmountCents)
}
