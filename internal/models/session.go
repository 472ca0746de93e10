package models

import "time"

// FormStep identifies the wizard stage a session has reached.
type FormStep string

const (
	StepProperty  FormStep = "property"
	StepDocuments FormStep = "documents"
	StepApplicant FormStep = "applicant"
	StepFinal     FormStep = "final"
	StepSubmitted FormStep = "submitted"
)

// PropertyInput is the address entered on the first step. City is filled by
// the postcode lookup when available. Sheet, parcel and district are
// optional registry references.
type PropertyInput struct {
	Street            string `json:"street"`
	HouseNumber       string `json:"houseNumber"`
	PostalCode        string `json:"postalCode"`
	City              string `json:"city,omitempty"`
	SheetNumber       string `json:"sheetNumber,omitempty"`
	FieldParcelNumber string `json:"fieldParcelNumber,omitempty"`
	District          string `json:"district,omitempty"`
	Remark            string `json:"remark,omitempty"`
}

// FinalInput carries the consents and signature collected on the last step.
type FinalInput struct {
	TermsAccepted       bool   `json:"termsAccepted"`
	CorrectnessAccepted bool   `json:"correctnessAccepted"`
	SignatureData       string `json:"signatureData"`
	PaymentMethod       string `json:"paymentMethod"`
}

// FormSession is the explicit shared state of one wizard run. It is passed
// between workers through the session store, never held in process.
type FormSession struct {
	ID   string   `json:"id"`
	Step FormStep `json:"step"`

	Property  PropertyInput      `json:"property"`
	Selection []Document         `json:"selection"`
	Details   ApplicationDetails `json:"details"`
	Applicant Applicant          `json:"applicant"`
	Final     FinalInput         `json:"final"`

	// LookupVersion increments on every postal-code edit so a slow lookup
	// response cannot overwrite a newer code's city.
	LookupVersion int64 `json:"lookupVersion"`

	OrderID string `json:"orderId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StepReached reports whether the session has passed the given step.
func (s *FormSession) StepReached(step FormStep) bool {
	return stepIndex(s.Step) >= stepIndex(step)
}

func stepIndex(step FormStep) int {
	switch step {
	case StepProperty:
		return 0
	case StepDocuments:
		return 1
	case StepApplicant:
		return 2
	case StepFinal:
		return 3
	case StepSubmitted:
		return 4
	default:
		return -1
	}
}

// TotalCents sums the selected document prices.
func (s *FormSession) TotalCents() int64 {
	var total int64
	for _, d := range s.Selection {
		total += d.PriceCents
	}
	return total
}
