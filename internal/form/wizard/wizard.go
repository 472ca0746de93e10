// Package wizard sequences the four intake steps over an explicit session
// object. Steps only advance when the preceding step has passed; editing an
// already-passed step overwrites its record without invalidating later
// steps.
package wizard

import (
	"strings"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/form/selection"
	"grundbuch-workers/internal/form/validate"
	"grundbuch-workers/internal/models"

	"github.com/google/uuid"
)

// Scroll anchors returned with each transition so the caller can bring the
// newly revealed section into view.
const (
	AnchorDocumentSelection = "document-selection"
	AnchorApplicantForm     = "applicant-form"
	AnchorFinalSection      = "final-section"
)

// StepResult reports a successful transition.
type StepResult struct {
	Step         models.FormStep `json:"step"`
	ScrollAnchor string          `json:"scrollAnchor,omitempty"`
}

// NewSession starts a wizard run with the default document selection.
func NewSession(id string) *models.FormSession {
	now := time.Now().UTC()
	if id == "" {
		id = uuid.New().String()
	}
	return &models.FormSession{
		ID:        id,
		Step:      models.StepProperty,
		Selection: selection.NewDefaultSet().Documents(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SubmitProperty records the property address. Only native required
// presence is checked; the city is enrichment from the postcode lookup and
// never gates progression.
func SubmitProperty(s *models.FormSession, input models.PropertyInput) (*StepResult, error) {
	var missing []string
	if strings.TrimSpace(input.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(input.HouseNumber) == "" {
		missing = append(missing, "houseNumber")
	}
	if strings.TrimSpace(input.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}
	if len(missing) > 0 {
		return nil, errors.NewFormValidationFailedError("missing: " + strings.Join(missing, ", "))
	}

	if input.PostalCode != s.Property.PostalCode {
		s.LookupVersion++
	}
	s.Property = input
	if !s.StepReached(models.StepDocuments) {
		s.Step = models.StepDocuments
	}
	s.UpdatedAt = time.Now().UTC()

	return &StepResult{Step: s.Step, ScrollAnchor: AnchorDocumentSelection}, nil
}

// ToggleDocument flips a catalog document in the session's selection.
// Allowed once the documents step is reached.
func ToggleDocument(s *models.FormSession, documentID string) error {
	if !s.StepReached(models.StepDocuments) {
		return errors.NewStepOrderViolationError("document selection before property step")
	}

	doc, ok := selection.Lookup(documentID)
	if !ok {
		return errors.NewUnknownDocumentError(documentID)
	}

	set := selection.NewSetFrom(s.Selection)
	set.Toggle(doc)
	s.Selection = set.Documents()
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SubmitDetails records the application details. Selectors stay lenient,
// only the "sonstiges" free-text invariants are enforced.
func SubmitDetails(s *models.FormSession, details models.ApplicationDetails) (*StepResult, error) {
	if !s.StepReached(models.StepDocuments) {
		return nil, errors.NewStepOrderViolationError("details before property step")
	}

	details.OtherPurpose = validate.TruncateOtherPurpose(details.OtherPurpose)
	details.OtherInterest = validate.TruncateOtherInterest(details.OtherInterest)

	if ok, errs := validate.Details(details); !ok {
		return nil, errors.NewFormValidationFailedError(joinFieldErrors(errs))
	}

	s.Details = details
	if !s.StepReached(models.StepApplicant) {
		s.Step = models.StepApplicant
	}
	s.UpdatedAt = time.Now().UTC()

	return &StepResult{Step: s.Step, ScrollAnchor: AnchorApplicantForm}, nil
}

// SubmitApplicant records the applicant identity, gated by the whole-form
// check.
func SubmitApplicant(s *models.FormSession, applicant models.Applicant) (*StepResult, map[string]validate.FieldError, error) {
	if !s.StepReached(models.StepApplicant) {
		return nil, nil, errors.NewStepOrderViolationError("applicant before details step")
	}

	ok, errs := validate.Applicant(applicant)
	if !ok {
		return nil, errs, errors.NewFormValidationFailedError(joinFieldErrors(errs))
	}

	s.Applicant = applicant
	if !s.StepReached(models.StepFinal) {
		s.Step = models.StepFinal
	}
	s.UpdatedAt = time.Now().UTC()

	return &StepResult{Step: s.Step, ScrollAnchor: AnchorFinalSection}, errs, nil
}

// Finalize checks consents and signature, builds the pending Order draft
// and moves the session to submitted. The order's timestamps and
// persistence are the store's concern.
func Finalize(s *models.FormSession, final models.FinalInput) (*models.Order, error) {
	if !s.StepReached(models.StepFinal) {
		return nil, errors.NewStepOrderViolationError("finalize before applicant step")
	}

	if !final.TermsAccepted || !final.CorrectnessAccepted {
		return nil, errors.NewConsentMissingError("terms and correctness must both be accepted")
	}
	if strings.TrimSpace(final.SignatureData) == "" {
		return nil, errors.NewSignatureMissingError()
	}

	s.Final = final
	s.Step = models.StepSubmitted
	s.UpdatedAt = time.Now().UTC()

	order := &models.Order{
		ID:        uuid.New().String(),
		SessionID: s.ID,

		Email:       s.Applicant.Email,
		FirstName:   s.Applicant.FirstName,
		LastName:    s.Applicant.LastName,
		Phone:       s.Applicant.Phone,
		CompanyName: s.Applicant.CompanyName,

		Street:            s.Property.Street,
		HouseNumber:       s.Property.HouseNumber,
		PostalCode:        s.Property.PostalCode,
		City:              s.Property.City,
		SheetNumber:       s.Property.SheetNumber,
		FieldParcelNumber: s.Property.FieldParcelNumber,
		District:          s.Property.District,

		SelectedDocuments:            append([]models.Document(nil), s.Selection...),
		CertifiedGrundbuchauszug:     s.Details.CertifiedExtract,
		OwnerProofLiegenschaftskarte: s.Details.OwnerProofOnMap,

		DocumentPurpose: s.Details.EffectivePurpose(),
		LegalInterest:   s.Details.EffectiveInterest(),

		SignatureData:    final.SignatureData,
		TotalAmountCents: s.TotalCents(),
		Status:           models.OrderStatusPending,
		PaymentMethod:    models.PaymentMethod(final.PaymentMethod),
	}

	s.OrderID = order.ID
	return order, nil
}

// ApplyCityLookup writes a resolved city into the session only when the
// lookup still matches the stored postal code and version. Stale responses
// are dropped.
func ApplyCityLookup(s *models.FormSession, postalCode, city string, version int64) bool {
	if s.Property.PostalCode != postalCode || s.LookupVersion != version {
		return false
	}
	s.Property.City = city
	s.UpdatedAt = time.Now().UTC()
	return true
}

func joinFieldErrors(errs map[string]validate.FieldError) string {
	parts := make([]string, 0, len(errs))
	for field, fe := range errs {
		parts = append(parts, field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}
