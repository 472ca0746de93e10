package wizard

import (
	"testing"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func validProperty() models.PropertyInput {
	return models.PropertyInput{
		Street:      "Hauptstraße",
		HouseNumber: "12",
		PostalCode:  "10115",
		City:        "Berlin",
	}
}

func validApplicant() models.Applicant {
	return models.Applicant{
		CustomerType: models.CustomerTypePrivate,
		FirstName:    "Maria",
		LastName:     "Schneider",
		Street:       "Hauptstraße",
		HouseNumber:  "12",
		ZipCode:      "10115",
		City:         "Berlin",
		Email:        "maria@example.de",
	}
}

func validFinal() models.FinalInput {
	return models.FinalInput{
		TermsAccepted:       true,
		CorrectnessAccepted: true,
		SignatureData:       "data:image/png;base64,iVBORw0KGgo=",
		PaymentMethod:       "card",
	}
}

func sessionAt(t *testing.T, step models.FormStep) *models.FormSession {
	t.Helper()
	s := NewSession("test-session")

	if step == models.StepProperty {
		return s
	}
	_, err := SubmitProperty(s, validProperty())
	require.NoError(t, err)
	if step == models.StepDocuments {
		return s
	}
	_, err = SubmitDetails(s, models.ApplicationDetails{
		Purpose:       models.PurposeFinanzierung,
		LegalInterest: models.InterestEigentuemer,
	})
	require.NoError(t, err)
	if step == models.StepApplicant {
		return s
	}
	_, _, err = SubmitApplicant(s, validApplicant())
	require.NoError(t, err)
	return s
}

func errCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok, "expected StandardError, got %T", err)
	return stdErr.Code
}

// ==========================
// Session Setup
// ==========================

func TestNewSession_Defaults(t *testing.T) {
	s := NewSession("")

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, models.StepProperty, s.Step)
	assert.Len(t, s.Selection, 2)
	assert.Equal(t, int64(5980), s.TotalCents())
}

// ==========================
// Property Step
// ==========================

func TestSubmitProperty(t *testing.T) {
	t.Run("valid input advances and anchors the documents section", func(t *testing.T) {
		s := NewSession("")
		res, err := SubmitProperty(s, validProperty())

		require.NoError(t, err)
		assert.Equal(t, models.StepDocuments, res.Step)
		assert.Equal(t, AnchorDocumentSelection, res.ScrollAnchor)
	})

	t.Run("missing required presence fails", func(t *testing.T) {
		s := NewSession("")
		input := validProperty()
		input.HouseNumber = ""

		_, err := SubmitProperty(s, input)
		assert.Equal(t, errors.ErrCodeFormValidationFailed, errCode(t, err))
		assert.Equal(t, models.StepProperty, s.Step)
	})

	t.Run("empty city never blocks progression", func(t *testing.T) {
		s := NewSession("")
		input := validProperty()
		input.City = ""

		_, err := SubmitProperty(s, input)
		assert.NoError(t, err)
	})

	t.Run("postal code edit bumps the lookup version", func(t *testing.T) {
		s := NewSession("")
		_, err := SubmitProperty(s, validProperty())
		require.NoError(t, err)
		v := s.LookupVersion

		input := validProperty()
		input.PostalCode = "80331"
		_, err = SubmitProperty(s, input)
		require.NoError(t, err)
		assert.Equal(t, v+1, s.LookupVersion)
	})

	t.Run("resubmitting does not regress a later step", func(t *testing.T) {
		s := sessionAt(t, models.StepApplicant)

		_, err := SubmitProperty(s, validProperty())
		require.NoError(t, err)
		assert.Equal(t, models.StepApplicant, s.Step)
	})
}

// ==========================
// Document Toggle
// ==========================

func TestToggleDocument(t *testing.T) {
	t.Run("before property step is rejected", func(t *testing.T) {
		s := NewSession("")
		err := ToggleDocument(s, "bebauungsplan")
		assert.Equal(t, errors.ErrCodeStepOrderViolation, errCode(t, err))
	})

	t.Run("unknown id is rejected", func(t *testing.T) {
		s := sessionAt(t, models.StepDocuments)
		err := ToggleDocument(s, "flurkarte")
		assert.Equal(t, errors.ErrCodeUnknownDocument, errCode(t, err))
	})

	t.Run("toggle twice restores the selection", func(t *testing.T) {
		s := sessionAt(t, models.StepDocuments)
		before := s.TotalCents()

		require.NoError(t, ToggleDocument(s, "bebauungsplan"))
		assert.Equal(t, before+1990, s.TotalCents())

		require.NoError(t, ToggleDocument(s, "bebauungsplan"))
		assert.Equal(t, before, s.TotalCents())
	})
}

// ==========================
// Details Step
// ==========================

func TestSubmitDetails(t *testing.T) {
	t.Run("lenient on empty selectors", func(t *testing.T) {
		s := sessionAt(t, models.StepDocuments)
		res, err := SubmitDetails(s, models.ApplicationDetails{})

		require.NoError(t, err)
		assert.Equal(t, models.StepApplicant, res.Step)
		assert.Equal(t, AnchorApplicantForm, res.ScrollAnchor)
	})

	t.Run("sonstiges without free text fails", func(t *testing.T) {
		s := sessionAt(t, models.StepDocuments)
		_, err := SubmitDetails(s, models.ApplicationDetails{Purpose: models.PurposeSonstiges})
		assert.Equal(t, errors.ErrCodeFormValidationFailed, errCode(t, err))
	})

	t.Run("overlong free text is truncated to the cap", func(t *testing.T) {
		s := sessionAt(t, models.StepDocuments)
		long := make([]byte, 120)
		for i := range long {
			long[i] = 'x'
		}

		_, err := SubmitDetails(s, models.ApplicationDetails{
			Purpose:      models.PurposeSonstiges,
			OtherPurpose: string(long),
		})
		require.NoError(t, err)
		assert.Len(t, s.Details.OtherPurpose, 80)
	})

	t.Run("before property step is rejected", func(t *testing.T) {
		s := NewSession("")
		_, err := SubmitDetails(s, models.ApplicationDetails{})
		assert.Equal(t, errors.ErrCodeStepOrderViolation, errCode(t, err))
	})
}

// ==========================
// Applicant Step
// ==========================

func TestSubmitApplicant(t *testing.T) {
	t.Run("valid applicant advances to final", func(t *testing.T) {
		s := sessionAt(t, models.StepApplicant)
		res, errs, err := SubmitApplicant(s, validApplicant())

		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, models.StepFinal, res.Step)
		assert.Equal(t, AnchorFinalSection, res.ScrollAnchor)
	})

	t.Run("business without company name fails on companyName", func(t *testing.T) {
		s := sessionAt(t, models.StepApplicant)
		a := validApplicant()
		a.CustomerType = models.CustomerTypeBusiness

		_, errs, err := SubmitApplicant(s, a)
		assert.Error(t, err)
		assert.True(t, errs["companyName"].HasError)
		assert.Equal(t, models.StepApplicant, s.Step)
	})

	t.Run("out of order is rejected", func(t *testing.T) {
		s := sessionAt(t, models.StepDocuments)
		_, _, err := SubmitApplicant(s, validApplicant())
		assert.Equal(t, errors.ErrCodeStepOrderViolation, errCode(t, err))
	})
}

// ==========================
// Finalize
// ==========================

func TestFinalize(t *testing.T) {
	t.Run("consents and signature produce a pending order", func(t *testing.T) {
		s := sessionAt(t, models.StepFinal)
		order, err := Finalize(s, validFinal())

		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
		assert.Equal(t, s.ID, order.SessionID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
		assert.Equal(t, int64(5980), order.TotalAmountCents)
		assert.Equal(t, []string{"Grundbuchauszug", "Liegenschaftskarte"}, order.DocumentNames())
		assert.Equal(t, models.StepSubmitted, s.Step)
		assert.Equal(t, order.ID, s.OrderID)
	})

	t.Run("missing consent is rejected", func(t *testing.T) {
		s := sessionAt(t, models.StepFinal)
		final := validFinal()
		final.CorrectnessAccepted = false

		_, err := Finalize(s, final)
		assert.Equal(t, errors.ErrCodeConsentMissing, errCode(t, err))
	})

	t.Run("empty signature is rejected", func(t *testing.T) {
		s := sessionAt(t, models.StepFinal)
		final := validFinal()
		final.SignatureData = ""

		_, err := Finalize(s, final)
		assert.Equal(t, errors.ErrCodeSignatureMissing, errCode(t, err))
	})

	t.Run("before applicant step is rejected", func(t *testing.T) {
		s := sessionAt(t, models.StepApplicant)
		_, err := Finalize(s, validFinal())
		assert.Equal(t, errors.ErrCodeStepOrderViolation, errCode(t, err))
	})
}

// ==========================
// City Lookup Guard
// ==========================

func TestApplyCityLookup(t *testing.T) {
	t.Run("matching code and version applies", func(t *testing.T) {
		s := NewSession("")
		_, err := SubmitProperty(s, validProperty())
		require.NoError(t, err)

		applied := ApplyCityLookup(s, "10115", "Berlin Mitte", s.LookupVersion)
		assert.True(t, applied)
		assert.Equal(t, "Berlin Mitte", s.Property.City)
	})

	t.Run("stale version is dropped", func(t *testing.T) {
		s := NewSession("")
		_, err := SubmitProperty(s, validProperty())
		require.NoError(t, err)
		stale := s.LookupVersion

		input := validProperty()
		input.PostalCode = "80331"
		input.City = ""
		_, err = SubmitProperty(s, input)
		require.NoError(t, err)

		applied := ApplyCityLookup(s, "10115", "Berlin", stale)
		assert.False(t, applied)
		assert.Empty(t, s.Property.City)
	})
}

// ==========================
// End To End
// ==========================

func TestWizard_EndToEnd(t *testing.T) {
	s := NewSession("")

	res, err := SubmitProperty(s, validProperty())
	require.NoError(t, err)
	assert.Equal(t, models.StepDocuments, res.Step)

	// Deselect both defaults: final step must total 0.00.
	require.NoError(t, ToggleDocument(s, "grundbuchauszug"))
	require.NoError(t, ToggleDocument(s, "liegenschaftskarte"))
	assert.Equal(t, int64(0), s.TotalCents())

	_, err = SubmitDetails(s, models.ApplicationDetails{
		Purpose:       models.PurposeKauf,
		LegalInterest: models.InterestKauf,
		ProofDeferred: true,
	})
	require.NoError(t, err)

	_, _, err = SubmitApplicant(s, validApplicant())
	require.NoError(t, err)

	order, err := Finalize(s, validFinal())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, int64(0), order.TotalAmountCents)
	assert.Equal(t, "0.00", order.FormatTotal())
	assert.Empty(t, order.DocumentNames())
}
