package models

// Purpose and legal-interest selector values as presented in the form.
const (
	PurposeBauantrag    = "bauantrag"
	PurposeGutachten    = "gutachten"
	PurposeFinanzierung = "finanzierung"
	PurposeKauf         = "kauf"
	PurposeSonstiges    = "sonstiges"

	InterestEigentuemer        = "eigentuemer"
	InterestVollmachtVorhanden = "vollmacht_vorhanden"
	InterestVollmachtFehlt     = "vollmacht_fehlt"
	InterestKauf               = "kauf"
	InterestErbbau             = "erbbau"
	InterestErbe               = "erbe"
	InterestSonstiges          = "sonstiges"
)

// Free-text caps for the "sonstiges" overrides.
const (
	OtherPurposeMaxLen  = 80
	OtherInterestMaxLen = 255
)

// ApplicationDetails carries the document preferences and the legal
// justification collected on the details step.
type ApplicationDetails struct {
	CertifiedExtract bool   `json:"certifiedExtract"`
	OwnerProofOnMap  bool   `json:"ownerProofOnMap"`
	Purpose          string `json:"purpose"`
	OtherPurpose     string `json:"otherPurpose,omitempty"`
	LegalInterest    string `json:"legalInterest"`
	OtherInterest    string `json:"otherInterest,omitempty"`
	ProofDeferred    bool   `json:"proofDeferred"`
	ProofFilename    string `json:"proofFilename,omitempty"`
}

// InterestRequiresProof reports whether the chosen legal interest expects a
// supporting document upload or an explicit deferral.
func (d ApplicationDetails) InterestRequiresProof() bool {
	switch d.LegalInterest {
	case InterestVollmachtVorhanden, InterestKauf, InterestErbbau, InterestErbe:
		return true
	}
	return false
}

// EffectivePurpose resolves the selector to the stored value, substituting
// the free text when "sonstiges" is chosen.
func (d ApplicationDetails) EffectivePurpose() string {
	if d.Purpose == PurposeSonstiges {
		return d.OtherPurpose
	}
	return d.Purpose
}

// EffectiveInterest resolves the selector like EffectivePurpose.
func (d ApplicationDetails) EffectiveInterest() string {
	if d.LegalInterest == InterestSonstiges {
		return d.OtherInterest
	}
	return d.LegalInterest
}
