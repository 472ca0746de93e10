// internal/workers/form/submit-applicant/models.go
package submitapplicant

import (
	"grundbuch-workers/internal/form/validate"
	"grundbuch-workers/internal/models"
)

type Input struct {
	SessionID string           `json:"sessionId"`
	Applicant models.Applicant `json:"applicant"`
}

type Output struct {
	Step         string                         `json:"step"`
	ScrollAnchor string                         `json:"scrollAnchor"`
	FieldErrors  map[string]validate.FieldError `json:"fieldErrors,omitempty"`
}
