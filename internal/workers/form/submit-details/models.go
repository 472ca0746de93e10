// internal/workers/form/submit-details/models.go
package submitdetails

import "grundbuch-workers/internal/models"

type Input struct {
	SessionID string                    `json:"sessionId"`
	Details   models.ApplicationDetails `json:"details"`
}

type Output struct {
	Step         string `json:"step"`
	ScrollAnchor string `json:"scrollAnchor"`
}
