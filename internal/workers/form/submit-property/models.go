// internal/workers/form/submit-property/models.go
package submitproperty

import "grundbuch-workers/internal/models"

type Input struct {
	SessionID string               `json:"sessionId"`
	Property  models.PropertyInput `json:"property"`
}

type Output struct {
	SessionID     string `json:"sessionId"`
	Step          string `json:"step"`
	ScrollAnchor  string `json:"scrollAnchor"`
	LookupVersion int64  `json:"lookupVersion"`
	PostalCode    string `json:"postalCode"`
}
