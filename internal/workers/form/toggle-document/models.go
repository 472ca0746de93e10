// internal/workers/form/toggle-document/models.go
package toggledocument

type Input struct {
	SessionID  string `json:"sessionId"`
	DocumentID string `json:"documentId"`
}

type Output struct {
	Selected       bool     `json:"selected"`
	DocumentIDs    []string `json:"documentIds"`
	TotalCents     int64    `json:"totalCents"`
	TotalFormatted string   `json:"totalFormatted"`
}

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"sessionId", "documentId"},
		"properties": map[string]interface{}{
			"sessionId":  map[string]interface{}{"type": "string", "minLength": 1},
			"documentId": map[string]interface{}{"type": "string", "minLength": 1},
		},
	}
}
