// internal/workers/form/lookup-city/models.go
package lookupcity

type Input struct {
	SessionID     string `json:"sessionId"`
	PostalCode    string `json:"postalCode"`
	LookupVersion int64  `json:"lookupVersion"`
}

type Output struct {
	City    string `json:"city"`
	Applied bool   `json:"applied"`
}

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"sessionId", "postalCode"},
		"properties": map[string]interface{}{
			"sessionId":     map[string]interface{}{"type": "string", "minLength": 1},
			"postalCode":    map[string]interface{}{"type": "string", "minLength": 1},
			"lookupVersion": map[string]interface{}{"type": "integer"},
		},
	}
}
