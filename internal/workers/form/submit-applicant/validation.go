package submitapplicant

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"sessionId", "applicant"},
		"properties": map[string]interface{}{
			"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
			"applicant": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"customerType": map[string]interface{}{"type": "string"},
					"companyName":  map[string]interface{}{"type": "string"},
					"firstName":    map[string]interface{}{"type": "string"},
					"lastName":     map[string]interface{}{"type": "string"},
					"street":       map[string]interface{}{"type": "string"},
					"houseNumber":  map[string]interface{}{"type": "string"},
					"zipCode":      map[string]interface{}{"type": "string"},
					"city":         map[string]interface{}{"type": "string"},
					"phone":        map[string]interface{}{"type": "string"},
					"email":        map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}
