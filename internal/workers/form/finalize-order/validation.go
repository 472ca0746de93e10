package finalizeorder

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"sessionId", "final"},
		"properties": map[string]interface{}{
			"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
			"final": map[string]interface{}{
				"type":     "object",
				"required": []string{"termsAccepted", "correctnessAccepted"},
				"properties": map[string]interface{}{
					"termsAccepted":       map[string]interface{}{"type": "boolean"},
					"correctnessAccepted": map[string]interface{}{"type": "boolean"},
					"signatureData":       map[string]interface{}{"type": "string"},
					"paymentMethod": map[string]interface{}{
						"type": "string",
						"enum": []string{"card", "paypal", "bank"},
					},
				},
			},
		},
	}
}
