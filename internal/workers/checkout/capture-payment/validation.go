package capturepayment

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"orderId", "paymentMethod"},
		"properties": map[string]interface{}{
			"orderId": map[string]interface{}{"type": "string", "minLength": 1},
			"paymentMethod": map[string]interface{}{
				"type": "string",
				"enum": []string{"card", "paypal", "bank"},
			},
			"card": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"number":   map[string]interface{}{"type": "string"},
					"expMonth": map[string]interface{}{"type": "integer"},
					"expYear":  map[string]interface{}{"type": "integer"},
					"cvc":      map[string]interface{}{"type": "string"},
					"holder":   map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}
