package submitproperty

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"property"},
		"properties": map[string]interface{}{
			"sessionId": map[string]interface{}{
				"type": "string",
			},
			"property": map[string]interface{}{
				"type":     "object",
				"required": []string{"street", "houseNumber", "postalCode"},
				"properties": map[string]interface{}{
					"street":            map[string]interface{}{"type": "string"},
					"houseNumber":       map[string]interface{}{"type": "string"},
					"postalCode":        map[string]interface{}{"type": "string"},
					"city":              map[string]interface{}{"type": "string"},
					"sheetNumber":       map[string]interface{}{"type": "string"},
					"fieldParcelNumber": map[string]interface{}{"type": "string"},
					"district":          map[string]interface{}{"type": "string"},
					"remark":            map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}
