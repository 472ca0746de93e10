package submitdetails

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"sessionId", "details"},
		"properties": map[string]interface{}{
			"sessionId": map[string]interface{}{"type": "string", "minLength": 1},
			"details": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"certifiedExtract": map[string]interface{}{"type": "boolean"},
					"ownerProofOnMap":  map[string]interface{}{"type": "boolean"},
					"purpose":          map[string]interface{}{"type": "string"},
					"otherPurpose":     map[string]interface{}{"type": "string"},
					"legalInterest":    map[string]interface{}{"type": "string"},
					"otherInterest":    map[string]interface{}{"type": "string"},
					"proofDeferred":    map[string]interface{}{"type": "boolean"},
					"proofFilename":    map[string]interface{}{"type": "string"},
				},
			},
		},
	}
}
