// internal/workers/checkout/index-order/models.go
package indexorder

type Input struct {
	OrderID string `json:"orderId"`
}

type Output struct {
	OrderID   string `json:"orderId"`
	Indexed   bool   `json:"indexed"`
	IndexedAt string `json:"indexedAt"` // ISO 8601
}

func inputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"orderId"},
		"properties": map[string]interface{}{
			"orderId": map[string]interface{}{"type": "string", "minLength": 1},
		},
	}
}
