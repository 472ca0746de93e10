// Package search indexes completed orders into Elasticsearch for support
// lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/common/observability"
	"grundbuch-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const DefaultOrderIndex = "orders"

// OrderIndexer writes a flattened order document per order id. Indexing is
// idempotent: re-indexing the same id overwrites the prior document.
type OrderIndexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewOrderIndexer(client *elasticsearch.Client, index string, log logger.Logger) *OrderIndexer {
	if index == "" {
		index = DefaultOrderIndex
	}
	return &OrderIndexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "order-indexer"}),
	}
}

// orderDocument excludes the signature blob from the index.
type orderDocument struct {
	OrderID          string    `json:"orderId"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	CompanyName      string    `json:"companyName,omitempty"`
	Street           string    `json:"street"`
	HouseNumber      string    `json:"houseNumber"`
	PostalCode       string    `json:"postalCode"`
	City             string    `json:"city"`
	DocumentIDs      []string  `json:"documentIds"`
	DocumentNames    []string  `json:"documentNames"`
	TotalAmountCents int64     `json:"totalAmountCents"`
	Status           string    `json:"status"`
	PaymentMethod    string    `json:"paymentMethod"`
	CreatedAt        time.Time `json:"createdAt"`
	IndexedAt        time.Time `json:"indexedAt"`
}

// orderMapping keys the searchable fields; everything else stays dynamic.
const orderMapping = `{
	"mappings": {
		"properties": {
			"orderId":          {"type": "keyword"},
			"email":            {"type": "keyword"},
			"lastName":         {"type": "text"},
			"postalCode":       {"type": "keyword"},
			"documentIds":      {"type": "keyword"},
			"status":           {"type": "keyword"},
			"paymentMethod":    {"type": "keyword"},
			"totalAmountCents": {"type": "long"},
			"createdAt":        {"type": "date"}
		}
	}
}`

// EnsureIndex creates the order index with its mapping when missing.
func (i *OrderIndexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists(
		[]string{i.index},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", i.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = i.client.Indices.Create(
		i.index,
		i.client.Indices.Create.WithBody(strings.NewReader(orderMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, res.Status())
	}

	i.logger.Info("order index created", map[string]interface{}{"index": i.index})
	return nil
}

// IndexOrder writes the order into the configured index.
func (i *OrderIndexer) IndexOrder(ctx context.Context, order *models.Order) error {
	ctx, span := observability.StartSpan(ctx, "search.IndexOrder")
	defer span.End()

	ids := make([]string, len(order.SelectedDocuments))
	for n, d := range order.SelectedDocuments {
		ids[n] = d.ID
	}

	doc := orderDocument{
		OrderID:          order.ID,
		Email:            order.Email,
		FirstName:        order.FirstName,
		LastName:         order.LastName,
		CompanyName:      order.CompanyName,
		Street:           order.Street,
		HouseNumber:      order.HouseNumber,
		PostalCode:       order.PostalCode,
		City:             order.City,
		DocumentIDs:      ids,
		DocumentNames:    order.DocumentNames(),
		TotalAmountCents: order.TotalAmountCents,
		Status:           string(order.Status),
		PaymentMethod:    string(order.PaymentMethod),
		CreatedAt:        order.CreatedAt,
		IndexedAt:        time.Now().UTC(),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewOrderIndexFailedError(order.ID, err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(order.ID),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithRefresh("false"),
	)
	if err != nil {
		observability.RecordError(ctx, err)
		return errors.NewOrderIndexFailedError(order.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewOrderIndexFailedError(order.ID, fmt.Errorf("index response: %s", res.Status()))
	}

	i.logger.Info("order indexed", map[string]interface{}{
		"orderId": order.ID,
		"index":   i.index,
	})
	return nil
}
