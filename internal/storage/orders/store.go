// Package orders persists finalized document-request orders.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"grundbuch-workers/internal/common/errors"
	"grundbuch-workers/internal/common/logger"
	"grundbuch-workers/internal/common/observability"
	"grundbuch-workers/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Store wraps the orders table. Next to every insert it writes an audit-log
// row; audit failures are logged, never fatal.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "orders-store"}),
	}
}

// Create inserts the draft with status pending. A missing id is generated;
// timestamps are set here. The orders table carries a unique constraint on
// session_id, so a replayed insert for the same session maps to
// DUPLICATE_ORDER instead of a second row.
func (s *Store) Create(ctx context.Context, draft *models.Order) (*models.Order, error) {
	ctx, span := observability.StartSpan(ctx, "orders.Create")
	defer span.End()

	order := *draft
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	documentsJSON, err := json.Marshal(order.SelectedDocuments)
	if err != nil {
		return nil, errors.NewOrderInsertFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, session_id, email, first_name, last_name, phone, company_name,
			street, house_number, postal_code, city,
			sheet_number, field_parcel_number, district,
			selected_documents, certified_grundbuchauszug, owner_proof_liegenschaftskarte,
			document_purpose, legal_interest,
			signature_data, total_amount, status, payment_method, payment_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $25)`,
		order.ID,
		order.SessionID,
		order.Email,
		order.FirstName,
		order.LastName,
		order.Phone,
		order.CompanyName,
		order.Street,
		order.HouseNumber,
		order.PostalCode,
		order.City,
		order.SheetNumber,
		order.FieldParcelNumber,
		order.District,
		documentsJSON,
		order.CertifiedGrundbuchauszug,
		order.OwnerProofLiegenschaftskarte,
		order.DocumentPurpose,
		order.LegalInterest,
		order.SignatureData,
		order.TotalAmountCents,
		string(order.Status),
		string(order.PaymentMethod),
		order.PaymentID,
		now,
	)
	if err != nil {
		observability.RecordError(ctx, err)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, errors.NewDuplicateOrderError(order.SessionID)
		}
		return nil, errors.NewOrderInsertFailedError(err)
	}

	s.writeAuditLog(ctx, "order_created", order.ID, map[string]interface{}{
		"totalAmountCents": order.TotalAmountCents,
		"paymentMethod":    string(order.PaymentMethod),
		"documentCount":    len(order.SelectedDocuments),
	})

	s.logger.Info("order created", map[string]interface{}{
		"orderId":          order.ID,
		"totalAmountCents": order.TotalAmountCents,
		"paymentMethod":    string(order.PaymentMethod),
	})

	return &order, nil
}

// UpdateStatus moves an order to a new status, optionally attaching the
// payment id.
func (s *Store) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, paymentID string) error {
	ctx, span := observability.StartSpan(ctx, "orders.UpdateStatus")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, payment_id = COALESCE(NULLIF($3, ''), payment_id), updated_at = $4
		WHERE id = $1`,
		id, string(status), paymentID, time.Now().UTC(),
	)
	if err != nil {
		observability.RecordError(ctx, err)
		return errors.NewOrderUpdateFailedError(id, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return errors.NewOrderNotFoundError(id)
	}

	s.writeAuditLog(ctx, "order_status_changed", id, map[string]interface{}{
		"status":    string(status),
		"paymentId": paymentID,
	})
	return nil
}

// GetByID loads a single order. Optional columns may hold SQL NULL, so they
// go through sql.NullString.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, span := observability.StartSpan(ctx, "orders.GetByID")
	defer span.End()

	var (
		order         models.Order
		documentsJSON []byte
		status        string
		method        string

		phone       sql.NullString
		companyName sql.NullString
		city        sql.NullString
		sheetNumber sql.NullString
		fieldParcel sql.NullString
		district    sql.NullString
		paymentID   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, email, first_name, last_name, phone, company_name,
			street, house_number, postal_code, city,
			sheet_number, field_parcel_number, district,
			selected_documents, certified_grundbuchauszug, owner_proof_liegenschaftskarte,
			document_purpose, legal_interest,
			signature_data, total_amount, status, payment_method, payment_id,
			created_at, updated_at
		FROM orders WHERE id = $1`, id).Scan(
		&order.ID, &order.SessionID, &order.Email, &order.FirstName, &order.LastName, &phone, &companyName,
		&order.Street, &order.HouseNumber, &order.PostalCode, &city,
		&sheetNumber, &fieldParcel, &district,
		&documentsJSON, &order.CertifiedGrundbuchauszug, &order.OwnerProofLiegenschaftskarte,
		&order.DocumentPurpose, &order.LegalInterest,
		&order.SignatureData, &order.TotalAmountCents, &status, &method, &paymentID,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewOrderNotFoundError(id)
	}
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, errors.NewDatabaseConnectionFailedError(err)
	}

	if err := json.Unmarshal(documentsJSON, &order.SelectedDocuments); err != nil {
		return nil, errors.NewDatabaseConnectionFailedError(err)
	}
	order.Phone = phone.String
	order.CompanyName = companyName.String
	order.City = city.String
	order.SheetNumber = sheetNumber.String
	order.FieldParcelNumber = fieldParcel.String
	order.District = district.String
	order.PaymentID = paymentID.String
	order.Status = models.OrderStatus(status)
	order.PaymentMethod = models.PaymentMethod(method)
	return &order, nil
}

func (s *Store) writeAuditLog(ctx context.Context, eventType, orderID string, details map[string]interface{}) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		s.logger.Warn("failed to marshal audit log details", map[string]interface{}{"error": err})
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType, "order", orderID, detailsJSON, time.Now().UTC(),
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":   err,
			"orderId": orderID,
		})
	}
}
