// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFormValidationFailed ErrorCode = "FORM_VALIDATION_FAILED"
	ErrCodeStepOrderViolation   ErrorCode = "STEP_ORDER_VIOLATION"
	ErrCodeConsentMissing       ErrorCode = "CONSENT_MISSING"
	ErrCodeSignatureMissing     ErrorCode = "SIGNATURE_MISSING"
	ErrCodeUnknownDocument      ErrorCode = "UNKNOWN_DOCUMENT"

	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionLoadFailed ErrorCode = "SESSION_LOAD_FAILED"
	ErrCodeSessionSaveFailed ErrorCode = "SESSION_SAVE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeOrderInsertFailed        ErrorCode = "ORDER_INSERT_FAILED"
	ErrCodeOrderUpdateFailed        ErrorCode = "ORDER_UPDATE_FAILED"
	ErrCodeOrderNotFound            ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeDuplicateOrder           ErrorCode = "DUPLICATE_ORDER"

	ErrCodePaymentDeclined              ErrorCode = "PAYMENT_DECLINED"
	ErrCodePaymentProviderUnavailable   ErrorCode = "PAYMENT_PROVIDER_UNAVAILABLE"
	ErrCodePaymentMethodNotImplemented  ErrorCode = "PAYMENT_METHOD_NOT_IMPLEMENTED"
	ErrCodePostcodeLookupFailed         ErrorCode = "POSTCODE_LOOKUP_FAILED"
	ErrCodeOrderIndexFailed             ErrorCode = "ORDER_INDEX_FAILED"
	ErrCodeElasticsearchConnectionError ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewFormValidationFailedError creates a non-retryable form validation error.
func NewFormValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFormValidationFailed,
		Message:   "Form field validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStepOrderViolationError creates a non-retryable step sequencing error.
func NewStepOrderViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepOrderViolation,
		Message:   "Form step submitted out of order",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConsentMissingError creates a non-retryable consent error.
func NewConsentMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConsentMissing,
		Message:   "Required consent checkbox not accepted",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSignatureMissingError creates a non-retryable signature error.
func NewSignatureMissingError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureMissing,
		Message:   "Signature capture is empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownDocumentError creates a non-retryable catalog error.
func NewUnknownDocumentError(documentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownDocument,
		Message:   "Document is not part of the catalog",
		Details:   fmt.Sprintf("documentId: %s", documentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable session error.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Form session not found or expired",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionLoadFailedError creates a retryable session store error.
func NewSessionLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionLoadFailed,
		Message:   "Session store read error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionSaveFailedError creates a retryable session store error.
func NewSessionSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionSaveFailed,
		Message:   "Session store write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderInsertFailedError creates a retryable order insert error.
func NewOrderInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderInsertFailed,
		Message:   "Order insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderUpdateFailedError creates a retryable order status update error.
func NewOrderUpdateFailedError(orderID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderUpdateFailed,
		Message:   "Order status update failed",
		Details:   fmt.Sprintf("orderId: %s, error: %s", orderID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderNotFoundError creates a non-retryable order lookup error.
func NewOrderNotFoundError(orderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderNotFound,
		Message:   "Order not found",
		Details:   fmt.Sprintf("orderId: %s", orderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateOrderError creates a non-retryable duplicate order error.
func NewDuplicateOrderError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateOrder,
		Message:   "Order already exists for this session",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentDeclinedError carries the provider message verbatim so it can be
// shown to the user.
func NewPaymentDeclinedError(providerMessage string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentDeclined,
		Message:   providerMessage,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentProviderUnavailableError creates a retryable provider error.
func NewPaymentProviderUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentProviderUnavailable,
		Message:   "Payment provider unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentMethodNotImplementedError marks the unfinished redirect method.
func NewPaymentMethodNotImplementedError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentMethodNotImplemented,
		Message:   "Payment method is not implemented",
		Details:   fmt.Sprintf("method: %s", method),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPostcodeLookupFailedError creates a non-retryable lookup error; callers
// swallow it and leave the city blank.
func NewPostcodeLookupFailedError(plz string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePostcodeLookupFailed,
		Message:   "Postcode lookup failed",
		Details:   fmt.Sprintf("plz: %s, error: %s", plz, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderIndexFailedError creates a retryable search index error.
func NewOrderIndexFailedError(orderID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderIndexFailed,
		Message:   "Order indexing failed",
		Details:   fmt.Sprintf("orderId: %s, error: %s", orderID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeOrderInsertFailed,
		ErrCodeOrderUpdateFailed,
		ErrCodeSessionLoadFailed,
		ErrCodeSessionSaveFailed,
		ErrCodeOrderIndexFailed,
		ErrCodeElasticsearchConnectionError:
		return 3 // Retryable technical errors

	case ErrCodePaymentProviderUnavailable:
		return 2 // Provider hiccups; card input stays valid

	default:
		return 0 // Business and validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// CodeOf returns the code of a StandardError as a string, or INTERNAL_ERROR
// for anything else. Workers use it as the failure metrics label.
func CodeOf(err error) string {
	if stdErr, ok := err.(*StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "CONSENT") ||
		strings.Contains(codeStr, "SIGNATURE") || strings.Contains(codeStr, "STEP"):
		return "FORM"
	case strings.Contains(codeStr, "SESSION"):
		return "SESSION"
	case strings.Contains(codeStr, "ORDER") || strings.Contains(codeStr, "DATABASE"):
		return "ORDER"
	case strings.Contains(codeStr, "PAYMENT"):
		return "PAYMENT"
	case strings.Contains(codeStr, "POSTCODE"):
		return "LOOKUP"
	case strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "ELASTICSEARCH"):
		return "SEARCH"
	default:
		return "OTHER"
	}
}
