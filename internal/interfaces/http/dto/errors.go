package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when an auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when an auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeInvalidCredentials is used when login fails
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeAccountDisabled is used when a disabled user tries to log in
	ErrCodeAccountDisabled = "ERR_ACCOUNT_DISABLED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes. Rule violations are client errors (400).
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientStock is used when stock cannot cover a reservation
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeEmptyCart is used when checking out an empty cart
	ErrCodeEmptyCart = "ERR_EMPTY_CART"
	// ErrCodeVariantUnavailable is used when a variant cannot be bought
	ErrCodeVariantUnavailable = "ERR_VARIANT_UNAVAILABLE"
	// ErrCodeTokenRejected is used for expired or used confirmation tokens
	ErrCodeTokenRejected = "ERR_TOKEN_REJECTED"
	// ErrCodeNoReviews is used when summarizing a product without reviews
	ErrCodeNoReviews = "ERR_NO_REVIEWS"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Upstream error codes
const (
	// ErrCodeAIUnavailable is used when no LLM provider is configured
	ErrCodeAIUnavailable = "ERR_AI_UNAVAILABLE"
	// ErrCodeAIProvider is used when every LLM provider failed
	ErrCodeAIProvider = "ERR_AI_PROVIDER"
	// ErrCodePredictorUnavailable is used when the predictor is off or down
	ErrCodePredictorUnavailable = "ERR_PREDICTOR_UNAVAILABLE"
	// ErrCodePredictionFailed is used when a prediction produced no row
	ErrCodePredictionFailed = "ERR_PREDICTION_FAILED"
	// ErrCodeStorageUnavailable is used when object storage is not configured
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDisabled:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 400 Bad Request
	ErrCodeInvalidState:       http.StatusBadRequest,
	ErrCodeInsufficientStock:  http.StatusBadRequest,
	ErrCodeEmptyCart:          http.StatusBadRequest,
	ErrCodeVariantUnavailable: http.StatusBadRequest,
	ErrCodeTokenRejected:      http.StatusBadRequest,
	ErrCodeNoReviews:          http.StatusBadRequest,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Upstream errors
	ErrCodeAIUnavailable:        http.StatusServiceUnavailable,
	ErrCodeAIProvider:           http.StatusBadGateway,
	ErrCodePredictorUnavailable: http.StatusServiceUnavailable,
	ErrCodePredictionFailed:     http.StatusBadGateway,
	ErrCodeStorageUnavailable:   http.StatusServiceUnavailable,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the HTTP-facing codes.
// Unlisted INVALID_* style codes become ERR_VALIDATION in NormalizeErrorCode.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"INVALID_CREDENTIALS":   ErrCodeInvalidCredentials,
	"ACCOUNT_DISABLED":      ErrCodeAccountDisabled,
	"TOKEN_EXPIRED":         ErrCodeTokenRejected,
	"TOKEN_USED":            ErrCodeTokenRejected,
	"INVALID_TOKEN":         ErrCodeTokenRejected,
	"INVALID_REFRESH_TOKEN": ErrCodeTokenInvalid,
	"PASSWORD_HASH_ERROR":   ErrCodeInternal,
	"EMPTY_CART":            ErrCodeEmptyCart,
	"EMPTY_ORDER":           ErrCodeEmptyCart,
	"VARIANT_UNAVAILABLE":   ErrCodeVariantUnavailable,
	"NO_REVIEWS":            ErrCodeNoReviews,
	"INVALID_STATUS":        ErrCodeInvalidState,
	"LAST_OWNER":            ErrCodeInvalidState,
	"HAS_CHILDREN":          ErrCodeInvalidState,
	"HAS_PRODUCTS":          ErrCodeInvalidState,
	"NO_ACTIVE_VARIANT":     ErrCodeInvalidState,
	"ALREADY_ACTIVE":        ErrCodeInvalidState,
	"ALREADY_ARCHIVED":      ErrCodeInvalidState,
	"ALREADY_VERIFIED":      ErrCodeInvalidState,
	"CANNOT_MODIFY_SELF":    ErrCodeInvalidState,
	"TOO_MANY_IMAGES":       ErrCodeValidation,

	"AI_UNAVAILABLE":        ErrCodeAIUnavailable,
	"AI_PROVIDER_ERROR":     ErrCodeAIProvider,
	"PREDICTOR_UNAVAILABLE": ErrCodePredictorUnavailable,
	"PREDICTION_FAILED":     ErrCodePredictionFailed,
	"STORAGE_UNAVAILABLE":   ErrCodeStorageUnavailable,
}

// validationPrefixes mark domain codes that describe bad input
var validationPrefixes = []string{"INVALID_", "EMPTY_", "MISSING_"}

// NormalizeErrorCode converts a domain error code to the standardized format.
// Codes already in ERR_ form pass through; INVALID_* style codes become
// ERR_VALIDATION; anything else is returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	if len(code) > 4 && code[:4] == "ERR_" {
		return code
	}
	for _, p := range validationPrefixes {
		if len(code) > len(p) && code[:len(p)] == p {
			return ErrCodeValidation
		}
	}
	return code
}
