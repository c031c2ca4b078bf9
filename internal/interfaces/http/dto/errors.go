package dto

import (
	"net/http"
	"strings"
)

// API error codes. Every code the API emits starts with ERR_.
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeTokenMaxRefresh    = "ERR_TOKEN_MAX_REFRESH"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest answers a replayed Idempotency-Key
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"

	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeInsufficientCredits = "ERR_INSUFFICIENT_CREDITS"
	ErrCodeFeatureDisabled     = "ERR_FEATURE_DISABLED"
	ErrCodeCannotDeleteSelf    = "ERR_CANNOT_DELETE_SELF"
	ErrCodeCannotDemoteSelf    = "ERR_CANNOT_DEMOTE_SELF"
	// The built-in Other category and tag group cannot be renamed or deleted
	ErrCodeReservedCategory = "ERR_RESERVED_CATEGORY"
	ErrCodeReservedTagGroup = "ERR_RESERVED_TAG_GROUP"

	ErrCodeUnsupportedMedia = "ERR_UNSUPPORTED_MEDIA"
	ErrCodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"
	// ErrCodeExternalService covers the background removal provider and object storage
	ErrCodeExternalService = "ERR_EXTERNAL_SERVICE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// codeTable lists every API code with its status and, where the domain layer
// raises it, the domain code it is translated from.
var codeTable = []struct {
	code   string
	status int
	domain []string
}{
	{ErrCodeInternal, http.StatusInternalServerError, []string{"INTERNAL_ERROR", "PASSWORD_HASH_ERROR"}},
	{ErrCodeValidation, http.StatusBadRequest, []string{"VALIDATION_ERROR"}},
	{ErrCodeBadRequest, http.StatusBadRequest, []string{"BAD_REQUEST"}},
	{ErrCodeInvalidInput, http.StatusBadRequest, []string{"INVALID_INPUT"}},

	{ErrCodeUnauthorized, http.StatusUnauthorized, []string{"UNAUTHORIZED"}},
	{ErrCodeInvalidCredentials, http.StatusUnauthorized, []string{"INVALID_CREDENTIALS"}},
	{ErrCodeTokenExpired, http.StatusUnauthorized, []string{"TOKEN_EXPIRED"}},
	{ErrCodeTokenInvalid, http.StatusUnauthorized, []string{"TOKEN_INVALID"}},
	{ErrCodeTokenRevoked, http.StatusUnauthorized, []string{"TOKEN_REVOKED"}},
	{ErrCodeTokenMaxRefresh, http.StatusUnauthorized, []string{"TOKEN_MAX_REFRESH"}},
	{ErrCodeForbidden, http.StatusForbidden, []string{"FORBIDDEN"}},

	{ErrCodeNotFound, http.StatusNotFound, []string{"NOT_FOUND"}},
	{ErrCodeAlreadyExists, http.StatusConflict, []string{"ALREADY_EXISTS"}},
	{ErrCodeConflict, http.StatusConflict, nil},
	{ErrCodeConcurrencyConflict, http.StatusConflict, []string{"CONCURRENCY_CONFLICT"}},
	{ErrCodeDuplicateRequest, http.StatusConflict, nil},

	{ErrCodeInsufficientCredits, http.StatusPaymentRequired, []string{"INSUFFICIENT_CREDITS"}},
	{ErrCodeInvalidState, http.StatusUnprocessableEntity, []string{"INVALID_STATE"}},
	{ErrCodeFeatureDisabled, http.StatusUnprocessableEntity, []string{"FEATURE_DISABLED"}},
	{ErrCodeCannotDeleteSelf, http.StatusUnprocessableEntity, []string{"CANNOT_DELETE_SELF"}},
	{ErrCodeCannotDemoteSelf, http.StatusUnprocessableEntity, []string{"CANNOT_DEMOTE_SELF"}},
	{ErrCodeReservedCategory, http.StatusUnprocessableEntity, []string{"RESERVED_CATEGORY"}},
	{ErrCodeReservedTagGroup, http.StatusUnprocessableEntity, []string{"RESERVED_TAG_GROUP"}},

	{ErrCodeUnsupportedMedia, http.StatusUnsupportedMediaType, []string{"UNSUPPORTED_MEDIA"}},
	{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge, []string{"PAYLOAD_TOO_LARGE"}},
	{ErrCodeExternalService, http.StatusBadGateway, []string{"EXTERNAL_SERVICE"}},
	{ErrCodeRateLimited, http.StatusTooManyRequests, nil},
}

var (
	statusByCode = map[string]int{}
	codeByDomain = map[string]string{}
)

func init() {
	for _, row := range codeTable {
		statusByCode[row.code] = row.status
		for _, d := range row.domain {
			codeByDomain[d] = row.code
		}
	}
}

// NormalizeErrorCode translates a domain error code into its API code.
// Domain codes without a dedicated API code, such as INVALID_TAG, are
// returned unchanged so clients can tell them apart.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := codeByDomain[code]; ok {
		return apiCode
	}
	return code
}

// DomainHTTPStatus picks the status for a domain or API error code. Codes
// outside the table fall back by prefix: INVALID_* and TOO_MANY_* are bad
// requests, TOKEN_* is unauthorized and any other rule violation is 422.
func DomainHTTPStatus(code string) int {
	code = NormalizeErrorCode(code)
	if status, ok := statusByCode[code]; ok {
		return status
	}
	bare := strings.TrimPrefix(code, "ERR_")
	switch {
	case strings.HasPrefix(bare, "INVALID_"), strings.HasPrefix(bare, "TOO_MANY_"):
		return http.StatusBadRequest
	case strings.HasPrefix(bare, "TOKEN_"):
		return http.StatusUnauthorized
	}
	return http.StatusUnprocessableEntity
}
