package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error code blocks
// ─────────────────────────────────────────────────────────────────────────────

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
	ErrCodeNotImplemented     ErrorCode = "COMMON_013"
)

// Template Module Error Codes
const (
	ErrCodeTemplateInvalid  ErrorCode = "TPL_001"
	ErrCodeTemplateNotFound ErrorCode = "TPL_002"
	ErrCodeSectionUnknown   ErrorCode = "TPL_003"
	ErrCodeLexiconInvalid   ErrorCode = "TPL_004"
)

// Session / Streaming Module Error Codes
const (
	ErrCodeSessionNotBound ErrorCode = "SES_001"
	ErrCodeSessionNotFound ErrorCode = "SES_002"
	ErrCodeSessionClosed   ErrorCode = "SES_003"
)

// Analysis Module Error Codes
const (
	ErrCodeAnalysisFailed ErrorCode = "ANL_001"
	ErrCodePatternInvalid ErrorCode = "ANL_002"
)

// AI Assist Module Error Codes
const (
	ErrCodeAssistUnavailable     ErrorCode = "AI_001"
	ErrCodeAssistInferenceFailed ErrorCode = "AI_002"
	ErrCodeAssistResponseInvalid ErrorCode = "AI_003"
)

// Aliases used by the factory helpers and middleware.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
)

// ─────────────────────────────────────────────────────────────────────────────
// Code → HTTP status / default message mappings
// ─────────────────────────────────────────────────────────────────────────────

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeTemplateInvalid:  http.StatusBadRequest,
	ErrCodeTemplateNotFound: http.StatusNotFound,
	ErrCodeSectionUnknown:   http.StatusBadRequest,
	ErrCodeLexiconInvalid:   http.StatusBadRequest,

	ErrCodeSessionNotBound: http.StatusConflict,
	ErrCodeSessionNotFound: http.StatusNotFound,
	ErrCodeSessionClosed:   http.StatusGone,

	ErrCodeAnalysisFailed: http.StatusInternalServerError,
	ErrCodePatternInvalid: http.StatusBadRequest,

	ErrCodeAssistUnavailable:     http.StatusServiceUnavailable,
	ErrCodeAssistInferenceFailed: http.StatusInternalServerError,
	ErrCodeAssistResponseInvalid: http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeTemplateInvalid:  "template definition is invalid",
	ErrCodeTemplateNotFound: "template not found",
	ErrCodeSectionUnknown:   "section id not present in bound template",
	ErrCodeLexiconInvalid:   "lexicon definition is invalid",

	ErrCodeSessionNotBound: "no template bound to session",
	ErrCodeSessionNotFound: "session not found",
	ErrCodeSessionClosed:   "session already closed",

	ErrCodeAnalysisFailed: "text analysis failed",
	ErrCodePatternInvalid: "extraction pattern failed to compile",

	ErrCodeAssistUnavailable:     "AI assist service unavailable",
	ErrCodeAssistInferenceFailed: "AI assist classification failed",
	ErrCodeAssistResponseInvalid: "AI assist returned a malformed response",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
