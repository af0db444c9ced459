package dto

// Error codes returned in BaseError.Code.
const (
	CodeValidation        = "validation_error"
	CodeUnauthorized      = "unauthorized"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeTerminalState     = "terminal_state"
	CodeSlotUnavailable   = "slot_unavailable"
	CodeEmailExists       = "email_exists"
	CodeRateLimited       = "rate_limited"
	CodeUpstream          = "upstream_error"
	CodeInternal          = "internal_error"
)

// BaseError is the body of every failed request. Fields is set for
// validation failures only.
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError names one rejected request field. Tag is the validator tag when
// the error came from binding.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

// The aliases below only exist for swagger @Failure annotations.

type ValidationErrorResponse BaseError   // 400
type UnauthorizedErrorResponse BaseError // 401
type ForbiddenErrorResponse BaseError    // 403
type NotFoundErrorResponse BaseError     // 404

// ConflictErrorResponse is a 409 with code invalid_transition, terminal_state,
// slot_unavailable or email_exists.
type ConflictErrorResponse BaseError

type RateLimitedErrorResponse BaseError // 429
type InternalErrorResponse BaseError    // 500
type BadGatewayErrorResponse BaseError  // 502

func NewValidationError(msg string, fields []FieldError) ValidationErrorResponse {
	return ValidationErrorResponse{Code: CodeValidation, Message: msg, Fields: fields}
}

// NewConflictError takes one of the 409 codes; details may be empty.
func NewConflictError(code, msg, details string) ConflictErrorResponse {
	return ConflictErrorResponse{Code: code, Message: msg, Details: details}
}

func NewUnauthorizedError(msg string) UnauthorizedErrorResponse {
	return UnauthorizedErrorResponse{Code: CodeUnauthorized, Message: msg}
}

func NewForbiddenError(msg string) ForbiddenErrorResponse {
	return ForbiddenErrorResponse{Code: CodeForbidden, Message: msg}
}

func NewNotFoundError(msg string) NotFoundErrorResponse {
	return NotFoundErrorResponse{Code: CodeNotFound, Message: msg}
}

func NewRateLimitedError(msg string) RateLimitedErrorResponse {
	return RateLimitedErrorResponse{Code: CodeRateLimited, Message: msg}
}

func NewBadGatewayError(msg string) BadGatewayErrorResponse {
	return BadGatewayErrorResponse{Code: CodeUpstream, Message: msg}
}

func NewInternalError(details string) InternalErrorResponse {
	return InternalErrorResponse{Code: CodeInternal, Message: "internal server error", Details: details}
}
