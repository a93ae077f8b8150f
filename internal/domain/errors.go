package domain

import "errors"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface. The message is surfaced to API
// callers as-is, so it carries no code prefix.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeLoad          = "LOAD_ERROR"
	ErrCodeNoTranscript  = "NO_TRANSCRIPT"
	ErrCodeRender        = "RENDER_ERROR"
	ErrCodeEmbedding     = "EMBEDDING_ERROR"
	ErrCodeInvocation    = "INVOCATION_ERROR"
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrLinkRequired       = NewDomainError(ErrCodeValidation, "link is required")
	ErrGroqAPIKeyRequired = NewDomainError(ErrCodeValidation, "groqApiKey is required")
	ErrOpenAIKeyRequired  = NewDomainError(ErrCodeValidation, "OPENAI_API_KEY is required if LOCAL_LLM_URL is not set")
	ErrInvalidTemperature = NewDomainError(ErrCodeValidation, "temperature must be between 0 and 1")
	ErrInvalidMode        = NewDomainError(ErrCodeValidation, "mode must be one of: direct, retrieval")
	ErrInvalidCursor      = NewDomainError(ErrCodeValidation, "invalid cursor")
)

// Not found errors
var (
	ErrSummaryLogNotFound = NewDomainError(ErrCodeNotFound, "summary log not found")
)

// NewLoadError reports a failed content fetch or parse.
func NewLoadError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeLoad, message, err)
}

// NewNoTranscriptError reports a video without any usable transcript.
func NewNoTranscriptError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeNoTranscript, message, err)
}

// NewRenderError reports a page render timeout or navigation failure.
func NewRenderError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRender, message, err)
}

// NewEmbeddingError reports a failed embedding call.
func NewEmbeddingError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbedding, message, err)
}

// NewInvocationError reports a failed or malformed LLM completion.
func NewInvocationError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeInvocation, message, err)
}

// NewTimeoutError reports a request that ran past its deadline.
func NewTimeoutError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeTimeout, message, err)
}

// CodeOf returns the code of the outermost DomainError in err's chain, or
// ErrCodeInternalError when there is none.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternalError
}

// HasCode reports whether err's chain contains a DomainError with code.
func HasCode(err error, code string) bool {
	for err != nil {
		var domainErr *DomainError
		if !errors.As(err, &domainErr) {
			return false
		}
		if domainErr.Code == code {
			return true
		}
		err = domainErr.Err
	}
	return false
}
