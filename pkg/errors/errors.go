package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch/network errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRender represents JS-render fallback errors
	ErrorTypeRender ErrorType = "render"
	// ErrorTypeParsing represents HTML parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeMissingInput represents missing caller input (no offer URL, no selectors)
	ErrorTypeMissingInput ErrorType = "missing_input"
	// ErrorTypeRepository represents persistence errors
	ErrorTypeRepository ErrorType = "repository"
	// ErrorTypeStore represents store client errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents a deal-pipeline error
type PipelineError struct {
	Type    ErrorType
	Subject string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Subject, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Subject, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying on a later cycle
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeRender, ErrorTypeRepository:
		return true
	case ErrorTypeRateLimit:
		return false
	case ErrorTypeMissingInput, ErrorTypeParsing, ErrorTypeConfiguration:
		return false
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, subject, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Subject: subject,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(subject, message string, err error) *PipelineError {
	return New(ErrorTypeNetwork, subject, message, err)
}

// NewRender creates a new render error
func NewRender(subject, message string, err error) *PipelineError {
	return New(ErrorTypeRender, subject, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(subject, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, subject, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(subject string, duration time.Duration) *PipelineError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, subject, message, nil)
}

// NewMissingInput creates a new missing-input error
func NewMissingInput(subject, message string) *PipelineError {
	return New(ErrorTypeMissingInput, subject, message, nil)
}

// NewRepository creates a new repository error
func NewRepository(subject, message string, err error) *PipelineError {
	return New(ErrorTypeRepository, subject, message, err)
}

// NewStore creates a new store client error
func NewStore(subject, message string, err error) *PipelineError {
	return New(ErrorTypeStore, subject, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
