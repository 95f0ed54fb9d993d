package i8n

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationConflict is returned when both a local and a remote
	// backend are configured on the same Translator.
	ErrConfigurationConflict = errors.New("both local and remote backends configured, choose just one")

	// ErrBackendUnavailable is reported when a translation is requested
	// and no backend is configured.
	ErrBackendUnavailable = errors.New("translator not initialized with a backend")
)

// ConfigurationError indicates an invalid Translator configuration.
// It is the only error surfaced to callers, at NewTranslator or Init time.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// BackendError indicates a translation backend failure (network, auth,
// remote exception, malformed payload).
type BackendError struct {
	Op         string // Operation that failed: "authenticate", "translate"
	Message    string
	Cause      error
	StatusCode int  // HTTP status if the backend answered, 0 otherwise
	Retryable  bool // Whether the operation can be retried
}

func (e *BackendError) Error() string {
	msg := "backend error"
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" [status %d]", e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}
