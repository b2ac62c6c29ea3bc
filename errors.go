package toolcase

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for toolcase. Use errors.Is to check.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrTimeout      = errors.New("tool execution timeout")
	ErrShutdown     = errors.New("executor is shutting down")
)

// DefinitionError reports a toolkit author's schema mistake found at
// registration time. It is fatal to the single tool being defined but must
// not abort registration of the rest of a toolkit.
type DefinitionError struct {
	Tool   string
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Tool == "" {
		return "tool definition error: " + e.Reason
	}
	return fmt.Sprintf("tool definition error in %s: %s", e.Tool, e.Reason)
}

func definitionErrorf(tool, format string, args ...any) *DefinitionError {
	return &DefinitionError{Tool: tool, Reason: fmt.Sprintf(format, args...)}
}

// InputError reports an input validation or coercion failure. Field names the
// offending parameter when known. Surfaced to callers as a 400-equivalent.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return "invalid tool input: " + e.Reason
	}
	return fmt.Sprintf("invalid tool input: parameter %q: %s", e.Field, e.Reason)
}

// ExecutionError is a non-retryable failure raised inside a tool body.
// Message is user-facing; DeveloperMessage may carry internal detail (cause,
// stack trace) and is never shown to the calling model.
type ExecutionError struct {
	Message          string
	DeveloperMessage string
	Err              error
}

func (e *ExecutionError) Error() string { return e.Message }

// Unwrap supports errors.Is/errors.As on wrapped chains.
func (e *ExecutionError) Unwrap() error { return e.Err }

// RetryableError signals that the same call may be re-issued, optionally
// after RetryAfter. AdditionalPromptContent, when set, is surfaced to the
// caller for inclusion in a retry prompt.
type RetryableError struct {
	Message                 string
	RetryAfter              time.Duration
	AdditionalPromptContent string
}

func (e *RetryableError) Error() string { return e.Message }

// NewRetryableError builds a RetryableError with a suggested delay.
func NewRetryableError(message string, retryAfter time.Duration) *RetryableError {
	return &RetryableError{Message: message, RetryAfter: retryAfter}
}

// AuthorizationRequiredError is not a failure: it signals that the caller
// must complete an out-of-band authorization flow before retrying the same
// invocation. The Executor produces it when a tool's auth requirement is not
// satisfied by the call context; tool bodies may also return it directly.
type AuthorizationRequiredError struct {
	Provider string
	Scopes   []string
}

func (e *AuthorizationRequiredError) Error() string {
	return fmt.Sprintf("authorization required for provider %q", e.Provider)
}

// IsDefinitionError returns true if err is or wraps a DefinitionError.
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

// IsInputError returns true if err is or wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsRetryable returns true if err is or wraps a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// errKeyEmpty marks an empty secret/metadata requirement key.
var errKeyEmpty = errors.New("keys must be non-empty")

// wrapJSONParseError returns an InputError for JSON unmarshal failures so
// parse errors read the same on every path.
func wrapJSONParseError(err error) error {
	return &InputError{Reason: "json parse error: " + err.Error()}
}

// panicError wraps a recovered panic value; used by Executor.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
