package errors

import "fmt"

// ErrorType classifies capture failures. Every failure is scoped to the
// current payload or current scope; none is fatal to the running process.
type ErrorType string

const (
	// ErrorTypeParse marks an unparseable payload. The call is skipped,
	// the run continues.
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeLocator marks a payload with no timeline container. Skipped.
	ErrorTypeLocator ErrorType = "locator_miss"
	// ErrorTypeEntity marks a resolved entry that is not a tweet record.
	// Such entries are classified structural and dropped.
	ErrorTypeEntity ErrorType = "entity_type"
	// ErrorTypeNavigation marks an unresolved identity or rejected
	// navigation. The affected scope is skipped, the run continues.
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeSink marks a rejected flush. The store is kept intact and
	// the failure is surfaced to the operator.
	ErrorTypeSink ErrorType = "sink"
	// ErrorTypeUnknown covers everything else.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error carries a failure classification alongside the message.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// IsRetryable reports whether an error type should be retried. Sink failures
// are retried because the store must not be cleared until a flush succeeds;
// payload-scoped failures are not, the next payload supersedes them.
func IsRetryable(t ErrorType) bool {
	return t == ErrorTypeSink
}
