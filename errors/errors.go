package errors

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeParse     ErrorType = "parse"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeAuth      ErrorType = "auth"
	ErrorTypeTransport ErrorType = "transport"
)

// AppError is an error with a type and optional structured context.
type AppError struct {
	Type     ErrorType
	Message  string
	Internal error
	Context  map[string]any
}

var (
	ErrParse     = New(ErrorTypeParse, "parse error")
	ErrConfig    = New(ErrorTypeConfig, "configuration error")
	ErrAuth      = New(ErrorTypeAuth, "authentication error")
	ErrTransport = New(ErrorTypeTransport, "transport error")
)

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Internal)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches any AppError with the same type, so errors.Is(err, ErrAuth) identifies an
// authentication failure regardless of the message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type
	}

	return false
}

func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = map[string]any{}
	}

	e.Context[key] = value

	return e
}

// Fields returns the error as structured log fields.
func (e *AppError) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("error_type", string(e.Type)),
		zap.String("error_message", e.Message),
	}

	if e.Internal != nil {
		fields = append(fields, zap.NamedError("internal_error", e.Internal))
	}

	for k, v := range e.Context {
		fields = append(fields, zap.Any(k, v))
	}

	return fields
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		Internal: err,
	}
}

func NewParseError(value string, err error) *AppError {
	return Wrap(err, ErrorTypeParse, fmt.Sprintf("invalid value '%v'", value)).
		WithContext("value", value)
}

func NewConfigError(format string, args ...any) *AppError {
	return New(ErrorTypeConfig, fmt.Sprintf(format, args...))
}

func NewAuthError(err error, format string, args ...any) *AppError {
	return Wrap(err, ErrorTypeAuth, fmt.Sprintf(format, args...))
}

func NewTransportError(err error, operation string) *AppError {
	return Wrap(err, ErrorTypeTransport, fmt.Sprintf("%v failed", operation)).
		WithContext("operation", operation)
}

// Fields returns the structured log fields for any error, expanding AppErrors.
func Fields(err error) []zap.Field {
	var e *AppError
	if errors.As(err, &e) {
		return e.Fields()
	}

	return []zap.Field{zap.Error(err)}
}
