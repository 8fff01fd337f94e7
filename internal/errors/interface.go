// Package errors carries coded errors through the daemon. Each package
// declares its own codes; callers branch on CodeOf rather than on messages.
package errors

// ErrorCode identifies an error kind, e.g. "config_invalid_battery".
type ErrorCode string

// Error is an error with a code and optional context data.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds Errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
