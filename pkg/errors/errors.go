package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = NewError("VALIDATION_ERROR", "row validation failed")
	ErrIO              = NewError("IO_ERROR", "i/o failure")
	ErrArchiveConflict = NewError("ARCHIVE_CONFLICT", "archive destination already exists")
	ErrConfig          = NewError("CONFIG_ERROR", "invalid configuration")
	ErrInternal        = NewError("INTERNAL_ERROR", "internal error")
)

// Error is a coded failure. Codes are stable and end up in log lines and
// processing metrics; Details carry the context an operator needs to fix
// the input (file, row, field).
type Error struct {
	Code    string
	Message string
	Details map[string]interface{}
	Cause   error
	fatal   bool
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that errors.Is(err, ErrIO) holds for any wrapped
// copy produced by WithCause or WithDetail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func (e *Error) IsFatal() bool {
	return e.fatal
}

func (e *Error) WithCause(cause error) *Error {
	err := e.clone()
	err.Cause = cause
	return err
}

func (e *Error) WithMessage(message string) *Error {
	err := e.clone()
	err.Message = message
	return err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := e.clone()
	err.Details[key] = value
	return err
}

func (e *Error) AsFatal() *Error {
	err := e.clone()
	err.fatal = true
	return err
}

func (e *Error) clone() *Error {
	err := *e
	err.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		err.Details[k] = v
	}
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

// Code returns the code of the outermost *Error in err's chain, or
// ErrInternal's code for foreign errors.
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}

// Details returns the merged details of every *Error in err's chain, outer
// values winning.
func Details(err error) map[string]interface{} {
	details := make(map[string]interface{})
	for err != nil {
		if appErr, ok := err.(*Error); ok {
			for k, v := range appErr.Details {
				if _, exists := details[k]; !exists {
					details[k] = v
				}
			}
		}
		err = errors.Unwrap(err)
	}
	return details
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

func IsArchiveConflict(err error) bool {
	return errors.Is(err, ErrArchiveConflict)
}
