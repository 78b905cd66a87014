package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDecode           = NewError("DECODE_ERROR", "unable to parse input message")
	ErrUnknownStream    = NewError("UNKNOWN_STREAM", "record encountered before a corresponding schema")
	ErrSchemaValidation = NewError("SCHEMA_VALIDATION", "record failed schema validation")
	ErrFileIO           = NewError("FILE_IO", "destination file operation failed")
	ErrTransfer         = NewError("TRANSFER_ERROR", "remote transfer failed")
	ErrConfig           = NewError("CONFIG_ERROR", "invalid configuration")
	ErrInternal         = NewError("INTERNAL_ERROR", "internal error")
)

// Error is the coded error carried across the run. Every code is fatal
// to the process; unrecognized message types are logged instead of
// raised and never reach this type.
type Error struct {
	Code    string
	Message string
	Details map[string]interface{}
	Cause   error
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
			msg = detailMsg
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	err.Details = details
	return &err
}

func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return e.WithDetail("message", fmt.Sprintf(format, args...))
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func codeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsDecode(err error) bool        { return codeOf(err) == ErrDecode.Code }
func IsUnknownStream(err error) bool { return codeOf(err) == ErrUnknownStream.Code }
func IsValidation(err error) bool    { return codeOf(err) == ErrSchemaValidation.Code }
func IsFileIO(err error) bool        { return codeOf(err) == ErrFileIO.Code }
func IsTransfer(err error) bool      { return codeOf(err) == ErrTransfer.Code }
