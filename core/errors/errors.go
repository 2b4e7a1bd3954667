package errors

import (
	stderrors "errors"
)

type ErrorCode string

const (
	ErrInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrStore           ErrorCode = "STORE_ERROR"
	ErrConfig          ErrorCode = "CONFIG_ERROR"
	ErrSend            ErrorCode = "SEND_ERROR"
	ErrInternalServer  ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidRequest  ErrorCode = "INVALID_REQUEST_DATA"
	ErrValidationError ErrorCode = "VALIDATION_ERROR"
)

// AppError is the error type shared by services and repositories.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// HasCode reports whether err wraps an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func NotFound(message string) *AppError {
	return NewAppError(ErrNotFound, message, nil)
}

func InvalidInput(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, nil)
}

func Store(message string, err error) *AppError {
	return NewAppError(ErrStore, message, err)
}

func Config(message string) *AppError {
	return NewAppError(ErrConfig, message, nil)
}
