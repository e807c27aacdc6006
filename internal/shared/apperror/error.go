package apperror

import "fmt"

type AppError struct {
	Code       string // Error class (e.g., VALIDATION_ERROR)
	Reason     string // Machine-readable reason code (e.g., invalid_range), optional
	Message    string // User-friendly message
	HTTPStatus int    // HTTP status code
	Err        error  // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// NewValidation creates a user-correctable input error carrying a reason code.
// These are surfaced verbatim to the caller and never retried.
func NewValidation(reason, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Reason:     reason,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// NewState creates a state-conflict error (e.g., illegal punch transition).
func NewState(reason, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       CodeInvalidState,
		Reason:     reason,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}
