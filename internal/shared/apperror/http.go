package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the wire-level shape handlers render into the response envelope.
type HTTPError struct {
	Status  int
	Code    string
	Reason  string
	Message string
	Details any
}

// ToHTTP maps any error to its HTTP representation. Unknown errors are masked
// as internal errors so infrastructure details never leak to the caller.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Reason:  appErr.Reason,
			Message: appErr.Message,
		}
	}
	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
	}
}
