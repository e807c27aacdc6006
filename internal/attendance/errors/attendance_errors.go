package attendanceerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrInvalidUserID = apperror.New(
		apperror.CodeValidation,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrInvalidPunchType = apperror.NewValidation(
		"invalid_punch_type",
		"punch type must be IN or OUT",
		http.StatusBadRequest,
	)
	ErrInvalidCoordinates = apperror.NewValidation(
		"invalid_coordinates",
		"latitude must be in [-90,90] and longitude in [-180,180]",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.NewValidation(
		"invalid_range",
		"period start must be before period end",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.NewValidation(
		"invalid_date",
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrAlreadyPunchedIn = apperror.NewState(
		"already_punched_in",
		"already punched in, punch OUT to close the session first",
		http.StatusConflict,
	)
	ErrAlreadyPunchedOut = apperror.NewState(
		"already_punched_out",
		"not punched in, punch IN to open a session first",
		http.StatusConflict,
	)
	ErrPunchInProgress = apperror.New(
		apperror.CodeConflict,
		"another punch for this user is in progress",
		http.StatusConflict,
	)
)
