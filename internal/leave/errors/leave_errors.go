package leaveerrors

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
	ErrMissingFields = apperror.NewValidation(
		"missing_fields",
		"leave_type_id, from_date and to_date are required",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.NewValidation(
		"invalid_date",
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.NewValidation(
		"invalid_range",
		"from_date must be before or equal to_date",
		http.StatusBadRequest,
	)
	ErrUnknownType = apperror.NewValidation(
		"unknown_type",
		"leave type does not exist or is inactive",
		http.StatusBadRequest,
	)
	ErrSingleDayOnly = apperror.NewValidation(
		"sol_single_day",
		"this leave type is allowed for only one day",
		http.StatusBadRequest,
	)
	ErrHalfDayNotAllowed = apperror.NewValidation(
		"half_day_not_allowed",
		"half-day is not allowed for this leave type",
		http.StatusBadRequest,
	)
	ErrHalfDaySingleDate = apperror.NewValidation(
		"half_day_single_day",
		"a half-day leave must start and end on the same date",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.NewValidation(
		"insufficient_balance",
		"insufficient leave balance",
		http.StatusBadRequest,
	)
)
