package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidAppleToken),
		errors.Is(err, auth.ErrAppleCodeExchange):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrRefreshTokenCookieNotFound),
		errors.Is(err, auth.ErrRefreshTokenCookieEmpty):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAppleEmailMissing):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, auth.ErrAppleEmailUnverified):
		Forbidden(w, err.Error())

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAppleIDExists):
		Conflict(w, "Apple ID already linked to another account")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrSignFileNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrAttendancesAlreadyInitialized),
		errors.Is(err, attendance.ErrAlreadySigned),
		errors.Is(err, attendance.ErrSignFileAlreadyUsed):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAbsentCannotSign),
		errors.Is(err, attendance.ErrNotAttendanceOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrSigningWindowClosed):
		BadRequest(w, err.Error(), nil)

	// Time slot domain errors
	case errors.Is(err, timeslot.ErrTimeSlotNotFound):
		NotFound(w, "Time slot not found")
	case errors.Is(err, timeslot.ErrGroupNotFound):
		NotFound(w, "Group not found")
	case errors.Is(err, timeslot.ErrInvalidTimeRange):
		BadRequest(w, err.Error(), nil)

	// File domain errors
	case errors.Is(err, file.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, file.ErrInvalidFileType),
		errors.Is(err, file.ErrInvalidImage):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, file.ErrNotFileOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, file.ErrFileTooLarge):
		PayloadTooLarge(w, err.Error())

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
