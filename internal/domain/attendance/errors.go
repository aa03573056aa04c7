package attendance

import "errors"

// Attendance domain errors
var (
	// Initialization errors
	ErrAttendancesAlreadyInitialized = errors.New("time slot attendances already initialized")
	ErrSigningWindowClosed           = errors.New("time slot started too long ago to open attendance signing")

	// Signing errors
	ErrAlreadySigned       = errors.New("attendance has already been signed")
	ErrAbsentCannotSign    = errors.New("you cannot sign when you are marked absent")
	ErrNotAttendanceOwner  = errors.New("you can only sign your own attendance")
	ErrSignFileNotFound    = errors.New("sign file not found")
	ErrSignFileAlreadyUsed = errors.New("this signature was already used to sign an attendance, please create a new one")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
