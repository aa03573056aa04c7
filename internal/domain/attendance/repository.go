package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// FindManyBy returns every attendance matching filter
	FindManyBy(ctx context.Context, filter Filter, opts FindOptions) ([]Attendance, error)

	// FindOneByID returns ErrAttendanceNotFound when no row matches
	FindOneByID(ctx context.Context, id string, opts FindOptions) (Attendance, error)

	ExistsForTimeSlot(ctx context.Context, timeSlotID string) (bool, error)

	// CreateMany inserts all rows atomically. A duplicate (time slot, user)
	// pair yields ErrAttendancesAlreadyInitialized and nothing is inserted.
	CreateMany(ctx context.Context, attendances []Attendance) ([]Attendance, error)

	// UpdatePresence sets is_present; false also clears the signature
	UpdatePresence(ctx context.Context, id string, isPresent bool) (Attendance, error)

	// Sign stores the signature only while the row is unsigned and not marked absent.
	Sign(ctx context.Context, id string, signFileID string, signedAt time.Time) (Attendance, error)

	// IsSignFileAlreadyUsedForSign checks every attendance of userID, whatever the time slot
	IsSignFileAlreadyUsedForSign(ctx context.Context, userID string, signFileID string) (bool, error)
}
