package attendance

import (
	"context"
)

// AttendanceService defines business logic for the attendance lifecycle
type AttendanceService interface {
	// InitializeForTimeSlot opens signing by creating one unmarked attendance per enrolled user
	InitializeForTimeSlot(ctx context.Context, timeSlotID string) (InitializeResponse, error)

	// ListForTimeSlot returns attendances with user and sign file populated
	ListForTimeSlot(ctx context.Context, timeSlotID string) ([]AttendanceResponse, error)

	GetByID(ctx context.Context, id string) (AttendanceResponse, error)

	// SetPresence marks a user present or absent. Absent discards any signature.
	SetPresence(ctx context.Context, req SetPresenceRequest) (AttendanceResponse, error)

	Sign(ctx context.Context, req SignRequest) (AttendanceResponse, error)

	ListForUser(ctx context.Context, userID string) ([]AttendanceResponse, error)
}
