package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

// State is the derived lifecycle position of an attendance.
type State string

const (
	StateUnmarked        State = "unmarked"
	StateAbsent          State = "absent"
	StatePresentUnsigned State = "present_unsigned"
	StateSigned          State = "signed"
)

type Attendance struct {
	ID         string
	TimeSlotID string
	UserID     string
	IsPresent  *bool // nil until someone marks presence
	SignFileID *string
	SignDate   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Populated on request (FindOptions)
	User     *user.User
	SignFile *file.File
}

// IsSigned reports whether the attendance carries a signature.
func (a *Attendance) IsSigned() bool {
	return a.SignDate != nil
}

// IsMarkedAbsent is true only when presence was explicitly set to false.
func (a *Attendance) IsMarkedAbsent() bool {
	return a.IsPresent != nil && !*a.IsPresent
}

func (a *Attendance) State() State {
	switch {
	case a.IsSigned():
		return StateSigned
	case a.IsPresent == nil:
		return StateUnmarked
	case *a.IsPresent:
		return StatePresentUnsigned
	default:
		return StateAbsent
	}
}

// Filter selects attendances. Empty fields are ignored.
type Filter struct {
	TimeSlotID *string
	UserID     *string
}

// FindOptions selects which referenced rows are joined in.
type FindOptions struct {
	PopulateUser     bool
	PopulateSignFile bool
}
