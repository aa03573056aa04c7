package timeslot

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time

	// Populated by GetByID / GetWithGroupUsers
	Users []user.User
}

type TimeSlot struct {
	ID        string
	GroupID   string
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time

	// Populated by GetWithGroupUsers
	Group *Group
}

// EnrolledUsers returns the users of the slot's group, or nil when the group was not loaded.
func (t *TimeSlot) EnrolledUsers() []user.User {
	if t.Group == nil {
		return nil
	}
	return t.Group.Users
}
