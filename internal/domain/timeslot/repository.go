package timeslot

import (
	"context"
)

type TimeSlotRepository interface {
	Create(ctx context.Context, slot TimeSlot) (TimeSlot, error)

	// GetByID returns the slot without its group
	GetByID(ctx context.Context, id string) (TimeSlot, error)

	// GetWithGroupUsers returns the slot with Group and Group.Users populated
	GetWithGroupUsers(ctx context.Context, id string) (TimeSlot, error)

	List(ctx context.Context, filter TimeSlotFilter) ([]TimeSlot, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group Group) (Group, error)

	// GetByID returns the group with Users populated
	GetByID(ctx context.Context, id string) (Group, error)

	// AddMembers enrolls users into the group, ignoring existing memberships
	AddMembers(ctx context.Context, groupID string, userIDs []string) (int64, error)
}
