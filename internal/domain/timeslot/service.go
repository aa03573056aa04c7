package timeslot

import (
	"context"
)

// TimeSlotService manages groups and the time slots scheduled for them.
type TimeSlotService interface {
	CreateGroup(ctx context.Context, req CreateGroupRequest) (GroupResponse, error)
	GetGroup(ctx context.Context, id string) (GroupResponse, error)
	AddGroupMembers(ctx context.Context, req AddGroupMembersRequest) (GroupResponse, error)

	CreateTimeSlot(ctx context.Context, req CreateTimeSlotRequest) (TimeSlotResponse, error)
	GetTimeSlot(ctx context.Context, id string) (TimeSlotResponse, error)
	ListTimeSlots(ctx context.Context, filter TimeSlotFilter) ([]TimeSlotResponse, error)
}
