package timeslot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
)

type TimeSlotServiceImpl struct {
	timeslot.TimeSlotRepository
	groupRepository timeslot.GroupRepository
}

func NewTimeSlotService(timeSlotRepo timeslot.TimeSlotRepository, groupRepo timeslot.GroupRepository) timeslot.TimeSlotService {
	return &TimeSlotServiceImpl{
		TimeSlotRepository: timeSlotRepo,
		groupRepository:    groupRepo,
	}
}

// CreateGroup implements timeslot.TimeSlotService.
func (s *TimeSlotServiceImpl) CreateGroup(ctx context.Context, req timeslot.CreateGroupRequest) (timeslot.GroupResponse, error) {
	if err := req.Validate(); err != nil {
		return timeslot.GroupResponse{}, err
	}

	created, err := s.groupRepository.Create(ctx, timeslot.Group{Name: req.Name})
	if err != nil {
		return timeslot.GroupResponse{}, fmt.Errorf("failed to create group: %w", err)
	}
	return timeslot.NewGroupResponse(created), nil
}

// GetGroup implements timeslot.TimeSlotService.
func (s *TimeSlotServiceImpl) GetGroup(ctx context.Context, id string) (timeslot.GroupResponse, error) {
	group, err := s.groupRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, timeslot.ErrGroupNotFound) {
			return timeslot.GroupResponse{}, err
		}
		return timeslot.GroupResponse{}, fmt.Errorf("failed to get group: %w", err)
	}
	return timeslot.NewGroupResponse(group), nil
}

// AddGroupMembers implements timeslot.TimeSlotService.
func (s *TimeSlotServiceImpl) AddGroupMembers(ctx context.Context, req timeslot.AddGroupMembersRequest) (timeslot.GroupResponse, error) {
	if err := req.Validate(); err != nil {
		return timeslot.GroupResponse{}, err
	}

	added, err := s.groupRepository.AddMembers(ctx, req.GroupID, req.UserIDs)
	if err != nil {
		if errors.Is(err, timeslot.ErrGroupNotFound) || errors.Is(err, user.ErrUserNotFound) {
			return timeslot.GroupResponse{}, err
		}
		return timeslot.GroupResponse{}, fmt.Errorf("failed to add group members: %w", err)
	}
	slog.Info("group members added", "group_id", req.GroupID, "added", added)

	return s.GetGroup(ctx, req.GroupID)
}

// CreateTimeSlot implements timeslot.TimeSlotService.
func (s *TimeSlotServiceImpl) CreateTimeSlot(ctx context.Context, req timeslot.CreateTimeSlotRequest) (timeslot.TimeSlotResponse, error) {
	start, end, err := req.Validate()
	if err != nil {
		return timeslot.TimeSlotResponse{}, err
	}
	if end != nil && !end.After(start) {
		return timeslot.TimeSlotResponse{}, timeslot.ErrInvalidTimeRange
	}

	if _, err := s.groupRepository.GetByID(ctx, req.GroupID); err != nil {
		if errors.Is(err, timeslot.ErrGroupNotFound) {
			return timeslot.TimeSlotResponse{}, err
		}
		return timeslot.TimeSlotResponse{}, fmt.Errorf("failed to get group: %w", err)
	}

	created, err := s.TimeSlotRepository.Create(ctx, timeslot.TimeSlot{
		GroupID:   req.GroupID,
		StartDate: start.UTC(),
		EndDate:   end,
	})
	if err != nil {
		if errors.Is(err, timeslot.ErrGroupNotFound) {
			return timeslot.TimeSlotResponse{}, err
		}
		return timeslot.TimeSlotResponse{}, fmt.Errorf("failed to create time slot: %w", err)
	}
	return timeslot.NewTimeSlotResponse(created), nil
}

// GetTimeSlot implements timeslot.TimeSlotService.
func (s *TimeSlotServiceImpl) GetTimeSlot(ctx context.Context, id string) (timeslot.TimeSlotResponse, error) {
	slot, err := s.TimeSlotRepository.GetWithGroupUsers(ctx, id)
	if err != nil {
		if errors.Is(err, timeslot.ErrTimeSlotNotFound) {
			return timeslot.TimeSlotResponse{}, err
		}
		return timeslot.TimeSlotResponse{}, fmt.Errorf("failed to get time slot: %w", err)
	}
	return timeslot.NewTimeSlotResponse(slot), nil
}

// ListTimeSlots implements timeslot.TimeSlotService.
func (s *TimeSlotServiceImpl) ListTimeSlots(ctx context.Context, filter timeslot.TimeSlotFilter) ([]timeslot.TimeSlotResponse, error) {
	slots, err := s.TimeSlotRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}

	result := make([]timeslot.TimeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, timeslot.NewTimeSlotResponse(slot))
	}
	return result, nil
}
