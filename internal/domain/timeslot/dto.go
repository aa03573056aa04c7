package timeslot

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

type CreateGroupRequest struct {
	Name string `json:"name"`
}

func (r *CreateGroupRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AddGroupMembersRequest struct {
	GroupID string   `json:"-"`
	UserIDs []string `json:"user_ids"`
}

func (r *AddGroupMembersRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.GroupID) {
		errs = append(errs, validator.ValidationError{
			Field:   "group_id",
			Message: "group_id must be a valid UUID",
		})
	}
	if len(r.UserIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "user_ids",
			Message: "user_ids must contain at least one user",
		})
	}
	for _, id := range r.UserIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "user_ids",
				Message: "user_ids must only contain valid UUIDs",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateTimeSlotRequest struct {
	GroupID   string  `json:"group_id"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// Validate checks the payload and returns the parsed start and end dates.
func (r *CreateTimeSlotRequest) Validate() (time.Time, *time.Time, error) {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.GroupID) {
		errs = append(errs, validator.ValidationError{
			Field:   "group_id",
			Message: "group_id must be a valid UUID",
		})
	}

	start, ok := validator.IsValidDateTime(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be an ISO8601 timestamp",
		})
	}

	var end *time.Time
	if r.EndDate != nil {
		parsed, ok := validator.IsValidDateTime(*r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be an ISO8601 timestamp",
			})
		} else {
			end = &parsed
		}
	}

	if len(errs) > 0 {
		return time.Time{}, nil, errs
	}

	return start, end, nil
}

type TimeSlotFilter struct {
	GroupID *string
}

type GroupResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Users     []user.Summary `json:"users"`
}

type TimeSlotResponse struct {
	ID        string         `json:"id"`
	GroupID   string         `json:"group_id"`
	StartDate time.Time      `json:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Group     *GroupResponse `json:"group,omitempty"`
}

func NewGroupResponse(g Group) GroupResponse {
	users := make([]user.Summary, 0, len(g.Users))
	for _, u := range g.Users {
		users = append(users, u.Summary())
	}
	return GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		Users:     users,
	}
}

func NewTimeSlotResponse(t TimeSlot) TimeSlotResponse {
	resp := TimeSlotResponse{
		ID:        t.ID,
		GroupID:   t.GroupID,
		StartDate: t.StartDate,
		EndDate:   t.EndDate,
		CreatedAt: t.CreatedAt,
	}
	if t.Group != nil {
		g := NewGroupResponse(*t.Group)
		resp.Group = &g
	}
	return resp
}
