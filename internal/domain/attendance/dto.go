package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type SetPresenceRequest struct {
	AttendanceID string `json:"-"`
	IsPresent    *bool  `json:"is_present"`
}

func (r *SetPresenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id must be a valid UUID",
		})
	}
	if r.IsPresent == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "is_present",
			Message: "is_present is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SignRequest struct {
	AttendanceID string `json:"-"`
	UserID       string `json:"-"`
	SignFileID   string `json:"sign_file_id"`
}

func (r *SignRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "attendance id must be a valid UUID",
		})
	}
	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	if validator.IsEmpty(r.SignFileID) {
		errs = append(errs, validator.ValidationError{
			Field:   "sign_file_id",
			Message: "sign_file_id is required",
		})
	} else if !validator.IsValidUUID(r.SignFileID) {
		errs = append(errs, validator.ValidationError{
			Field:   "sign_file_id",
			Message: "sign_file_id must be a valid UUID",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SignFileResponse struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type AttendanceResponse struct {
	ID         string            `json:"id"`
	TimeSlotID string            `json:"time_slot_id"`
	UserID     string            `json:"user_id"`
	State      State             `json:"state"`
	IsPresent  *bool             `json:"is_present"`
	SignFileID *string           `json:"sign_file_id"`
	SignDate   *time.Time        `json:"sign_date"`
	User       *user.Summary     `json:"user,omitempty"`
	SignFile   *SignFileResponse `json:"sign_file,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type InitializeResponse struct {
	TimeSlotID string `json:"time_slot_id"`
	Created    int    `json:"created"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		TimeSlotID: a.TimeSlotID,
		UserID:     a.UserID,
		State:      a.State(),
		IsPresent:  a.IsPresent,
		SignFileID: a.SignFileID,
		SignDate:   a.SignDate,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.User != nil {
		summary := a.User.Summary()
		resp.User = &summary
	}
	if a.SignFile != nil {
		resp.SignFile = &SignFileResponse{
			ID:           a.SignFile.ID,
			OriginalName: a.SignFile.OriginalName,
			MimeType:     a.SignFile.MimeType,
			CreatedAt:    a.SignFile.CreatedAt,
		}
	}
	return resp
}

func NewAttendanceResponses(list []Attendance) []AttendanceResponse {
	result := make([]AttendanceResponse, 0, len(list))
	for _, a := range list {
		result = append(result, NewAttendanceResponse(a))
	}
	return result
}
