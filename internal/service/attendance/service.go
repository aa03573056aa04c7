package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
)

// DefaultSigningGrace is how long after a time slot starts attendances can still be opened.
const DefaultSigningGrace = 10 * time.Minute

type Config struct {
	SigningGrace time.Duration
	Now          func() time.Time
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	timeslot.TimeSlotRepository
	fileRepository file.FileRepository

	grace time.Duration
	now   func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	timeSlotRepo timeslot.TimeSlotRepository,
	fileRepo file.FileRepository,
	cfg Config,
) attendance.AttendanceService {
	if cfg.SigningGrace <= 0 {
		cfg.SigningGrace = DefaultSigningGrace
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		TimeSlotRepository:   timeSlotRepo,
		fileRepository:       fileRepo,
		grace:                cfg.SigningGrace,
		now:                  cfg.Now,
	}
}

// InitializeForTimeSlot implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) InitializeForTimeSlot(ctx context.Context, timeSlotID string) (attendance.InitializeResponse, error) {
	slot, err := s.TimeSlotRepository.GetWithGroupUsers(ctx, timeSlotID)
	if err != nil {
		if errors.Is(err, timeslot.ErrTimeSlotNotFound) {
			return attendance.InitializeResponse{}, err
		}
		return attendance.InitializeResponse{}, fmt.Errorf("failed to get time slot: %w", err)
	}

	exists, err := s.AttendanceRepository.ExistsForTimeSlot(ctx, slot.ID)
	if err != nil {
		return attendance.InitializeResponse{}, fmt.Errorf("failed to check existing attendances: %w", err)
	}
	if exists {
		metrics.RecordRejection("initialize", "already_initialized")
		return attendance.InitializeResponse{}, attendance.ErrAttendancesAlreadyInitialized
	}

	// Opening early is fine; only a slot that started more than grace ago is closed.
	if s.now().After(slot.StartDate.Add(s.grace)) {
		metrics.RecordRejection("initialize", "window_closed")
		return attendance.InitializeResponse{}, attendance.ErrSigningWindowClosed
	}

	users := slot.EnrolledUsers()
	rows := make([]attendance.Attendance, 0, len(users))
	for _, u := range users {
		rows = append(rows, attendance.Attendance{
			TimeSlotID: slot.ID,
			UserID:     u.ID,
		})
	}

	created, err := s.AttendanceRepository.CreateMany(ctx, rows)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendancesAlreadyInitialized) {
			metrics.RecordRejection("initialize", "already_initialized")
			return attendance.InitializeResponse{}, err
		}
		return attendance.InitializeResponse{}, fmt.Errorf("failed to create attendances: %w", err)
	}

	metrics.RecordTransition(string(attendance.StateUnmarked), len(created))
	slog.Info("attendances initialized", "time_slot_id", slot.ID, "count", len(created))

	return attendance.InitializeResponse{
		TimeSlotID: slot.ID,
		Created:    len(created),
	}, nil
}

// ListForTimeSlot implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListForTimeSlot(ctx context.Context, timeSlotID string) ([]attendance.AttendanceResponse, error) {
	if _, err := s.TimeSlotRepository.GetByID(ctx, timeSlotID); err != nil {
		if errors.Is(err, timeslot.ErrTimeSlotNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get time slot: %w", err)
	}

	list, err := s.AttendanceRepository.FindManyBy(ctx,
		attendance.Filter{TimeSlotID: &timeSlotID},
		attendance.FindOptions{PopulateUser: true, PopulateSignFile: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}

	return attendance.NewAttendanceResponses(list), nil
}

// GetByID implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetByID(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	att, err := s.AttendanceRepository.FindOneByID(ctx, id, attendance.FindOptions{PopulateSignFile: true})
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return attendance.NewAttendanceResponse(att), nil
}

// SetPresence implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SetPresence(ctx context.Context, req attendance.SetPresenceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := s.AttendanceRepository.UpdatePresence(ctx, req.AttendanceID, *req.IsPresent)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update presence: %w", err)
	}

	metrics.RecordTransition(string(updated.State()), 1)
	return attendance.NewAttendanceResponse(updated), nil
}

// Sign implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Sign(ctx context.Context, req attendance.SignRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	current, err := s.AttendanceRepository.FindOneByID(ctx, req.AttendanceID, attendance.FindOptions{})
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	if current.UserID != req.UserID {
		return attendance.AttendanceResponse{}, s.reject(attendance.ErrNotAttendanceOwner)
	}
	if current.IsSigned() {
		return attendance.AttendanceResponse{}, s.reject(attendance.ErrAlreadySigned)
	}
	if current.IsMarkedAbsent() {
		return attendance.AttendanceResponse{}, s.reject(attendance.ErrAbsentCannotSign)
	}

	signFile, err := s.fileRepository.FindOneByID(ctx, req.SignFileID)
	if err != nil {
		if errors.Is(err, file.ErrFileNotFound) {
			return attendance.AttendanceResponse{}, s.reject(attendance.ErrSignFileNotFound)
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get sign file: %w", err)
	}

	used, err := s.AttendanceRepository.IsSignFileAlreadyUsedForSign(ctx, req.UserID, signFile.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check sign file usage: %w", err)
	}
	if used {
		return attendance.AttendanceResponse{}, s.reject(attendance.ErrSignFileAlreadyUsed)
	}

	signed, err := s.AttendanceRepository.Sign(ctx, current.ID, signFile.ID, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrAttendanceNotFound):
			return attendance.AttendanceResponse{}, err
		case errors.Is(err, attendance.ErrAlreadySigned),
			errors.Is(err, attendance.ErrAbsentCannotSign),
			errors.Is(err, attendance.ErrSignFileAlreadyUsed),
			errors.Is(err, attendance.ErrSignFileNotFound):
			return attendance.AttendanceResponse{}, s.reject(err)
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to sign attendance: %w", err)
	}
	signed.SignFile = &signFile

	metrics.RecordTransition(string(attendance.StateSigned), 1)
	slog.Info("attendance signed", "attendance_id", signed.ID, "user_id", signed.UserID)

	return attendance.NewAttendanceResponse(signed), nil
}

// ListForUser implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListForUser(ctx context.Context, userID string) ([]attendance.AttendanceResponse, error) {
	list, err := s.AttendanceRepository.FindManyBy(ctx,
		attendance.Filter{UserID: &userID},
		attendance.FindOptions{PopulateSignFile: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	return attendance.NewAttendanceResponses(list), nil
}

var rejectionReasons = map[error]string{
	attendance.ErrNotAttendanceOwner:  "not_owner",
	attendance.ErrAlreadySigned:       "already_signed",
	attendance.ErrAbsentCannotSign:    "absent",
	attendance.ErrSignFileNotFound:    "sign_file_not_found",
	attendance.ErrSignFileAlreadyUsed: "sign_file_reused",
}

// reject counts a refused sign attempt and returns err unchanged.
func (s *AttendanceServiceImpl) reject(err error) error {
	reason, ok := rejectionReasons[err]
	if !ok {
		reason = "other"
	}
	metrics.RecordRejection("sign", reason)
	return err
}
