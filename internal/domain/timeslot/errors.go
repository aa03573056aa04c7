package timeslot

import "errors"

var (
	ErrTimeSlotNotFound = errors.New("time slot not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrInvalidTimeRange = errors.New("end_date must be after start_date")
)
