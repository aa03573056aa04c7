package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type timeSlotRepositoryImpl struct {
	db *database.DB
}

func NewTimeSlotRepository(db *database.DB) timeslot.TimeSlotRepository {
	return &timeSlotRepositoryImpl{db: db}
}

// Create implements timeslot.TimeSlotRepository.
func (r *timeSlotRepositoryImpl) Create(ctx context.Context, slot timeslot.TimeSlot) (timeslot.TimeSlot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_slots (group_id, start_date, end_date)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, start_date, end_date, created_at
	`

	var created timeslot.TimeSlot
	err := q.QueryRow(ctx, query, slot.GroupID, slot.StartDate, slot.EndDate).Scan(
		&created.ID, &created.GroupID, &created.StartDate, &created.EndDate, &created.CreatedAt,
	)
	if err != nil {
		if database.IsPgError(err, database.ForeignKeyViolation) {
			return timeslot.TimeSlot{}, timeslot.ErrGroupNotFound
		}
		return timeslot.TimeSlot{}, fmt.Errorf("failed to create time slot: %w", err)
	}
	return created, nil
}

// GetByID implements timeslot.TimeSlotRepository.
func (r *timeSlotRepositoryImpl) GetByID(ctx context.Context, id string) (timeslot.TimeSlot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, group_id, start_date, end_date, created_at
		FROM time_slots
		WHERE id = $1
	`

	var slot timeslot.TimeSlot
	err := q.QueryRow(ctx, query, id).Scan(
		&slot.ID, &slot.GroupID, &slot.StartDate, &slot.EndDate, &slot.CreatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return timeslot.TimeSlot{}, timeslot.ErrTimeSlotNotFound
		}
		return timeslot.TimeSlot{}, fmt.Errorf("failed to get time slot: %w", err)
	}
	return slot, nil
}

// GetWithGroupUsers implements timeslot.TimeSlotRepository.
func (r *timeSlotRepositoryImpl) GetWithGroupUsers(ctx context.Context, id string) (timeslot.TimeSlot, error) {
	slot, err := r.GetByID(ctx, id)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}

	group, err := loadGroup(ctx, GetQuerier(ctx, r.db), slot.GroupID)
	if err != nil {
		return timeslot.TimeSlot{}, err
	}
	slot.Group = &group

	return slot, nil
}

// List implements timeslot.TimeSlotRepository.
func (r *timeSlotRepositoryImpl) List(ctx context.Context, filter timeslot.TimeSlotFilter) ([]timeslot.TimeSlot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, group_id, start_date, end_date, created_at
		FROM time_slots
	`
	args := []interface{}{}
	if filter.GroupID != nil {
		query += ` WHERE group_id = $1`
		args = append(args, *filter.GroupID)
	}
	query += ` ORDER BY start_date DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list time slots: %w", err)
	}
	defer rows.Close()

	slots := make([]timeslot.TimeSlot, 0)
	for rows.Next() {
		var slot timeslot.TimeSlot
		if err := rows.Scan(&slot.ID, &slot.GroupID, &slot.StartDate, &slot.EndDate, &slot.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time slots: %w", err)
	}

	return slots, nil
}
