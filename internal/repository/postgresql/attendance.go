package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	attendanceColumns = `a.id, a.time_slot_id, a.user_id, a.is_present, a.sign_file_id, a.sign_date, a.created_at, a.updated_at`
	returningColumns  = `id, time_slot_id, user_id, is_present, sign_file_id, sign_date, created_at, updated_at`

	constraintTimeSlotUser = "uq_attendances_time_slot_user"
	constraintUserSignFile = "uq_attendances_user_sign_file"
	constraintSignFileFK   = "attendances_sign_file_id_fkey"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// selectAttendance builds the SELECT with the joins requested in opts.
func selectAttendance(opts attendance.FindOptions) string {
	var cols strings.Builder
	var joins strings.Builder

	cols.WriteString(attendanceColumns)
	if opts.PopulateUser {
		cols.WriteString(`, u.id, u.email, u.first_name, u.last_name, u.role, u.created_at, u.updated_at`)
		joins.WriteString(` LEFT JOIN users u ON u.id = a.user_id`)
	}
	if opts.PopulateSignFile {
		cols.WriteString(`, f.id, f.owner_id, f.path, f.original_name, f.mime_type, f.size, f.created_at`)
		joins.WriteString(` LEFT JOIN files f ON f.id = a.sign_file_id`)
	}

	return fmt.Sprintf(`SELECT %s FROM attendances a%s`, cols.String(), joins.String())
}

func scanAttendance(row pgx.Row, opts attendance.FindOptions) (attendance.Attendance, error) {
	var att attendance.Attendance
	dest := []interface{}{
		&att.ID, &att.TimeSlotID, &att.UserID, &att.IsPresent,
		&att.SignFileID, &att.SignDate, &att.CreatedAt, &att.UpdatedAt,
	}

	var (
		userID, userEmail, userFirst, userLast, userRole *string
		userCreated, userUpdated                         *time.Time
		fileID, fileOwner, filePath, fileName, fileMime  *string
		fileSize                                         *int64
		fileCreated                                      *time.Time
	)
	if opts.PopulateUser {
		dest = append(dest, &userID, &userEmail, &userFirst, &userLast, &userRole, &userCreated, &userUpdated)
	}
	if opts.PopulateSignFile {
		dest = append(dest, &fileID, &fileOwner, &filePath, &fileName, &fileMime, &fileSize, &fileCreated)
	}

	if err := row.Scan(dest...); err != nil {
		return attendance.Attendance{}, err
	}

	if userID != nil {
		att.User = &user.User{
			ID:        *userID,
			Email:     *userEmail,
			FirstName: *userFirst,
			LastName:  *userLast,
			Role:      user.Role(*userRole),
			CreatedAt: *userCreated,
			UpdatedAt: *userUpdated,
		}
	}
	if fileID != nil {
		att.SignFile = &file.File{
			ID:           *fileID,
			OwnerID:      *fileOwner,
			Path:         *filePath,
			OriginalName: *fileName,
			MimeType:     *fileMime,
			Size:         *fileSize,
			CreatedAt:    *fileCreated,
		}
	}

	return att, nil
}

// FindManyBy implements attendance.AttendanceRepository.
func (r *attendanceRepository) FindManyBy(ctx context.Context, filter attendance.Filter, opts attendance.FindOptions) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	where := []string{}
	args := []interface{}{}
	argIdx := 1

	if filter.TimeSlotID != nil {
		where = append(where, fmt.Sprintf("a.time_slot_id = $%d", argIdx))
		args = append(args, *filter.TimeSlotID)
		argIdx++
	}
	if filter.UserID != nil {
		where = append(where, fmt.Sprintf("a.user_id = $%d", argIdx))
		args = append(args, *filter.UserID)
		argIdx++
	}

	query := selectAttendance(opts)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.created_at ASC, a.id ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		if database.IsPgError(err, database.InvalidTextRepresentation) {
			return []attendance.Attendance{}, nil
		}
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendances: %w", err)
	}

	return attendances, nil
}

// FindOneByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) FindOneByID(ctx context.Context, id string, opts attendance.FindOptions) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := selectAttendance(opts) + " WHERE a.id = $1"

	att, err := scanAttendance(q.QueryRow(ctx, query, id), opts)
	if err != nil {
		if isNotFound(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// ExistsForTimeSlot implements attendance.AttendanceRepository.
func (r *attendanceRepository) ExistsForTimeSlot(ctx context.Context, timeSlotID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM attendances WHERE time_slot_id = $1)`, timeSlotID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendances: %w", err)
	}
	return exists, nil
}

// CreateMany implements attendance.AttendanceRepository.
func (r *attendanceRepository) CreateMany(ctx context.Context, attendances []attendance.Attendance) ([]attendance.Attendance, error) {
	if len(attendances) == 0 {
		return []attendance.Attendance{}, nil
	}

	query := `
		INSERT INTO attendances (time_slot_id, user_id, is_present)
		VALUES ($1, $2, $3)
		RETURNING ` + returningColumns

	created := make([]attendance.Attendance, 0, len(attendances))
	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		batch := &pgx.Batch{}
		for _, att := range attendances {
			batch.Queue(query, att.TimeSlotID, att.UserID, att.IsPresent)
		}

		br := q.SendBatch(txCtx, batch)
		for range attendances {
			att, err := scanAttendance(br.QueryRow(), attendance.FindOptions{})
			if err != nil {
				br.Close()
				return err
			}
			created = append(created, att)
		}
		return br.Close()
	})
	if err != nil {
		if database.ConstraintName(err) == constraintTimeSlotUser {
			return nil, attendance.ErrAttendancesAlreadyInitialized
		}
		return nil, fmt.Errorf("failed to create attendances: %w", err)
	}

	return created, nil
}

// UpdatePresence implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpdatePresence(ctx context.Context, id string, isPresent bool) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET is_present   = $2::boolean,
		    sign_file_id = CASE WHEN $2::boolean THEN sign_file_id ELSE NULL END,
		    sign_date    = CASE WHEN $2::boolean THEN sign_date ELSE NULL END,
		    updated_at   = NOW()
		WHERE id = $1
		RETURNING ` + returningColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, id, isPresent), attendance.FindOptions{})
	if err != nil {
		if isNotFound(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update presence: %w", err)
	}
	return att, nil
}

// Sign implements attendance.AttendanceRepository.
func (r *attendanceRepository) Sign(ctx context.Context, id string, signFileID string, signedAt time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET sign_file_id = $2,
		    sign_date    = $3,
		    is_present   = TRUE,
		    updated_at   = NOW()
		WHERE id = $1
		  AND sign_date IS NULL
		  AND is_present IS DISTINCT FROM FALSE
		RETURNING ` + returningColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, id, signFileID, signedAt), attendance.FindOptions{})
	if err == nil {
		return att, nil
	}

	switch database.ConstraintName(err) {
	case constraintUserSignFile:
		return attendance.Attendance{}, attendance.ErrSignFileAlreadyUsed
	case constraintSignFileFK:
		return attendance.Attendance{}, attendance.ErrSignFileNotFound
	}
	if !isNotFound(err) {
		return attendance.Attendance{}, fmt.Errorf("failed to sign attendance: %w", err)
	}

	// The guard rejected the row; re-read to report why.
	current, err := r.FindOneByID(ctx, id, attendance.FindOptions{})
	if err != nil {
		return attendance.Attendance{}, err
	}
	if current.IsMarkedAbsent() {
		return attendance.Attendance{}, attendance.ErrAbsentCannotSign
	}
	return attendance.Attendance{}, attendance.ErrAlreadySigned
}

// IsSignFileAlreadyUsedForSign implements attendance.AttendanceRepository.
func (r *attendanceRepository) IsSignFileAlreadyUsedForSign(ctx context.Context, userID string, signFileID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM attendances
			WHERE user_id = $1 AND sign_file_id = $2 AND sign_date IS NOT NULL
		)
	`

	var used bool
	if err := q.QueryRow(ctx, query, userID, signFileID).Scan(&used); err != nil {
		return false, fmt.Errorf("failed to check sign file usage: %w", err)
	}
	return used, nil
}
