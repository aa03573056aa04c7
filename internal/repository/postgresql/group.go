package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/timeslot"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type groupRepositoryImpl struct {
	db *database.DB
}

func NewGroupRepository(db *database.DB) timeslot.GroupRepository {
	return &groupRepositoryImpl{db: db}
}

// Create implements timeslot.GroupRepository.
func (r *groupRepositoryImpl) Create(ctx context.Context, group timeslot.Group) (timeslot.Group, error) {
	q := GetQuerier(ctx, r.db)

	var created timeslot.Group
	err := q.QueryRow(ctx, `INSERT INTO groups (name) VALUES ($1) RETURNING id, name, created_at`, group.Name).
		Scan(&created.ID, &created.Name, &created.CreatedAt)
	if err != nil {
		return timeslot.Group{}, fmt.Errorf("failed to create group: %w", err)
	}
	created.Users = []user.User{}
	return created, nil
}

// GetByID implements timeslot.GroupRepository.
func (r *groupRepositoryImpl) GetByID(ctx context.Context, id string) (timeslot.Group, error) {
	return loadGroup(ctx, GetQuerier(ctx, r.db), id)
}

// AddMembers implements timeslot.GroupRepository.
func (r *groupRepositoryImpl) AddMembers(ctx context.Context, groupID string, userIDs []string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO group_members (group_id, user_id)
		SELECT $1, u FROM UNNEST($2::uuid[]) AS u
		ON CONFLICT (group_id, user_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, groupID, userIDs)
	if err != nil {
		if database.IsPgError(err, database.ForeignKeyViolation) {
			if database.ConstraintName(err) == "group_members_group_id_fkey" {
				return 0, timeslot.ErrGroupNotFound
			}
			return 0, user.ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to add group members: %w", err)
	}
	return tag.RowsAffected(), nil
}

// loadGroup reads a group and its members ordered by name.
func loadGroup(ctx context.Context, q database.Querier, id string) (timeslot.Group, error) {
	var group timeslot.Group
	err := q.QueryRow(ctx, `SELECT id, name, created_at FROM groups WHERE id = $1`, id).
		Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		if isNotFound(err) {
			return timeslot.Group{}, timeslot.ErrGroupNotFound
		}
		return timeslot.Group{}, fmt.Errorf("failed to get group: %w", err)
	}

	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.apple_id, u.role, u.created_at, u.updated_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY u.last_name, u.first_name, u.id
	`
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return timeslot.Group{}, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	group.Users = make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return timeslot.Group{}, fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Users = append(group.Users, u)
	}
	if err := rows.Err(); err != nil {
		return timeslot.Group{}, fmt.Errorf("error iterating group members: %w", err)
	}

	return group, nil
}
