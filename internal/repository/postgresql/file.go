package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type fileRepositoryImpl struct {
	db *database.DB
}

func NewFileRepository(db *database.DB) file.FileRepository {
	return &fileRepositoryImpl{db: db}
}

// Create implements file.FileRepository.
func (r *fileRepositoryImpl) Create(ctx context.Context, f file.File) (file.File, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO files (owner_id, path, original_name, mime_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, path, original_name, mime_type, size, created_at
	`

	var created file.File
	err := q.QueryRow(ctx, query, f.OwnerID, f.Path, f.OriginalName, f.MimeType, f.Size).Scan(
		&created.ID, &created.OwnerID, &created.Path, &created.OriginalName,
		&created.MimeType, &created.Size, &created.CreatedAt,
	)
	if err != nil {
		return file.File{}, fmt.Errorf("failed to create file: %w", err)
	}
	return created, nil
}

// FindOneByID implements file.FileRepository.
func (r *fileRepositoryImpl) FindOneByID(ctx context.Context, id string) (file.File, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, owner_id, path, original_name, mime_type, size, created_at
		FROM files
		WHERE id = $1
	`

	var found file.File
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID, &found.OwnerID, &found.Path, &found.OriginalName,
		&found.MimeType, &found.Size, &found.CreatedAt,
	)
	if err != nil {
		if isNotFound(err) {
			return file.File{}, file.ErrFileNotFound
		}
		return file.File{}, fmt.Errorf("failed to get file: %w", err)
	}
	return found, nil
}
