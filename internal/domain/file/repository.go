package file

import (
	"context"
)

type FileRepository interface {
	Create(ctx context.Context, f File) (File, error)
	FindOneByID(ctx context.Context, id string) (File, error)
}
