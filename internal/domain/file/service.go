package file

import (
	"context"
	"io"
)

// MaxSignatureSize is the largest accepted signature upload.
const MaxSignatureSize = 5 << 20

type FileService interface {
	// UploadSignature normalises and stores a signature image owned by ownerID
	UploadSignature(ctx context.Context, ownerID string, r io.Reader, filename string, size int64) (FileResponse, error)

	GetFile(ctx context.Context, id string) (FileResponse, error)
}
