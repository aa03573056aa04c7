package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Import for JPEG decoding support
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// maxSignatureWidth bounds stored signatures; larger uploads are scaled down.
const maxSignatureWidth = 800

// maxSourcePixels caps the decoded size of an upload, checked from the header before decoding.
const maxSourcePixels = 4096 * 4096

var allowedExts = []string{".jpg", ".jpeg", ".png"}

type fileServiceImpl struct {
	file.FileRepository
	storage storage.FileStorage
}

func NewFileService(fileRepository file.FileRepository, storage storage.FileStorage) file.FileService {
	return &fileServiceImpl{
		FileRepository: fileRepository,
		storage:        storage,
	}
}

// UploadSignature implements file.FileService.
func (s *fileServiceImpl) UploadSignature(ctx context.Context, ownerID string, r io.Reader, filename string, size int64) (file.FileResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	isValid := false
	for _, allowed := range allowedExts {
		if ext == allowed {
			isValid = true
			break
		}
	}
	if !isValid {
		return file.FileResponse{}, file.ErrInvalidFileType
	}
	if size > file.MaxSignatureSize {
		return file.FileResponse{}, file.ErrFileTooLarge
	}

	// size comes from the client, so the read is bounded as well
	buffer, err := io.ReadAll(io.LimitReader(r, file.MaxSignatureSize+1))
	if err != nil {
		return file.FileResponse{}, fmt.Errorf("failed to read signature: %w", err)
	}
	if len(buffer) > file.MaxSignatureSize {
		return file.FileResponse{}, file.ErrFileTooLarge
	}

	normalized, err := normalizeSignature(buffer)
	if err != nil {
		return file.FileResponse{}, err
	}

	path := filepath.Join("signatures", ownerID, uuid.New().String()+".png")
	storedPath, err := s.storage.Upload(ctx, bytes.NewReader(normalized), path, "image/png")
	if err != nil {
		return file.FileResponse{}, fmt.Errorf("failed to upload signature: %w", err)
	}

	created, err := s.FileRepository.Create(ctx, file.File{
		OwnerID:      ownerID,
		Path:         storedPath,
		OriginalName: filepath.Base(filename),
		MimeType:     "image/png",
		Size:         int64(len(normalized)),
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, storedPath); delErr != nil {
			slog.Error("failed to remove orphaned signature", "path", storedPath, "error", delErr)
		}
		return file.FileResponse{}, fmt.Errorf("failed to save file metadata: %w", err)
	}

	return s.toResponse(ctx, created)
}

// GetFile implements file.FileService.
func (s *fileServiceImpl) GetFile(ctx context.Context, id string) (file.FileResponse, error) {
	found, err := s.FileRepository.FindOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, file.ErrFileNotFound) {
			return file.FileResponse{}, err
		}
		return file.FileResponse{}, fmt.Errorf("failed to get file: %w", err)
	}

	exists, err := s.storage.Exists(ctx, found.Path)
	if err != nil {
		return file.FileResponse{}, fmt.Errorf("failed to check stored file: %w", err)
	}
	if !exists {
		slog.Warn("file metadata without stored content", "file_id", found.ID, "path", found.Path)
		return file.FileResponse{}, file.ErrFileNotFound
	}

	return s.toResponse(ctx, found)
}

func (s *fileServiceImpl) toResponse(ctx context.Context, f file.File) (file.FileResponse, error) {
	url, err := s.storage.GetURL(ctx, f.Path)
	if err != nil {
		return file.FileResponse{}, fmt.Errorf("failed to build file url: %w", err)
	}
	return file.FileResponse{
		ID:           f.ID,
		OwnerID:      f.OwnerID,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		URL:          url,
		CreatedAt:    f.CreatedAt,
	}, nil
}

// ==================== HELPER FUNCTIONS ====================

// normalizeSignature decodes a jpeg or png and re-encodes it as png,
// scaled down to maxSignatureWidth when wider.
func normalizeSignature(buffer []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buffer))
	if err != nil {
		return nil, file.ErrInvalidImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, file.ErrInvalidImage
	}

	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, file.ErrInvalidImage
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxSignatureWidth {
		height := bounds.Dy() * maxSignatureWidth / bounds.Dx()
		if height < 1 {
			height = 1
		}
		img = resizeImage(img, maxSignatureWidth, height)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
