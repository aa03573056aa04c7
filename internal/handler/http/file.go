package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/file"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/storage"
	"github.com/go-chi/chi/v5"
)

type FileHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Serve(w http.ResponseWriter, r *http.Request)
}

type fileHandlerImpl struct {
	fileService file.FileService
	storage     storage.FileStorage
}

func NewFileHandler(fileService file.FileService, storage storage.FileStorage) FileHandler {
	return &fileHandlerImpl{
		fileService: fileService,
		storage:     storage,
	}
}

// multipart overhead on top of the image itself
const uploadFormOverhead = 1 << 20

// Upload implements FileHandler.
func (h *fileHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, err := jwt.UserIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, file.MaxSignatureSize+uploadFormOverhead)
	if err := r.ParseMultipartForm(file.MaxSignatureSize + uploadFormOverhead); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, file.ErrFileTooLarge)
			return
		}
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	upload, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Failed to get file", "error", err)
		response.BadRequest(w, "Field 'file' is required", nil)
		return
	}
	defer upload.Close()

	result, err := h.fileService.UploadSignature(r.Context(), ownerID, upload, header.Filename, header.Size)
	if err != nil {
		slog.Error("UploadSignature service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "File uploaded successfully", result)
}

// Get implements FileHandler. Members only see files they uploaded.
func (h *fileHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	current, err := callerFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		slog.Error("GetFile service error", "error", err, "id", id)
		response.HandleError(w, err)
		return
	}
	if !current.canAccess(result.OwnerID) {
		response.HandleError(w, file.ErrNotFileOwner)
		return
	}

	response.Success(w, result)
}

// Serve streams a stored object for the public /uploads/* URLs.
func (h *fileHandlerImpl) Serve(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	body, err := h.storage.Download(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			response.HandleError(w, file.ErrFileNotFound)
			return
		}
		slog.Error("Download error", "error", err, "key", key)
		response.InternalServerError(w, "Failed to read file")
		return
	}
	defer body.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Error("Serve copy error", "error", err, "key", key)
	}
}
