package file

import "errors"

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrInvalidFileType = errors.New("invalid file type: only jpg, jpeg, png allowed")
	ErrFileTooLarge    = errors.New("file size must not exceed 5MB")
	ErrInvalidImage    = errors.New("file is not a decodable image")
	ErrNotFileOwner    = errors.New("you can only access your own files")
)
