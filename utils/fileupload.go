package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// MaxFilesPerUpload caps /upload-multiple
	MaxFilesPerUpload = 10
)

// allowedUploadTypes maps accepted extensions to the content type stored with the object
var allowedUploadTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateUploadFile validates the uploaded file format and size and
// returns the content type to store it with
func ValidateUploadFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", &FileUploadError{
			Code:    "NO_FILE",
			Message: "No file was uploaded",
		}
	}

	// Check file size
	if fileHeader.Size > MaxFileSize {
		return "", &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedUploadTypes[ext]
	if !ok {
		return "", &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedExtensions(), ", ")),
		}
	}

	return contentType, nil
}

// AllowedExtensions lists accepted extensions in a stable order
func AllowedExtensions() []string {
	exts := make([]string, 0, len(allowedUploadTypes))
	for ext := range allowedUploadTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// SanitizeFilename strips directories and characters that do not belong in an object key
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
