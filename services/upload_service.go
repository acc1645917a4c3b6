package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
)

// UploadedFile is what the dashboard gets back for each stored file
type UploadedFile struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	Size         int64  `json:"size"`
}

// UploadService validates files and stores them in object storage
type UploadService struct {
	storage S3Interface
	logger  *zap.Logger
}

// NewUploadService creates an UploadService backed by storage
func NewUploadService(storage S3Interface, logger *zap.Logger) *UploadService {
	return &UploadService{storage: storage, logger: logger}
}

// UploadSingle validates and stores one file
func (s *UploadService) UploadSingle(ctx context.Context, fileHeader *multipart.FileHeader) (*UploadedFile, error) {
	contentType, err := utils.ValidateUploadFile(fileHeader)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, fileHeader, contentType)
}

// UploadMultiple validates every file before storing any of them
func (s *UploadService) UploadMultiple(ctx context.Context, fileHeaders []*multipart.FileHeader) ([]UploadedFile, error) {
	if len(fileHeaders) == 0 {
		return nil, &utils.FileUploadError{Code: "NO_FILE", Message: "No files were uploaded"}
	}
	if len(fileHeaders) > utils.MaxFilesPerUpload {
		return nil, &utils.FileUploadError{
			Code:    "TOO_MANY_FILES",
			Message: fmt.Sprintf("At most %d files can be uploaded at once", utils.MaxFilesPerUpload),
		}
	}

	contentTypes := make([]string, len(fileHeaders))
	for i, fh := range fileHeaders {
		ct, err := utils.ValidateUploadFile(fh)
		if err != nil {
			return nil, err
		}
		contentTypes[i] = ct
	}

	uploaded := make([]UploadedFile, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		file, err := s.store(ctx, fh, contentTypes[i])
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, *file)
	}
	return uploaded, nil
}

// Delete removes a previously uploaded object
func (s *UploadService) Delete(ctx context.Context, key string) error {
	if err := s.storage.DeleteFile(ctx, key); err != nil {
		return utils.NewUpstreamError("failed to delete file", err)
	}
	return nil
}

func (s *UploadService) store(ctx context.Context, fileHeader *multipart.FileHeader, contentType string) (*UploadedFile, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.Warn("failed to close upload", zap.Error(closeErr))
		}
	}()

	key := fmt.Sprintf("uploads/%s_%s", uuid.NewString(), utils.SanitizeFilename(fileHeader.Filename))
	if err := s.storage.PutObject(ctx, key, contentType, file); err != nil {
		return nil, utils.NewUpstreamError("failed to upload file", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, key)
	if err != nil {
		return nil, utils.NewUpstreamError("failed to generate file URL", err)
	}

	s.logger.Info("file uploaded",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("size", fileHeader.Size),
	)

	return &UploadedFile{
		Key:          key,
		URL:          url,
		OriginalName: fileHeader.Filename,
		ContentType:  contentType,
		Size:         fileHeader.Size,
	}, nil
}
