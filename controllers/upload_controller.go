package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
)

// UploadController accepts dashboard file uploads (part photos, invoices)
type UploadController struct {
	uploads *services.UploadService
	logger  *zap.Logger
}

// NewUploadController creates an UploadController
func NewUploadController(uploads *services.UploadService, logger *zap.Logger) *UploadController {
	return &UploadController{uploads: uploads, logger: logger}
}

// UploadSingle handles POST /upload-single with a "file" form field
func (uc *UploadController) UploadSingle(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, uc.logger, &utils.FileUploadError{Code: "NO_FILE", Message: "No file was uploaded"})
		return
	}

	file, err := uc.uploads.UploadSingle(c.Request.Context(), fileHeader)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, file)
}

// UploadMultiple handles POST /upload-multiple with one or more "files" form fields
func (uc *UploadController) UploadMultiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, uc.logger, &utils.FileUploadError{Code: "NO_FILE", Message: "No files were uploaded"})
		return
	}

	files, err := uc.uploads.UploadMultiple(c.Request.Context(), form.File["files"])
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, files)
}
