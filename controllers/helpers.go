package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
)

// fieldError is one entry of the details array of a validation failure
type fieldError struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

func respondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondErrorBody(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// respondError maps service and binding errors to the error envelope
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validationErrs validator.ValidationErrors
		uploadErr      *utils.FileUploadError
		enumErr        *models.EnumError
	)

	if appErr, ok := utils.AsAppError(err); ok {
		status := appErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("code", appErr.Code),
				zap.Error(err),
			)
		}
		respondErrorBody(c, status, appErr.Code, appErr.Message, nil)
		return
	}

	switch {
	case errors.As(err, &validationErrs):
		details := make([]fieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fieldError{Path: fieldPath(fe), Info: fe.Tag()})
		}
		respondErrorBody(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", details)
	case errors.As(err, &uploadErr):
		respondErrorBody(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
	case errors.As(err, &enumErr):
		respondErrorBody(c, http.StatusBadRequest, "INVALID_ENUM", enumErr.Error(), nil)
	default:
		logger.Error("unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		respondErrorBody(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// fieldPath drops the top-level struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// bindJSON decodes the request body. Decoding failures become INVALID_JSON;
// validation failures are returned as-is so respondError can list them.
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return err
	}
	if appErr, ok := utils.AsAppError(err); ok {
		return appErr
	}

	message := err.Error()
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		message = "Request body is empty"
	case errors.As(err, &syntaxErr):
		message = "Request body is not valid JSON"
	}
	return utils.NewValidationError("INVALID_JSON", message)
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.NewValidationError("INVALID_ID", name+" must be a positive integer")
	}
	return uint(id), nil
}

// queryInt reads an optional integer query parameter
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, utils.NewValidationError("INVALID_QUERY", name+" must be a non-negative integer")
	}
	return n, nil
}
