package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUploadRouter(t *testing.T) (*gin.Engine, *services.MockS3Service) {
	t.Helper()
	storage := services.NewMockS3Service()
	logger := testutil.NewTestLogger()
	uc := NewUploadController(services.NewUploadService(storage, logger), logger)

	router := gin.New()
	router.POST("/upload-single", uc.UploadSingle)
	router.POST("/upload-multiple", uc.UploadMultiple)
	return router, storage
}

func postMultipart(router http.Handler, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadSingle(t *testing.T) {
	router, storage := setupUploadRouter(t)

	body, contentType := testutil.MultipartBody(t, "file", map[string][]byte{"engine.png": []byte("png")})
	w := postMultipart(router, "/upload-single", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var file services.UploadedFile
	decodeData(t, w, &file)
	assert.Equal(t, "engine.png", file.OriginalName)
	assert.True(t, storage.FileExists(file.Key))
	assert.NotEmpty(t, file.URL)
}

func TestUploadSingle_Rejections(t *testing.T) {
	router, storage := setupUploadRouter(t)

	body, contentType := testutil.MultipartBody(t, "file", map[string][]byte{"notes.txt": []byte("hi")})
	w := postMultipart(router, "/upload-single", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE_FORMAT", decodeEnvelope(t, w).Error.Code)

	body, contentType = testutil.MultipartBody(t, "other", map[string][]byte{"a.png": []byte("a")})
	w = postMultipart(router, "/upload-single", body, contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_FILE", decodeEnvelope(t, w).Error.Code)

	assert.Equal(t, 0, storage.Count())
}

func TestUploadMultiple(t *testing.T) {
	router, storage := setupUploadRouter(t)

	body, contentType := testutil.MultipartBody(t, "files", map[string][]byte{
		"front.jpg":   []byte("front"),
		"invoice.pdf": []byte("pdf"),
	})
	w := postMultipart(router, "/upload-multiple", body, contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var files []services.UploadedFile
	decodeData(t, w, &files)
	assert.Len(t, files, 2)
	assert.Equal(t, 2, storage.Count())

	w = performRequest(router, http.MethodPost, "/upload-multiple", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_FILE", decodeEnvelope(t, w).Error.Code)
}
