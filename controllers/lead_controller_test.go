package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLeadRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/lead-7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "lead-7", "created_time": "2024-03-05T10:30:00+0000", "field_data": [{"name": "full_name", "values": ["Sam"]}]}`)
	})
	mux.HandleFunc("/form-1/leads", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"id": "lead-7"}, {"id": "lead-8"}], "paging": {}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := testutil.TestConfig()
	cfg.MetaGraphURL = server.URL
	logger := testutil.NewTestLogger()
	db := testutil.NewTestDB(t)

	svc := services.NewLeadService(db, services.NewMetaClient(cfg), cfg.MetaVerifyToken, services.NewNotifier(logger, nil, ""), logger)
	lc := NewLeadController(svc, logger)

	router := gin.New()
	router.GET("/api/webhook", lc.VerifyWebhook)
	router.POST("/api/webhook", lc.ReceiveWebhook)
	router.POST("/api/leads/sync", lc.SyncLeads)
	router.GET("/api/leads", lc.ListLeads)
	return router, db
}

func TestLeadController_VerifyWebhook(t *testing.T) {
	router, _ := setupLeadRouter(t)

	w := performRequest(router, http.MethodGet, "/api/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=98765", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "98765", w.Body.String())

	w = performRequest(router, http.MethodGet, "/api/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=98765", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeadController_ReceiveWebhook(t *testing.T) {
	router, db := setupLeadRouter(t)
	body := `{"object": "page", "entry": [{"id": "page-1", "changes": [{"field": "leadgen", "value": {"leadgen_id": "lead-7", "form_id": "form-1"}}]}]}`

	for i := 0; i < 2; i++ {
		w := performRequest(router, http.MethodPost, "/api/webhook", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "EVENT_RECEIVED", w.Body.String())
	}
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.Lead{}))

	w := performRequest(router, http.MethodPost, "/api/webhook", `{"object": "instagram", "entry": []}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodPost, "/api/webhook", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadController_SyncAndList(t *testing.T) {
	router, _ := setupLeadRouter(t)

	w := performRequest(router, http.MethodPost, "/api/leads/sync", `{"formId": "form-1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success": true, "data": {"newLeadsCount": 2}}`, w.Body.String())

	w = performRequest(router, http.MethodPost, "/api/leads/sync", `{"formId": "form-1"}`)
	assert.JSONEq(t, `{"success": true, "data": {"newLeadsCount": 0}}`, w.Body.String())

	w = performRequest(router, http.MethodPost, "/api/leads/sync", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/leads", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page services.Page[models.Lead]
	decodeData(t, w, &page)
	assert.Equal(t, int64(2), page.Total)
}
