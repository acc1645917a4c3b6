package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/kendall-kelly/autoparts-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const leadWebhookBody = `{
	"object": "page",
	"entry": [{"id": "page-9", "time": 1709634600, "changes": [{"field": "leadgen", "value": {"leadgen_id": "lead-1", "form_id": "form-1", "ad_id": "ad-3", "created_time": 1709634600}}]}]
}`

// fakeGraphAPI serves a lead lookup and a two-page leads listing
func fakeGraphAPI(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var listCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/lead-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "meta-token", r.URL.Query().Get("access_token"))
		fmt.Fprint(w, `{"id": "lead-1", "created_time": "2024-03-05T10:30:00+0000", "field_data": [{"name": "email", "values": ["x@y.com"]}], "campaign_name": "Spring"}`)
	})
	mux.HandleFunc("/lead-broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	var server *httptest.Server
	mux.HandleFunc("/form-1/leads", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&listCalls, 1)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		fmt.Fprintf(w, `{"data": [{"id": "lead-1", "created_time": "2024-03-05T10:30:00+0000"}, {"id": "lead-2"}], "paging": {"next": "%s/form-1/leads-page-2"}}`, server.URL)
	})
	mux.HandleFunc("/form-1/leads-page-2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"id": "lead-3", "field_data": []}, {"id": "lead-2"}], "paging": {}}`)
	})
	mux.HandleFunc("/form-bad/leads", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190}}`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &listCalls
}

func setupLeadService(t *testing.T, accessToken string) (*LeadService, *gorm.DB, *Notifier) {
	t.Helper()
	server, _ := fakeGraphAPI(t)
	db := testutil.NewTestDB(t)

	cfg := testutil.TestConfig()
	cfg.MetaGraphURL = server.URL
	cfg.MetaAccessToken = accessToken

	notifier := NewNotifier(zap.NewNop(), nil, "")
	return NewLeadService(db, NewMetaClient(cfg), cfg.MetaVerifyToken, notifier, zap.NewNop()), db, notifier
}

func TestVerifySubscription(t *testing.T) {
	svc, _, _ := setupLeadService(t, "meta-token")

	challenge, err := svc.VerifySubscription("subscribe", "verify-me", "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", challenge)

	_, err = svc.VerifySubscription("subscribe", "wrong", "12345")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))

	_, err = svc.VerifySubscription("unsubscribe", "verify-me", "12345")
	assert.True(t, utils.IsKind(err, utils.KindForbidden))
}

func TestProcessWebhook_StoresLeadOnce(t *testing.T) {
	svc, db, notifier := setupLeadService(t, "meta-token")
	events, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	lead, err := svc.ProcessWebhook(context.Background(), []byte(leadWebhookBody))
	require.NoError(t, err)
	assert.Equal(t, "lead-1", lead.LeadgenID)
	assert.Equal(t, "form-1", lead.FormID)
	assert.Equal(t, "page-9", lead.PageID)
	assert.Equal(t, "ad-3", lead.AdID)
	assert.Equal(t, "Spring", lead.CampaignName)
	assert.Equal(t, 2024, lead.CreatedTime.Year())
	assert.JSONEq(t, `[{"name": "email", "values": ["x@y.com"]}]`, string(lead.FieldData))
	assert.Equal(t, EventNewLead, receive(t, events).Name)

	again, err := svc.ProcessWebhook(context.Background(), []byte(leadWebhookBody))
	require.NoError(t, err)
	assert.Equal(t, lead.ID, again.ID)
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.Lead{}))

	select {
	case ev := <-events:
		t.Fatalf("redelivered lead emitted %s", ev.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProcessWebhook_Errors(t *testing.T) {
	svc, _, _ := setupLeadService(t, "meta-token")

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{"object": "instagram", "entry": []}`))
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.ProcessWebhook(context.Background(), []byte(`not json`))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.ProcessWebhook(context.Background(), []byte(`{"object": "page", "entry": [{"changes": [{"value": {}}]}]}`))
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.ProcessWebhook(context.Background(), []byte(`{"object": "page", "entry": [{"changes": [{"value": {"leadgen_id": "lead-broken"}}]}]}`))
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	assert.Equal(t, "500 Internal Server Error", err.Error())
}

func TestProcessWebhook_MissingAccessToken(t *testing.T) {
	svc, _, _ := setupLeadService(t, "")

	_, err := svc.ProcessWebhook(context.Background(), []byte(leadWebhookBody))
	assert.True(t, utils.IsKind(err, utils.KindConfig))

	_, err = svc.SyncLeadsFromMeta(context.Background(), "form-1")
	assert.True(t, utils.IsKind(err, utils.KindConfig))
}

func TestSyncLeadsFromMeta_Idempotent(t *testing.T) {
	svc, db, _ := setupLeadService(t, "meta-token")

	count, err := svc.SyncLeadsFromMeta(context.Background(), "form-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = svc.SyncLeadsFromMeta(context.Background(), "form-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(3), testutil.CountRows(t, db, &models.Lead{}))

	var lead models.Lead
	require.NoError(t, db.Where("leadgen_id = ?", "lead-2").First(&lead).Error)
	assert.Equal(t, "form-1", lead.FormID)

	page, err := svc.ListLeads(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)
}

func TestSyncLeadsFromMeta_Errors(t *testing.T) {
	svc, _, _ := setupLeadService(t, "meta-token")

	_, err := svc.SyncLeadsFromMeta(context.Background(), " ")
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.SyncLeadsFromMeta(context.Background(), "form-bad")
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	assert.Equal(t, "Invalid OAuth access token.", err.Error())
}
