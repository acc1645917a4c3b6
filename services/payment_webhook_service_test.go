package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/kendall-kelly/autoparts-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIngest_DuplicateReturnsFirstRecord(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewPaymentWebhookService(db, zap.NewNop())

	first, err := svc.Ingest(context.Background(), "Stripe", []byte(`{"id": "evt-1", "type": "charge.succeeded", "amount": 100}`))
	require.NoError(t, err)
	assert.Equal(t, "stripe", first.Provider)
	assert.Equal(t, "evt-1", first.EventID)
	assert.False(t, first.Processed)

	second, err := svc.Ingest(context.Background(), "stripe", []byte(`{"id": "evt-1", "type": "charge.refunded", "amount": 5}`))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "charge.succeeded", second.Type)
	assert.JSONEq(t, string(first.Payload), string(second.Payload))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.WebhookEvent{}))
}

func TestIngest_AcceptsEventIDField(t *testing.T) {
	svc := NewPaymentWebhookService(testutil.NewTestDB(t), zap.NewNop())

	event, err := svc.Ingest(context.Background(), "", []byte(`{"eventId": "evt-9", "type": "payment.pending"}`))
	require.NoError(t, err)
	assert.Equal(t, "evt-9", event.EventID)
	assert.Equal(t, "unknown", event.Provider)
}

func TestIngest_Malformed(t *testing.T) {
	svc := NewPaymentWebhookService(testutil.NewTestDB(t), zap.NewNop())

	for _, body := range []string{`{`, `{"type": "x"}`, `{"id": "evt-2"}`, `[]`} {
		_, err := svc.Ingest(context.Background(), "stripe", []byte(body))
		assert.True(t, utils.IsKind(err, utils.KindValidation), "body %s", body)
	}
}
