package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsController_Stream(t *testing.T) {
	logger := testutil.NewTestLogger()
	notifier := services.NewNotifier(logger, nil, "")
	ec := NewEventsController(notifier, logger)

	router := gin.New()
	router.GET("/api/events", ec.Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return notifier.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, notifier.Emit(context.Background(), services.EventNewOrder, map[string]string{"orderNumber": "ORD-9"}))

	// give the stream a moment to write before disconnecting
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after the client went away")
	}

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream"))
	assert.Contains(t, body, "event:connected")
	assert.Contains(t, body, "event:new_order")
	assert.Contains(t, body, `"orderNumber":"ORD-9"`)
	assert.Equal(t, 0, notifier.SubscriberCount())
}
