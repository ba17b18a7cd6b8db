package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetwatch/config"
	"fleetwatch/internal/domain/service"
	"fleetwatch/internal/infra/pubsub"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushFixture struct {
	handler    *PushHandler
	dispatcher *pubsub.LocalDispatcher
}

func newPushFixture(t *testing.T) *pushFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		PubSub: &config.PubSubConfig{Provider: pubsub.ProviderLocal},
	}
	dispatcher := pubsub.NewLocalDispatcher(logger)

	return &pushFixture{
		handler: NewPushHandler(PushHandlerParams{
			Config:     cfg,
			Logger:     logger,
			Dispatcher: dispatcher,
		}),
		dispatcher: dispatcher,
	}
}

func (f *pushFixture) post(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/push", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, f.handler.HandlePush(e.NewContext(req, rec)))

	return rec
}

func encodePushMessage(t *testing.T, event *service.PositionEvent) string {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var msg PubSubMessage
	msg.Message.Data = base64.StdEncoding.EncodeToString(data)
	msg.Message.Attributes = map[string]string{"route_id": event.RouteID}

	body, err := json.Marshal(msg)
	require.NoError(t, err)

	return string(body)
}

func TestPushHandler_DispatchesPositionEvent(t *testing.T) {
	fixture := newPushFixture(t)

	var received *service.PositionEvent
	_, err := fixture.dispatcher.Subscribe(context.Background(), "route-1",
		func(event *service.PositionEvent) { received = event },
		func(error) {},
	)
	require.NoError(t, err)

	rec := fixture.post(t, encodePushMessage(t, &service.PositionEvent{
		RouteID:  "route-1",
		Latitude: 43.25,
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, received)
	assert.Equal(t, 43.25, received.Latitude)
}

func TestPushHandler_RejectsInvalidBase64(t *testing.T) {
	fixture := newPushFixture(t)

	rec := fixture.post(t, `{"message":{"data":"not base64!!"}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushHandler_RejectsEventWithoutRoute(t *testing.T) {
	fixture := newPushFixture(t)

	rec := fixture.post(t, encodePushMessage(t, &service.PositionEvent{Latitude: 1}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushHandler_AcceptsEventForUnsubscribedRoute(t *testing.T) {
	fixture := newPushFixture(t)

	rec := fixture.post(t, encodePushMessage(t, &service.PositionEvent{RouteID: "route-9"}))

	// The dispatcher drops it; Pub/Sub still gets an ack so it stops retrying.
	assert.Equal(t, http.StatusOK, rec.Code)
}
