package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPushNotifierSend(t *testing.T) {
	var got pushMessage
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewPushNotifier(srv.URL, "secret", time.Second, zap.NewNop())
	err := n.Send(context.Background(), "device-1", "Task overdue", "Pay rent is overdue")

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "device-1", got.Token)
	assert.Equal(t, "Task overdue", got.Notification.Title)
	assert.Equal(t, "Pay rent is overdue", got.Notification.Body)
}

func TestPushNotifierGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unregistered token", http.StatusNotFound)
	}))
	defer srv.Close()

	n := NewPushNotifier(srv.URL, "", time.Second, zap.NewNop())
	err := n.Send(context.Background(), "device-1", "t", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "unregistered token")
}

func TestPushNotifierRejectsEmptyToken(t *testing.T) {
	n := NewPushNotifier("http://127.0.0.1:0", "", time.Second, zap.NewNop())
	assert.ErrorIs(t, n.Send(context.Background(), "", "t", "b"), ErrEmptyDeviceToken)
}

func TestLogNotifierMasksToken(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Send(context.Background(), "abcdef123456", "Task overdue", "body"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "****3456", entries[0].ContextMap()["device"])
}
