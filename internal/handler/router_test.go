package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/handler/chat"
	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/backend"
	speechService "github.com/zhouzirui/z-tavern/chatwidget/internal/service/speech"
)

func newServer(t *testing.T, speechSvc *speechService.Service) *httptest.Server {
	t.Helper()
	responder := chat.ResponderFunc(func(_ context.Context, message string) (string, error) {
		return "re: " + message, nil
	})
	srv := httptest.NewServer(NewRouter(zerolog.Nop(), responder, speechSvc))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterServesChatToBackendClient(t *testing.T) {
	srv := newServer(t, nil)

	reply, err := backend.NewClient(srv.URL).Chat(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "re: hello", reply)
}

func TestRouterSpeechUnavailableWithoutKey(t *testing.T) {
	srv := newServer(t, speechService.NewService(&speechmodel.SpeechConfig{}))

	_, err := backend.NewClient(srv.URL).Speech(context.Background(), "hello")
	var statusErr *backend.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestRouterHealthAndCORS(t *testing.T) {
	srv := newServer(t, nil)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, false, body["speech"])
}

func TestRouterRejectsEmptyChat(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Post(srv.URL+backend.ChatPath, "application/json", bytes.NewBufferString(`{"message":""}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(raw), "message is required")
}
