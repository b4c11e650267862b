package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, register func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestChatReturnsResponse(t *testing.T) {
	var got ChatRequest
	srv := newTestServer(t, func(r chi.Router) {
		r.Post(ChatPath, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response":"hi"}`))
		})
	})

	reply, err := NewClient(srv.URL + "/").Chat(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hi", reply)
	require.Equal(t, "hello", got.Message)
}

func TestChatErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
			},
		},
		{
			name:   "error field",
			status: http.StatusOK,
			body:   `{"error":"model unavailable"}`,
			check: func(t *testing.T, err error) {
				var appErr *AppError
				require.True(t, errors.As(err, &appErr))
				require.Equal(t, "model unavailable", appErr.Message)
			},
		},
		{
			name:   "missing response",
			status: http.StatusOK,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				var appErr *AppError
				require.True(t, errors.As(err, &appErr))
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				var decodeErr *DecodeError
				require.True(t, errors.As(err, &decodeErr))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(r chi.Router) {
				r.Post(ChatPath, func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.status)
					_, _ = w.Write([]byte(tt.body))
				})
			})

			_, err := NewClient(srv.URL).Chat(context.Background(), "hello")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestChatTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithTimeout(time.Second)).Chat(context.Background(), "hello")
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
}

func TestSpeechReturnsAudio(t *testing.T) {
	var got SpeechRequest
	srv := newTestServer(t, func(r chi.Router) {
		r.Post(SpeechPath, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("ID3audio"))
		})
	})

	audio, err := NewClient(srv.URL).Speech(context.Background(), "read me")
	require.NoError(t, err)
	require.Equal(t, []byte("ID3audio"), audio)
	require.Equal(t, "read me", got.Text)
}

func TestSpeechFailures(t *testing.T) {
	srv := newTestServer(t, func(r chi.Router) {
		r.Post(SpeechPath, func(w http.ResponseWriter, r *http.Request) {
			var req SpeechRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Text == "empty" {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Error(w, "speech disabled", http.StatusServiceUnavailable)
		})
	})
	client := NewClient(srv.URL)

	_, err := client.Speech(context.Background(), "hello")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	require.Equal(t, "speech disabled", statusErr.Body)

	_, err = client.Speech(context.Background(), "empty")
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestChatHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(r chi.Router) {
		r.Post(ChatPath, func(w http.ResponseWriter, _ *http.Request) {
			<-release
		})
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Chat(ctx, "hello")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeoutBoundsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(r chi.Router) {
		r.Post(ChatPath, func(w http.ResponseWriter, _ *http.Request) {
			<-release
		})
	})
	defer close(release)

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).Chat(context.Background(), "hello")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}
