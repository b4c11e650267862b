package main

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// fakeStreamInput 记录请求路径，收到结束帧后回一段音频
type fakeStreamInput struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeStreamInput) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	for {
		var msg struct {
			Text string `json:"text"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Text == "" {
			break
		}
	}
	_ = conn.WriteJSON(map[string]any{
		"audio":   base64.StdEncoding.EncodeToString([]byte("mp3-data")),
		"isFinal": true,
	})
}

func (f *fakeStreamInput) lastPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paths) == 0 {
		return ""
	}
	return f.paths[len(f.paths)-1]
}

func runSpeak(t *testing.T, args ...string) (*fakeStreamInput, string) {
	t.Helper()
	fake := &fakeStreamInput{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	t.Setenv("ELEVENLABS_API_KEY", "test-key")
	t.Setenv("ELEVENLABS_BASE_URL", "ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/text-to-speech")
	t.Setenv("ELEVENLABS_VOICE_ID", "rachel")
	t.Setenv("LOG_LEVEL", "error")

	out := filepath.Join(t.TempDir(), "speech.mp3")
	root := newRootCommand()
	root.SetArgs(append([]string{"speak", "--out", out}, args...))
	require.NoError(t, root.Execute())
	return fake, out
}

func TestSpeakWritesAudioWithConfiguredVoice(t *testing.T) {
	fake, out := runSpeak(t, "hello", "world")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "mp3-data", string(data))
	require.Equal(t, "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM/stream-input", fake.lastPath())
}

func TestSpeakVoiceFlagOverridesConfig(t *testing.T) {
	fake, _ := runSpeak(t, "--voice", "adam", "hello")

	require.Equal(t, "/v1/text-to-speech/pNInz6obpgDQGcFmaJgB/stream-input", fake.lastPath())
}
