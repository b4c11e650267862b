package speech

import (
	"strings"
	"time"
)

// TTSResponse 语音合成响应
type TTSResponse struct {
	AudioData []byte    `json:"-"`
	Format    string    `json:"format"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContentType maps the provider output format to a MIME type.
func (r *TTSResponse) ContentType() string {
	switch {
	case strings.HasPrefix(r.Format, "mp3"):
		return "audio/mpeg"
	case strings.HasPrefix(r.Format, "pcm"):
		return "audio/L16"
	case strings.HasPrefix(r.Format, "ulaw"):
		return "audio/basic"
	default:
		return "application/octet-stream"
	}
}
