package speech

import (
	"strings"

	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
)

// resolveAPIKey 返回规范化后的 API Key，缺失时给出明确错误。
func resolveAPIKey(cfg *speechmodel.SpeechConfig) (string, error) {
	if cfg == nil {
		return "", newError("ElevenLabs speech configuration is not initialized")
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return "", newError("ElevenLabs API key is not configured (set ELEVENLABS_API_KEY)")
	}
	return key, nil
}
