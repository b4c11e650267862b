package speech

import "strings"

// premadeVoices ElevenLabs 预置音色的别名
var premadeVoices = map[string]string{
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"domi":   "AZnzlk1XvdvUeBnXmlld",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"antoni": "ErXwobaYiR9UfSbpmsHG",
	"elli":   "MF3mGyEYCl7XYWbV9V6O",
	"josh":   "TxGEqnHWrfWFTfGW9XjX",
	"arnold": "VR6AewLTigWG4xSOukaG",
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"sam":    "yoZ06aMxZJJ28mfd3POQ",
}

// NormalizeVoiceAlias 把音色别名转换为 ElevenLabs voice ID，未知值原样返回。
func NormalizeVoiceAlias(voice string) string {
	trimmed := strings.TrimSpace(voice)
	if id, ok := premadeVoices[strings.ToLower(trimmed)]; ok {
		return id
	}
	return trimmed
}

// resolveVoice 请求中的音色优先，其次使用配置的默认音色
func resolveVoice(requested, fallback string) string {
	if voice := NormalizeVoiceAlias(requested); voice != "" {
		return voice
	}
	return NormalizeVoiceAlias(fallback)
}
