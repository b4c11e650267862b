package speech

// TTSRequest 语音合成请求
type TTSRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"` // 为空时使用配置中的 VoiceID
}
