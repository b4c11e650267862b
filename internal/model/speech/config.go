package speech

// SpeechConfig 语音合成配置（ElevenLabs）
type SpeechConfig struct {
	APIKey  string `json:"apiKey"`  // ElevenLabs API Key
	BaseURL string `json:"baseUrl"` // stream-input 的 WebSocket 基础地址
	VoiceID string `json:"voiceId"`
	ModelID string `json:"modelId"`

	// 音色参数，nil 表示未设置；0 是合法取值
	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarityBoost,omitempty"`

	OutputFormat string `json:"outputFormat"` // mp3_44100_128 等

	// 通用配置
	Timeout int `json:"timeout"` // seconds
}

const (
	DefaultBaseURL         = "wss://api.elevenlabs.io/v1/text-to-speech"
	DefaultVoiceID         = "21m00Tcm4TlvDq8ikWAM"
	DefaultModelID         = "eleven_multilingual_v2"
	DefaultOutputFormat    = "mp3_44100_128"
	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.75
	DefaultTimeout         = 30
)

// WithDefaults fills unset fields.
func (c SpeechConfig) WithDefaults() SpeechConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.VoiceID == "" {
		c.VoiceID = DefaultVoiceID
	}
	if c.ModelID == "" {
		c.ModelID = DefaultModelID
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
	if c.Stability == nil {
		c.Stability = Float(DefaultStability)
	}
	if c.SimilarityBoost == nil {
		c.SimilarityBoost = Float(DefaultSimilarityBoost)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
