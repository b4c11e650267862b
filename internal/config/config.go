package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
)

// Config 聚合整个组件的配置项。
type Config struct {
	Server ServerConfig
	API    APIConfig
	Speech SpeechConfig
	Widget WidgetConfig
	Log    LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	api, err := loadAPIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	widget, err := loadWidgetConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, API: api, Speech: speech, Widget: widget, Log: logCfg}, nil
}

// ServerConfig 描述开发用桩服务的监听配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// APIConfig 描述后端 /api/chat 与 /api/speech 的访问配置。
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

func loadAPIConfig() (APIConfig, error) {
	timeout, err := parseOptionalIntEnv("CHAT_API_TIMEOUT")
	if err != nil {
		return APIConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		if *timeout < 1 {
			return APIConfig{}, fmt.Errorf("invalid CHAT_API_TIMEOUT value %d: must be positive", *timeout)
		}
		timeoutSeconds = *timeout
	}

	return APIConfig{
		BaseURL: strings.TrimRight(getEnvOrDefault("CHAT_API_BASE_URL", "http://localhost:3000"), "/"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SpeechConfig 描述 ElevenLabs 语音合成配置
type SpeechConfig struct {
	APIKey          string
	BaseURL         string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Timeout         int
	Enabled         bool
}

// Model converts the env-level settings into the synthesizer configuration.
func (c SpeechConfig) Model() *speechmodel.SpeechConfig {
	cfg := speechmodel.SpeechConfig{
		APIKey:          c.APIKey,
		BaseURL:         c.BaseURL,
		VoiceID:         c.VoiceID,
		ModelID:         c.ModelID,
		Stability:       speechmodel.Float(c.Stability),
		SimilarityBoost: speechmodel.Float(c.SimilarityBoost),
		Timeout:         c.Timeout,
	}.WithDefaults()
	return &cfg
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := speechmodel.DefaultTimeout
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	stability, err := parseOptionalFloatEnv("ELEVENLABS_STABILITY")
	if err != nil {
		return SpeechConfig{}, err
	}
	stabilityValue := speechmodel.DefaultStability
	if stability != nil {
		stabilityValue = *stability
	}

	similarity, err := parseOptionalFloatEnv("ELEVENLABS_SIMILARITY_BOOST")
	if err != nil {
		return SpeechConfig{}, err
	}
	similarityValue := speechmodel.DefaultSimilarityBoost
	if similarity != nil {
		similarityValue = *similarity
	}

	// 公开暴露的 key 作为备选
	apiKey := strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("PUBLIC_ELEVENLABS_API_KEY"))
	}

	return SpeechConfig{
		APIKey:          apiKey,
		BaseURL:         getEnvOrDefault("ELEVENLABS_BASE_URL", speechmodel.DefaultBaseURL),
		VoiceID:         getEnvOrDefault("ELEVENLABS_VOICE_ID", speechmodel.DefaultVoiceID),
		ModelID:         getEnvOrDefault("ELEVENLABS_MODEL_ID", speechmodel.DefaultModelID),
		Stability:       stabilityValue,
		SimilarityBoost: similarityValue,
		Timeout:         timeoutSeconds,
		Enabled:         apiKey != "",
	}, nil
}

// WidgetConfig 描述组件本身的行为参数
type WidgetConfig struct {
	NotifyInterval time.Duration
	NotifyDuration time.Duration
	Locale         string
	AudioPlayer    string
}

func loadWidgetConfig() (WidgetConfig, error) {
	interval, err := parseDurationEnv("NOTIFY_INTERVAL", 30*time.Second)
	if err != nil {
		return WidgetConfig{}, err
	}
	duration, err := parseDurationEnv("NOTIFY_DURATION", 5*time.Second)
	if err != nil {
		return WidgetConfig{}, err
	}
	if interval <= 0 || duration <= 0 {
		return WidgetConfig{}, fmt.Errorf("notification interval and duration must be positive")
	}

	return WidgetConfig{
		NotifyInterval: interval,
		NotifyDuration: duration,
		Locale:         getEnvOrDefault("CHAT_WIDGET_LOCALE", "zh-CN"),
		AudioPlayer:    strings.TrimSpace(os.Getenv("AUDIO_PLAYER")),
	}, nil
}

// LogConfig 日志配置
type LogConfig struct {
	Level  zerolog.Level
	Caller bool
}

func loadLogConfig() (LogConfig, error) {
	raw := getEnvOrDefault("LOG_LEVEL", "info")
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q: %w", raw, err)
	}
	caller, err := parseBoolEnv("LOG_CALLER", false)
	if err != nil {
		return LogConfig{}, err
	}
	return LogConfig{Level: level, Caller: caller}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
