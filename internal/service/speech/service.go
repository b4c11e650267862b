package speech

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
)

// Synthesizer 文字转语音能力的抽象，便于测试与替换实现
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error)
}

// Service 语音合成服务，独立于聊天组件使用
type Service struct {
	config    *speechmodel.SpeechConfig
	ttsClient *ElevenLabsTTSClient
	logger    zerolog.Logger
}

// NewService 创建语音服务实例
func NewService(config *speechmodel.SpeechConfig) *Service {
	if config == nil {
		config = &speechmodel.SpeechConfig{}
	}
	cfg := config.WithDefaults()

	return &Service{
		config:    &cfg,
		ttsClient: NewElevenLabsTTSClient(&cfg),
		logger:    log.With().Str("component", "speech").Logger(),
	}
}

// Enabled reports whether a credential is configured.
func (s *Service) Enabled() bool {
	return strings.TrimSpace(s.config.APIKey) != ""
}

// SynthesizeSpeech 文字转语音。所有失败都被规范化为 *Error。
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, newError("text is required for speech synthesis")
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
		defer cancel()
	}

	started := time.Now()
	resp, err := s.ttsClient.SynthesizeSpeechWS(ctx, req)
	if err != nil {
		normalized := normalizeError(err)
		s.logger.Warn().Err(err).Msg("speech synthesis failed")
		return nil, normalized
	}

	s.logger.Debug().
		Int("bytes", len(resp.AudioData)).
		Dur("elapsed", time.Since(started)).
		Msg("speech synthesized")
	return resp, nil
}

// Synthesize 便捷方法：合成文本并直接返回音频字节
func (s *Service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.SynthesizeSpeech(ctx, &speechmodel.TTSRequest{Text: text})
	if err != nil {
		return nil, err
	}
	return resp.AudioData, nil
}
