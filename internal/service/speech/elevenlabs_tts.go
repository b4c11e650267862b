package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
)

// ElevenLabsTTSClient ElevenLabs stream-input WebSocket 客户端
type ElevenLabsTTSClient struct {
	config *speechmodel.SpeechConfig
	dialer *websocket.Dialer
	logger zerolog.Logger
}

// 客户端消息
type (
	elBOSMessage struct {
		Text             string          `json:"text"`
		VoiceSettings    elVoiceSettings `json:"voice_settings"`
		GenerationConfig elGenConfig     `json:"generation_config"`
	}

	elVoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	}

	elGenConfig struct {
		ChunkLengthSchedule []int `json:"chunk_length_schedule"`
	}

	elTextMessage struct {
		Text string `json:"text"`
	}
)

// 服务端消息，音频与错误共用一个结构
type elServerMessage struct {
	Audio   string `json:"audio"`
	IsFinal *bool  `json:"isFinal"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewElevenLabsTTSClient 创建 ElevenLabs TTS 客户端
func NewElevenLabsTTSClient(config *speechmodel.SpeechConfig) *ElevenLabsTTSClient {
	if config == nil {
		config = &speechmodel.SpeechConfig{}
	}
	cfg := config.WithDefaults()
	return &ElevenLabsTTSClient{
		config: &cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: log.With().Str("component", "elevenlabs").Logger(),
	}
}

// SynthesizeSpeechWS 通过一次 WebSocket 会话合成整段文本
func (c *ElevenLabsTTSClient) SynthesizeSpeechWS(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, newError("text is required for speech synthesis")
	}

	apiKey, err := resolveAPIKey(c.config)
	if err != nil {
		return nil, err
	}

	endpoint, err := c.streamURL(req.VoiceID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("xi-api-key", apiKey)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, newError("ElevenLabs handshake failed with status %d", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "failed to connect to ElevenLabs")
	}
	defer conn.Close()

	// ctx 取消时关闭连接，让阻塞中的 ReadMessage 返回
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	requestID := uuid.NewString()
	c.logger.Debug().Str("request_id", requestID).Int("chars", len(text)).Msg("tts session opened")

	if err := c.sendJSON(conn, c.beginningOfStream()); err != nil {
		return nil, errors.Wrap(err, "failed to send beginning of stream")
	}
	// 末尾空格让服务端把整段作为完整输入处理
	if err := c.sendJSON(conn, elTextMessage{Text: text + " "}); err != nil {
		return nil, errors.Wrap(err, "failed to send text")
	}
	if err := c.sendJSON(conn, elTextMessage{Text: ""}); err != nil {
		return nil, errors.Wrap(err, "failed to send end of stream")
	}

	var audioBuffer bytes.Buffer
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Text != "" {
				return nil, newError("ElevenLabs closed the stream: %s", closeErr.Text)
			}
			return nil, errors.Wrap(err, "failed to read ElevenLabs response")
		}

		var msg elServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug().Err(err).Msg("ignoring undecodable frame")
			continue
		}

		if msg.Error != "" {
			detail := msg.Message
			if detail == "" {
				detail = msg.Error
			}
			return nil, newError("ElevenLabs error: %s", detail)
		}

		if msg.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, errors.Wrap(err, "failed to decode audio chunk")
			}
			audioBuffer.Write(chunk)
		}

		if msg.IsFinal != nil && *msg.IsFinal {
			break
		}
	}

	if audioBuffer.Len() == 0 {
		return nil, newError("ElevenLabs returned no audio")
	}

	return &speechmodel.TTSResponse{
		AudioData: audioBuffer.Bytes(),
		Format:    c.config.OutputFormat,
		RequestID: requestID,
		CreatedAt: time.Now(),
	}, nil
}

func (c *ElevenLabsTTSClient) streamURL(voiceID string) (string, error) {
	voice := resolveVoice(voiceID, c.config.VoiceID)

	base, err := url.Parse(strings.TrimRight(c.config.BaseURL, "/"))
	if err != nil {
		return "", errors.Wrap(err, "invalid ElevenLabs base URL")
	}
	base = base.JoinPath(voice, "stream-input")

	q := base.Query()
	q.Set("model_id", c.config.ModelID)
	q.Set("output_format", c.config.OutputFormat)
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func (c *ElevenLabsTTSClient) beginningOfStream() elBOSMessage {
	return elBOSMessage{
		Text: " ",
		VoiceSettings: elVoiceSettings{
			Stability:       *c.config.Stability,
			SimilarityBoost: *c.config.SimilarityBoost,
		},
		GenerationConfig: elGenConfig{
			ChunkLengthSchedule: []int{120, 160, 250, 290},
		},
	}
}

func (c *ElevenLabsTTSClient) sendJSON(conn *websocket.Conn, msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}
