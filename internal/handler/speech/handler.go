package speech

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	speechmodel "github.com/zhouzirui/z-tavern/chatwidget/internal/model/speech"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/backend"
	speechsvc "github.com/zhouzirui/z-tavern/chatwidget/internal/service/speech"
	"github.com/zhouzirui/z-tavern/chatwidget/pkg/utils"
)

// Handler 语音合成的HTTP处理器
type Handler struct {
	speechSvc speechsvc.Synthesizer
}

// New 创建语音处理器。speechSvc 为空表示未配置语音凭证。
func New(speechSvc speechsvc.Synthesizer) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/speech", h.handleSpeech)
}

// Available 是否可以合成语音
func (h *Handler) Available() bool {
	return h.speechSvc != nil
}

// handleSpeech 处理 {text} -> audio/mpeg
func (h *Handler) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if !h.Available() {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
		return
	}

	var req backend.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.speechSvc.SynthesizeSpeech(r.Context(), &speechmodel.TTSRequest{
		Text:    text,
		VoiceID: strings.TrimSpace(req.Voice),
	})
	if err != nil {
		log.Warn().Err(err).Msg("[speech] TTS error")
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}

	utils.RespondAudio(w, resp.ContentType(), resp.AudioData)
}
