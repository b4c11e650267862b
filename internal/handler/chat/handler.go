package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/backend"
	"github.com/zhouzirui/z-tavern/chatwidget/pkg/utils"
)

// Responder 根据用户消息生成回复
type Responder interface {
	Respond(ctx context.Context, message string) (string, error)
}

// ResponderFunc 把普通函数适配为 Responder
type ResponderFunc func(ctx context.Context, message string) (string, error)

// Respond 实现 Responder
func (f ResponderFunc) Respond(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

// EchoResponder 原样回显用户消息，供本地调试使用
func EchoResponder() Responder {
	return ResponderFunc(func(_ context.Context, message string) (string, error) {
		return message, nil
	})
}

// Handler 聊天接口的HTTP处理器
type Handler struct {
	responder Responder
}

// New 创建聊天处理器，responder 为空时使用回显
func New(responder Responder) *Handler {
	if responder == nil {
		responder = EchoResponder()
	}
	return &Handler{responder: responder}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// handleChat 处理 {message} -> {response}
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload backend.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.responder.Respond(r.Context(), message)
	if err != nil {
		log.Warn().Err(err).Msg("[chat] responder failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate response")
		return
	}

	utils.RespondJSON(w, http.StatusOK, backend.ChatResponse{Response: &reply})
}
