package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/handler/chat"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/handler/speech"
	middlewarePkg "github.com/zhouzirui/z-tavern/chatwidget/internal/middleware"
	speechService "github.com/zhouzirui/z-tavern/chatwidget/internal/service/speech"
	"github.com/zhouzirui/z-tavern/chatwidget/pkg/utils"
)

// NewRouter 组装本地桩服务的路由。speechSvc 为空时 /api/speech 返回 503。
func NewRouter(logger zerolog.Logger, responder chat.Responder, speechSvc *speechService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS())

	chatHandler := chat.New(responder)

	var synthesizer speechService.Synthesizer
	if speechSvc != nil && speechSvc.Enabled() {
		synthesizer = speechSvc
	}
	speechHandler := speech.New(synthesizer)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		speechHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status": "ok",
				"speech": speechHandler.Available(),
			})
		})
	})

	return r
}
