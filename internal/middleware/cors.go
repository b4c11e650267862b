package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS 允许浏览器端的组件直接访问本地桩服务。
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	})
}
