package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSConfig 允許跨域的來源；空白代表全部允許（開發模式）。
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int // 秒
}

// CORS 以 go-chi/cors 處理預檢與跨域標頭。
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 300
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})
}
