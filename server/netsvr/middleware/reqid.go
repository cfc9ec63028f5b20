package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// ReqIDHeader 回應中帶回的請求 id，方便對照 spin 的存取日誌
const ReqIDHeader = "X-Request-Id"

// RequestID 沿用 chi 的 id 產生規則，並把 id 寫回回應標頭。
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(ReqIDHeader, GetReqId(r))
		next.ServeHTTP(w, r)
	}))
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}
