// Package v1 提供對外的 JSON API：遊戲列表、錢包、Spin、逐回合串流與模擬。
package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/server/httperr"
	"github.com/zintix-labs/tumblab/server/svrcfg"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxSimSpins   = 1_000_000
	maxSimWorkers = 16
)

// Handler 持有 Runtime（對外 Spin）與 Tumblab（模擬）
type Handler struct {
	lab     *tumblab.Tumblab
	rt      *tumblab.Runtime
	log     *slog.Logger
	timeout time.Duration
	origins []string // websocket 允許的 Origin 樣式；空白代表不檢查
}

func NewHandler(rt *tumblab.Runtime, sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if rt == nil {
		return nil, errs.NewFatal("runtime is required")
	}
	return &Handler{
		lab:     rt.Lab(),
		rt:      rt,
		log:     sCfg.Log,
		timeout: sCfg.SpinTimeout,
		origins: originPatterns(sCfg.CORSOrigins),
	}, nil
}

// writeJSON 先編碼再寫出，避免寫到一半才發現編碼錯誤。
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.fail(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	httperr.Log(h.log, "api error", err)
	httperr.Errs(w, err)
}

// originPatterns 把 CORS 來源（含 scheme）轉成 websocket 的 host 樣式
func originPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		out = append(out, o)
	}
	return out
}
