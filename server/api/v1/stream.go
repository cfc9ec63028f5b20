package v1

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/server/httperr"
)

// StreamFrame websocket 上的一則訊息：每回合一則 round，最後一則 result 或 error。
type StreamFrame struct {
	Type   string          `json:"type"`
	Round  *dto.RoundDTO   `json:"round,omitempty"`
	Result *dto.SpinResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Status int             `json:"status,omitempty"`
}

const (
	frameRound  = "round"
	frameResult = "result"
	frameError  = "error"
)

// Stream GET /v1/stream（websocket）
//
// 參數與 GET /v1/spin 相同；請求錯誤在升級前以 HTTP 狀態碼回應。
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSpinRequest(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	c, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		// Accept 已自行回應
		h.log.Warn("websocket accept failed", slog.Any("err", err))
		return
	}
	defer c.CloseNow()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	// 只寫不讀：CloseRead 處理控制訊框，對端關閉時取消 ctx。
	ctx = c.CloseRead(ctx)

	res, err := h.rt.SpinObserved(ctx, req, func(rd dto.RoundDTO) error {
		if err := wsjson.Write(ctx, c, StreamFrame{Type: frameRound, Round: &rd}); err != nil {
			return errs.Warnf("stream write: %v", err)
		}
		return nil
	})
	if err != nil {
		httperr.Log(h.log, "stream spin error", err)
		_ = wsjson.Write(ctx, c, StreamFrame{Type: frameError, Error: err.Error(), Status: httperr.StatusCode(err)})
		c.Close(websocket.StatusPolicyViolation, "spin failed")
		return
	}
	if err := wsjson.Write(ctx, c, StreamFrame{Type: frameResult, Result: &res}); err != nil {
		h.log.Warn("stream result write failed", slog.Any("err", err))
		return
	}
	c.Close(websocket.StatusNormalClosure, "")
}

func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	if len(h.origins) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: h.origins}
}
