package v1

import (
	"context"
	"net/http"

	"github.com/zintix-labs/tumblab/dto"
)

// Spin GET|POST /v1/spin
func (h *Handler) Spin(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeSpinRequest(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	// 請求解析完成，設置超時 context
	ctx, cancel := context.WithTimeout(q.Context(), h.timeout)
	defer cancel()

	result, err := h.rt.Spin(ctx, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
