package v1

import (
	"net/http"

	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/server/netsvr"
)

// OpenSession POST /v1/session
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	req := new(dto.SessionRequest)
	if err := dto.DecodeJSONBody(r, req); err != nil {
		h.fail(w, err)
		return
	}
	s, err := h.rt.OpenSession(req.GameId, req.Balance)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, s)
}

// GetSession GET /v1/session/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.rt.Session(netsvr.Param(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

// CloseSession DELETE /v1/session/{id}
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.rt.CloseSession(netsvr.Param(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
