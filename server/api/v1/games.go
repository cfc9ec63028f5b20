package v1

import (
	"net/http"
	"strconv"

	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/server/netsvr"
	"github.com/zintix-labs/tumblab/spec"
)

// Games GET /v1/games
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	sum, err := h.lab.Summary()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sum)
}

// Game GET /v1/games/{gid}
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	gid, err := parseGID(netsvr.Param(r, "gid"))
	if err != nil {
		h.fail(w, err)
		return
	}
	sum, err := h.lab.Summary()
	if err != nil {
		h.fail(w, err)
		return
	}
	for _, s := range sum {
		if s.GID == gid {
			h.writeJSON(w, http.StatusOK, s)
			return
		}
	}
	h.fail(w, errs.Warnf("game id %d not found", gid).WithCode(errs.CodeNotFound))
}

// Metrics GET /v1/metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.rt.Metrics())
}

func parseGID(s string) (spec.GID, error) {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, errs.BadRequestf("invalid gid %q", s)
	}
	return spec.GID(u), nil
}
