package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/stats"
)

// SimResponse 模擬結果
type SimResponse struct {
	Stats    *stats.StatReport `json:"stats"`
	UsedTime int64             `json:"used_ms"`
	Seed     int64             `json:"seed"`
}

// Sim GET|POST /v1/sim
//
// format=yaml 時直接輸出 YAML 報表。
func (h *Handler) Sim(w http.ResponseWriter, q *http.Request) {
	req, err := dto.DecodeSimRequest(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	if _, ok := h.lab.EntryById(req.GameId); !ok {
		h.fail(w, errs.Warnf("game id %d not found", req.GameId).WithCode(errs.CodeNotFound))
		return
	}
	if err := checkSimSize(req.Rounds, req.Workers); err != nil {
		h.fail(w, err)
		return
	}
	seed, err := resolveSeed(req.Seed)
	if err != nil {
		h.fail(w, err)
		return
	}
	sim, err := h.lab.NewSimulatorWithSeed(req.GameId, seed)
	if err != nil {
		h.fail(w, errs.Wrap(err, "build simulator"))
		return
	}
	st, used, err := sim.SimMP(req.BetMult, req.Rounds, req.Workers, false)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeReport(w, q, st, used, seed)
}

// SimByCfg POST /v1/simbycfg：以調整過的 YAML 設定模擬（gid 與名稱需對應已註冊遊戲）
func (h *Handler) SimByCfg(w http.ResponseWriter, q *http.Request) {
	type simByCfgRequest struct {
		Config  string `json:"cfg"`
		BetMult int    `json:"bet_mult"`
		Rounds  int    `json:"rounds"`
		Seed    *int64 `json:"seed,omitempty"`
	}
	req := new(simByCfgRequest)
	if err := dto.DecodeJSONBody(q, req); err != nil {
		h.fail(w, err)
		return
	}
	if req.BetMult == 0 {
		req.BetMult = 1
	}
	if err := checkSimSize(req.Rounds, 1); err != nil {
		h.fail(w, err)
		return
	}
	seed, err := resolveSeed(req.Seed)
	if err != nil {
		h.fail(w, err)
		return
	}
	sim, err := h.lab.NewSimulatorByYAML([]byte(req.Config), seed)
	if err != nil {
		h.fail(w, err)
		return
	}
	st, used, err := sim.Sim(req.BetMult, req.Rounds, false)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeReport(w, q, st, used, seed)
}

func (h *Handler) writeReport(w http.ResponseWriter, q *http.Request, st *stats.StatReport, used time.Duration, seed int64) {
	if format := strings.ToLower(q.URL.Query().Get("format")); format == "yaml" || format == "yml" {
		w.Header().Set("Content-Type", "application/yaml")
		if err := st.WriteWith(w, stats.RenderOf(format)); err != nil {
			h.log.Warn("write yaml report failed", slog.Any("err", err))
		}
		return
	}
	h.writeJSON(w, http.StatusOK, SimResponse{Stats: st, UsedTime: used.Milliseconds(), Seed: seed})
}

func checkSimSize(rounds, workers int) error {
	if workers < 1 || workers > maxSimWorkers {
		return errs.BadRequestf("workers must be between 1 and %d", maxSimWorkers)
	}
	if rounds < 1 || rounds*workers > maxSimSpins {
		return errs.BadRequestf("rounds*workers must be between 1 and %d", maxSimSpins)
	}
	return nil
}

func resolveSeed(seed *int64) (int64, error) {
	if seed != nil {
		return *seed, nil
	}
	return tumblab.RandomSeed()
}
