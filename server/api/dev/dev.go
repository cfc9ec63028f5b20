// Package dev 提供開發期的 HTTP 工具路由：指定遊戲、bet_mult、Seed 或快照，
// 執行可回放的 Spin 或統計模擬。
//
// 這不是 production API；只在 SvrCfg.Dev 為 true 時掛載。
// Snap 與 Seed 同時提供時以 Snap 為準。
package dev

import (
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/server/httperr"
	"github.com/zintix-labs/tumblab/server/netsvr"
	"github.com/zintix-labs/tumblab/spec"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// devRequest 開發面板的輸入；gid 與 game 擇一，兩者都有時以 gid 為準。
type devRequest struct {
	GID     int64  `json:"gid"`
	Game    string `json:"game"`
	BetMult int    `json:"bet_mult"`
	Rounds  int    `json:"rounds"`
	Seed    string `json:"seed"` // int64 字串；空白自動產生
	Snap    string `json:"snap"` // base64url 核心快照
}

// Register 註冊路由：
//   - GET  /dev/meta ：遊戲摘要
//   - POST /dev/spin ：N 局逐局結果（含 start/after 快照）
//   - POST /dev/sim  ：N 局統計報表
func Register(r netsvr.NetRouter, lab *tumblab.Tumblab) {
	r.Group("/dev", func(d netsvr.NetRouter) {
		d.Get("/meta", devMeta(lab))
		d.Post("/spin", devSpin(lab))
		d.Post("/sim", devSim(lab))
	})
}

func devMeta(lab *tumblab.Tumblab) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		writeJSON(w, sum)
	}
}

func devSpin(lab *tumblab.Tumblab) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, d, err := prepare(lab, r)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report tumblab.DevSpinReport
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = d.RestoreSpins(snap, req.BetMult, req.Rounds)
		} else {
			report, err = d.Spins(req.BetMult, req.Rounds)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		writeJSON(w, report)
	}
}

func devSim(lab *tumblab.Tumblab) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, d, err := prepare(lab, r)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report tumblab.DevSimReport
		if snap := strings.TrimSpace(req.Snap); snap != "" {
			report, err = d.RestoreSim(snap, req.BetMult, req.Rounds)
		} else {
			report, err = d.Sim(req.BetMult, req.Rounds)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		writeJSON(w, report)
	}
}

// prepare 解碼請求、解析遊戲與 seed，並建立 DevSimulator
func prepare(lab *tumblab.Tumblab, r *http.Request) (*devRequest, *tumblab.DevSimulator, error) {
	req := new(devRequest)
	if err := dto.DecodeJSONBody(r, req); err != nil {
		return nil, nil, err
	}
	gid, err := resolveGID(lab, req)
	if err != nil {
		return nil, nil, err
	}
	if req.Rounds < 1 {
		return nil, nil, errs.BadRequestf("rounds is required")
	}
	if req.BetMult == 0 {
		req.BetMult = 1
	}
	seed, err := resolveSeed(req.Seed)
	if err != nil {
		return nil, nil, err
	}
	d, err := lab.NewDevSimulator(gid, seed)
	if err != nil {
		return nil, nil, err
	}
	return req, d, nil
}

// resolveGID gid 優先；否則以名稱（不分大小寫）或數字字串匹配。
func resolveGID(lab *tumblab.Tumblab, req *devRequest) (spec.GID, error) {
	notFound := errs.Warnf("game not found").WithCode(errs.CodeNotFound)
	if req.GID > 0 {
		if _, ok := lab.EntryById(spec.GID(req.GID)); !ok {
			return 0, notFound
		}
		return spec.GID(req.GID), nil
	}
	name := strings.TrimSpace(req.Game)
	if name == "" {
		return 0, errs.BadRequestf("game is required")
	}
	if e, ok := lab.EntryByName(name); ok {
		return e.GID, nil
	}
	if gid, err := strconv.ParseUint(name, 10, 0); err == nil {
		if _, ok := lab.EntryById(spec.GID(gid)); ok {
			return spec.GID(gid), nil
		}
	}
	return 0, notFound
}

func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return tumblab.RandomSeed()
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return 0, errs.BadRequestf("seed must be int64")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}
