// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dto

import (
	"io"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/tumblab/corefmt"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/buf"
	"github.com/zintix-labs/tumblab/spec"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SpinRequest 對外的 Spin 請求
type SpinRequest struct {
	UID        string      `json:"uid"`                   // 唯一識別碼
	GameName   string      `json:"game"`                  // 要玩的遊戲（可省略，以 gid 為準）
	GameId     spec.GID    `json:"gid"`                   // 遊戲機台編號
	BetMult    int         `json:"bet_mult"`              // 投注倍數(base_bet 的幾倍)，省略視為 1
	Session    string      `json:"session,omitempty"`     // 錢包 session；省略則不扣款
	StartState *StartState `json:"start_state,omitempty"` // 可選：回放用的起始狀態
}

// StartState 由業務端帶入的起始 PRNG 快照。
//
// 請求端只允許提供 Start；After 只會出現在回應中，用於審計或下一局續接。
type StartState struct {
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`
}

// DecodeSpinRequest 會把 HTTP 請求解碼成 SpinRequest。
//
//   - GET：從 query string 讀取參數（uid/game/gid/bet_mult/session/start_b64u）。
//   - POST：從 JSON body 反序列化，未知欄位一律拒絕，body 上限 1MiB。
//
// 這裡只做解碼與型別轉換；GID 是否存在、bet_mult 是否合法由 Runtime/Machine 決定。
func DecodeSpinRequest(r *http.Request) (*SpinRequest, error) {
	if r == nil {
		return nil, errs.BadRequestf("nil request")
	}
	req := new(SpinRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GameName = q.Get("game")
		req.Session = q.Get("session")
		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.BadRequestf("invalid gid: %v", err)
			}
			req.GameId = spec.GID(u)
		}
		if s := q.Get("bet_mult"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.BadRequestf("invalid bet_mult: %v", err)
			}
			req.BetMult = v
		}
		if s := q.Get("start_b64u"); s != "" {
			req.StartState = &StartState{StartCoreSnapB64U: s}
		}
		return req, nil

	case http.MethodPost:
		if err := DecodeJSONBody(r, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.BadRequestf("method not allowed")
	}
}

// Parse 轉成引擎內部請求
func (r *SpinRequest) Parse() (*buf.SpinRequest, error) {
	req := &buf.SpinRequest{BetMult: r.BetMult}
	if req.BetMult == 0 {
		req.BetMult = 1
	}
	if r.StartState != nil && r.StartState.StartCoreSnapB64U != "" {
		snap, err := corefmt.DecodeBase64URL(r.StartState.StartCoreSnapB64U)
		if err != nil {
			return nil, err
		}
		req.StartSnap = snap
	}
	return req, nil
}

// DecodeJSONBody 以 1MiB 上限讀取 JSON body，拒絕未知欄位。
func DecodeJSONBody(r *http.Request, v any) error {
	const maxBody = 1 << 20
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.BadRequestf("invalid json: %v", err)
	}
	return nil
}

// SessionRequest 開錢包
type SessionRequest struct {
	GameId  spec.GID `json:"gid"`
	Balance string   `json:"balance,omitempty"` // 省略時使用設定檔 initial_balance
}

// SimRequest 模擬請求
type SimRequest struct {
	GameId  spec.GID `json:"gid"`
	Rounds  int      `json:"rounds"`
	Workers int      `json:"workers"`
	BetMult int      `json:"bet_mult"`
	Seed    *int64   `json:"seed,omitempty"`
}

// DecodeSimRequest GET 讀 query，POST 讀 JSON
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	req := &SimRequest{}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		ints := []struct {
			key string
			dst *int
		}{{"rounds", &req.Rounds}, {"workers", &req.Workers}, {"bet_mult", &req.BetMult}}
		for _, f := range ints {
			if s := q.Get(f.key); s != "" {
				v, err := strconv.Atoi(s)
				if err != nil {
					return nil, errs.BadRequestf("invalid %s: %v", f.key, err)
				}
				*f.dst = v
			}
		}
		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.BadRequestf("invalid gid: %v", err)
			}
			req.GameId = spec.GID(u)
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.BadRequestf("invalid seed: %v", err)
			}
			req.Seed = &v
		}
	case http.MethodPost:
		if err := DecodeJSONBody(r, req); err != nil {
			return nil, err
		}
	default:
		return nil, errs.BadRequestf("method not allowed")
	}
	if req.BetMult == 0 {
		req.BetMult = 1
	}
	if req.Workers == 0 {
		req.Workers = 1
	}
	return req, nil
}
