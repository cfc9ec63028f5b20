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

package tumblab

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/spec"
)

// Runtime 對外服務的資料面：每款遊戲一個機台池，加上記憶體錢包。
type Runtime struct {
	lab *Tumblab

	pools   map[spec.GID]*MachinePool
	ids     []spec.GID // 固定順序，用於觀測/列舉
	wallets *wallets

	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	poolSize int
}

// Spin 執行一局；帶 session 時先扣押注，結算後入帳。
func (rt *Runtime) Spin(ctx context.Context, req *dto.SpinRequest) (dto.SpinResult, error) {
	return rt.SpinObserved(ctx, req, nil)
}

// SpinObserved 與 Spin 相同，每回合結束呼叫 obs（串流用）。
func (rt *Runtime) SpinObserved(ctx context.Context, req *dto.SpinRequest, obs RoundObserver) (dto.SpinResult, error) {
	select {
	case <-ctx.Done():
		return dto.SpinResult{}, errs.Canceled(ctx.Err(), "spin canceled/timeout")
	case <-rt.done:
		rt.closed.Store(true)
		return dto.SpinResult{}, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
	}
	if req == nil {
		return dto.SpinResult{}, errs.BadRequestf("nil spin request")
	}

	mp, ok := rt.pools[req.GameId]
	if !ok {
		return dto.SpinResult{}, errs.Warnf("game id %d not found", req.GameId).WithCode(errs.CodeNotFound)
	}
	if req.Session == "" {
		return mp.Spin(ctx, req, obs)
	}

	// 錢包流程
	if req.StartState != nil && req.StartState.StartCoreSnapB64U != "" {
		return dto.SpinResult{}, errs.BadRequestf("start_state can not be used with a session")
	}
	s, err := rt.wallets.get(req.Session)
	if err != nil {
		return dto.SpinResult{}, err
	}
	if s.GameId != req.GameId {
		return dto.SpinResult{}, errs.BadRequestf("session %s belongs to game %d", s.ID, s.GameId)
	}
	betMult := req.BetMult
	if betMult == 0 {
		betMult = 1
	}
	if betMult < 1 || betMult > mp.gs.BetSetting.MaxBetMult {
		return dto.SpinResult{}, errs.BadRequestf("bet_mult %d out of range [1,%d]", betMult, mp.gs.BetSetting.MaxBetMult)
	}
	bet := mp.gs.BetSetting.Bet(betMult)
	if err := s.Debit(bet); err != nil {
		return dto.SpinResult{}, err
	}
	res, err := mp.Spin(ctx, req, obs)
	if err != nil {
		// 本局作廢，退回押注
		s.Credit(bet, false)
		return dto.SpinResult{}, err
	}
	bal := s.Credit(res.TotalWin, true)
	res.Balance = &bal
	return res, nil
}

// OpenSession 開一個錢包；balance 為空字串時使用設定檔 initial_balance。
func (rt *Runtime) OpenSession(gid spec.GID, balance string) (SessionView, error) {
	mp, ok := rt.pools[gid]
	if !ok {
		return SessionView{}, errs.Warnf("game id %d not found", gid).WithCode(errs.CodeNotFound)
	}
	amount := mp.gs.BetSetting.Balance
	if balance != "" {
		d, err := decimal.NewFromString(balance)
		if err != nil {
			return SessionView{}, errs.BadRequestf("invalid balance %q: %v", balance, err)
		}
		if d.IsNegative() {
			return SessionView{}, errs.BadRequestf("balance must not be negative")
		}
		amount = d
	}
	s, err := rt.wallets.open(gid, amount)
	if err != nil {
		return SessionView{}, err
	}
	return s.View(), nil
}

// Session 查詢錢包
func (rt *Runtime) Session(id string) (SessionView, error) {
	s, err := rt.wallets.get(id)
	if err != nil {
		return SessionView{}, err
	}
	return s.View(), nil
}

// CloseSession 關閉錢包
func (rt *Runtime) CloseSession(id string) error {
	if !rt.wallets.close(id) {
		return errs.Warnf("session %q not found", id).WithCode(errs.CodeNotFound)
	}
	return nil
}

// IDs 所有遊戲
func (rt *Runtime) IDs() []spec.GID { return append([]spec.GID(nil), rt.ids...) }

// Lab 回傳建立此 Runtime 的 Tumblab
func (rt *Runtime) Lab() *Tumblab { return rt.lab }

// Metrics 依固定順序回傳所有機台池的觀測快照
func (rt *Runtime) Metrics() []MachinePoolMetrics {
	out := make([]MachinePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		out = append(out, rt.pools[id].Metrics())
	}
	return out
}

// Close 關閉 Runtime 與所有機台池，可重複呼叫。
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		for _, mp := range rt.pools {
			mp.closeWithReason(reason)
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
