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

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/corefmt"
	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/stats"
)

const (
	devMaxSpins  = 5_000
	devMaxRounds = 3_000_000
)

// DevSimulator
//
// 只提供給開發模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim *Simulator // 只開放 Sim 功能
	m   *Machine   // 逐局輸出用
}

func newDevSimulator(sim *Simulator, m *Machine) *DevSimulator {
	return &DevSimulator{sim: sim, m: m}
}

type DevSpinReport struct {
	Before   string           `json:"start_b64u"`
	After    string           `json:"after_b64u"`
	Round    int              `json:"round"`
	Rtp      float64          `json:"rtp"`
	TotalBet decimal.Decimal  `json:"total_bet"`
	TotalWin decimal.Decimal  `json:"total_win"`
	BaseWin  decimal.Decimal  `json:"base_win"`
	Results  []dto.SpinResult `json:"results"`
}

// Spins 連續跑 n 局並保留每局完整結果
func (d *DevSimulator) Spins(betMult int, n int) (DevSpinReport, error) {
	if n < 1 || n > devMaxSpins {
		return DevSpinReport{}, errs.BadRequestf("round must be between 1 and %d", devMaxSpins)
	}
	req := &dto.SpinRequest{
		GameName: d.m.gameName,
		GameId:   d.m.gameId,
		BetMult:  betMult,
	}
	ds := make([]dto.SpinResult, 0, n)
	for range n {
		res, err := d.m.Spin(context.Background(), req)
		if err != nil {
			return DevSpinReport{}, err
		}
		ds = append(ds, res)
	}

	bet, win, base := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range ds {
		bet = bet.Add(r.Bet)
		win = win.Add(r.TotalWin)
		base = base.Add(r.BaseWin)
	}
	rtp := 0.0
	if bet.IsPositive() {
		rtp = win.Div(bet).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return DevSpinReport{
		Before:   ds[0].State.StartCoreSnapB64U,
		After:    ds[len(ds)-1].State.AfterCoreSnapB64U,
		Round:    len(ds),
		Rtp:      rtp,
		TotalBet: bet,
		TotalWin: win,
		BaseWin:  base,
		Results:  ds,
	}, nil
}

// RestoreSpins 從指定快照開始重跑 n 局
func (d *DevSimulator) RestoreSpins(be64 string, betMult int, n int) (DevSpinReport, error) {
	if n < 1 || n > devMaxSpins {
		return DevSpinReport{}, errs.BadRequestf("round must be between 1 and %d", devMaxSpins)
	}
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSpinReport{}, errs.BadRequestf("decode snapshot failed: %v", err)
	}
	if err := d.m.RestoreCore(be); err != nil {
		return DevSpinReport{}, errs.BadRequestf("machine restore failed: %v", err)
	}
	return d.Spins(betMult, n)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.StatReport `json:"statistic"`
}

// Sim 單線模擬並回傳前後快照，可用 RestoreSim 重現同一段統計。
func (d *DevSimulator) Sim(betMult int, rounds int) (DevSimReport, error) {
	if rounds < 1 || rounds > devMaxRounds {
		return DevSimReport{}, errs.BadRequestf("round must be between 1 and %d", devMaxRounds)
	}
	m := d.sim.mBuf[0]
	be, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "before snapshot")
	}
	stat, _, err := d.sim.Sim(betMult, rounds, false)
	if err != nil {
		return DevSimReport{}, err
	}
	af, err := m.SnapshotCore()
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "after snapshot")
	}
	return DevSimReport{
		Before: corefmt.EncodeBase64URL(be),
		After:  corefmt.EncodeBase64URL(af),
		Stat:   stat,
	}, nil
}

// RestoreSim 從指定快照開始模擬
func (d *DevSimulator) RestoreSim(be64 string, betMult int, rounds int) (DevSimReport, error) {
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.BadRequestf("decode snapshot failed: %v", err)
	}
	if err := d.sim.mBuf[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.BadRequestf("restore simulator failed: %v", err)
	}
	return d.Sim(betMult, rounds)
}
