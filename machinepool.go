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
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/spec"
)

// maxFailStreak 連續淘汰機台達此次數即關閉機台池，交由上層維護
const maxFailStreak = 8

// MachinePool 管理單一遊戲的機台實例：借出、歸還、淘汰與補機。
//
// 一局若 panic 或回傳 fatal（例如連消未收斂），該機台的 Core/Board 狀態不可信，
// 直接丟棄並以新種子補一台；Warn 級錯誤（參數錯誤、取消）機台照常歸還。
type MachinePool struct {
	gs        *spec.GameSetting
	cf        core.PRNGFactory
	log       *slog.Logger
	seedMaker *seedMaker
	idle      chan *Machine // 可借出的機台
	done      chan struct{}
	closeOnce sync.Once
	size      int

	spins        atomic.Int64
	inflight     atomic.Int32
	rebuild      atomic.Int32
	panics       atomic.Int32
	fatals       atomic.Int32
	nonConverged atomic.Int32 // fatals 之中屬於連消未收斂者
	failStreak   atomic.Int32 // 連續淘汰次數，成功一局即歸零

	lastFailure   atomic.Value // string
	closeReason   atomic.Value // string
	closeInflight atomic.Int32
}

// newMachinePool 預先建立 n 台（至少 1 台）機台，種子由 seed 衍生。
func newMachinePool(n int, gs *spec.GameSetting, cf core.PRNGFactory, seed int64, log *slog.Logger) (*MachinePool, error) {
	if log == nil {
		log = slog.Default()
	}
	n = max(1, n)
	p := &MachinePool{
		gs:        gs,
		cf:        cf,
		log:       log.With(slog.String("game", gs.GameName)),
		seedMaker: newSeedMaker(seed),
		idle:      make(chan *Machine, n),
		done:      make(chan struct{}),
		size:      n,
	}
	p.lastFailure.Store("")
	p.closeReason.Store("")
	p.closeInflight.Store(-1)
	for range n {
		m, err := p.build()
		if err != nil {
			return nil, err
		}
		p.idle <- m
	}
	return p, nil
}

func (p *MachinePool) build() (*Machine, error) {
	return newMachineWithSeed(p.gs, p.cf, p.seedMaker.next(), false, p.log)
}

// Spin 借出一台機台執行一局；obs 可為 nil。
func (p *MachinePool) Spin(ctx context.Context, req *dto.SpinRequest, obs RoundObserver) (res dto.SpinResult, err error) {
	m, err := p.borrow(ctx)
	if err != nil {
		return res, err
	}
	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("machine %s panic: %v", p.gs.GameName, r))
			p.replace(err, true)
			return
		}
		if errs.IsFatal(err) {
			p.fatals.Add(1)
			if errs.Is(err, errs.CodeNotConverged) {
				p.nonConverged.Add(1)
			}
			p.replace(err, false)
			return
		}
		if err == nil {
			p.spins.Add(1)
			p.failStreak.Store(0)
		}
		p.giveBack(m)
	}()
	return m.SpinObserved(ctx, req, obs)
}

// borrow 先看關閉再等機台；關閉與取消都不阻塞。
func (p *MachinePool) borrow(ctx context.Context) (*Machine, error) {
	select {
	case <-p.done:
		return nil, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	default:
	}
	select {
	case <-p.done:
		return nil, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return nil, errs.Canceled(ctx.Err(), "spin canceled/timeout")
	case m := <-p.idle:
		if m == nil {
			return nil, errs.NewFatal("machine pool got nil machine")
		}
		p.inflight.Add(1)
		return m, nil
	}
}

func (p *MachinePool) giveBack(m *Machine) {
	select {
	case <-p.done:
	case p.idle <- m:
	}
}

// replace 丟棄壞機台並補一台新機；連續失敗過多或補機失敗則關閉機台池。
func (p *MachinePool) replace(cause error, panicked bool) {
	p.lastFailure.Store(cause.Error())
	if p.Closed() {
		return
	}
	streak := p.failStreak.Add(1)
	p.log.Warn("machine discarded",
		slog.Bool("panic", panicked),
		slog.Int("streak", int(streak)),
		slog.Any("err", cause),
	)
	if streak >= maxFailStreak {
		p.closeWithReason("overwhelmed_by_failures")
		return
	}
	m, err := p.build()
	if err != nil {
		p.log.Error("machine rebuild failed", slog.Any("err", err))
		p.closeWithReason("rebuild_failed")
		return
	}
	p.rebuild.Add(1)
	p.giveBack(m)
}

// Close 關閉機台池，之後的 Spin 直接回 fatal。
func (p *MachinePool) Close() { p.closeWithReason("closed") }

func (p *MachinePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// closeWithReason 只生效一次，並記下關閉當下的 inflight。
func (p *MachinePool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.closeReason.Store(reason)
		p.closeInflight.Store(p.inflight.Load())
		close(p.done)
		p.log.Info("machine pool closed", slog.String("reason", reason))
	})
}

func (p *MachinePool) ClosedReason() string {
	s, _ := p.closeReason.Load().(string)
	return s
}

// MachinePoolMetrics 拉取式觀測快照，Available 與 Inflight 在併發下為近似值。
type MachinePoolMetrics struct {
	GameName      string   `json:"game_name"`
	GameID        spec.GID `json:"game_id"`
	PoolSize      int      `json:"pool_size"`
	Available     int      `json:"available"`
	Inflight      int      `json:"inflight"`
	Spins         int64    `json:"spins"`
	Rebuild       int      `json:"rebuild"`
	Panics        int      `json:"panics"`
	Fatals        int      `json:"fatals"`
	NonConverged  int      `json:"non_converged"`
	FailStreak    int      `json:"fail_streak"`
	LastFailure   string   `json:"last_failure,omitempty"`
	Closed        bool     `json:"closed"`
	CloseReason   string   `json:"close_reason,omitempty"`
	CloseInflight int      `json:"close_inflight"` // -1 表示尚未關閉
}

func (p *MachinePool) Metrics() MachinePoolMetrics {
	last, _ := p.lastFailure.Load().(string)
	return MachinePoolMetrics{
		GameName:      p.gs.GameName,
		GameID:        p.gs.GameID,
		PoolSize:      p.size,
		Available:     len(p.idle),
		Inflight:      int(p.inflight.Load()),
		Spins:         p.spins.Load(),
		Rebuild:       int(p.rebuild.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		NonConverged:  int(p.nonConverged.Load()),
		FailStreak:    int(p.failStreak.Load()),
		LastFailure:   last,
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: int(p.closeInflight.Load()),
	}
}
