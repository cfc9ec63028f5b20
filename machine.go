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
	"log/slog"
	"strings"
	"sync"

	"github.com/zintix-labs/tumblab/dto"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/buf"
	"github.com/zintix-labs/tumblab/sdk/cascade"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/sdk/gen"
	"github.com/zintix-labs/tumblab/spec"
)

// Machine 封裝一台「可對外提供 Spin」的遊戲機台。
//
// 對外提供 Spin 入口；對內持有 RNG（Core）、生成器與連消編排者。
//
// 並發語意：
//   - 內含可重用的 request/result buffer，同一台 Machine 不應被多 goroutine 同時 Spin（內部有鎖保護）。
//   - 要併發請建立多台 Machine（MachinePool / Simulator）。
//
// Buffer 語意：
//   - SpinRequest / SpinResult 會被重用，每次 Spin 會覆寫內容。
//   - 需要在 Spin 後保留結果，請在離開臨界區前轉成 DTO。
type Machine struct {
	gameName    string
	gameId      spec.GID
	gs          *spec.GameSetting
	core        *core.Core
	gen         *gen.Generator
	casc        *cascade.Cascade
	namer       dto.Namer
	SpinRequest *buf.SpinRequest
	SpinResult  *buf.SpinResult
	mu          sync.Mutex
	initseed    int64 // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// RoundObserver 每個連消回合結束後被呼叫；回傳錯誤會中止本局。
type RoundObserver func(dto.RoundDTO) error

// newMachine 以 crypto/rand 產生的 seed 建立 Machine。
func newMachine(gs *spec.GameSetting, cf core.PRNGFactory, log *slog.Logger) (*Machine, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, cf, seed, false, log)
}

// newMachineWithSeed 同一份 GameSetting + 同一個 seed 會得到一致的結果序列。
//
// isSim 為 true 時不保存每回合盤面快照，減少配置。
func newMachineWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64, isSim bool, log *slog.Logger) (*Machine, error) {
	if err := gs.Init(); err != nil {
		return nil, err
	}
	c := core.New(cf.New(seed))
	g, err := gen.New(gs, c)
	if err != nil {
		return nil, err
	}
	casc, err := cascade.New(gs, g, log)
	if err != nil {
		return nil, err
	}
	casc.KeepBoards = !isSim
	return &Machine{
		gameName:    gs.GameName,
		gameId:      gs.GameID,
		gs:          gs,
		core:        c,
		gen:         g,
		casc:        casc,
		namer:       dto.NewNamer(gs),
		SpinRequest: &buf.SpinRequest{},
		SpinResult:  buf.NewSpinResult(gs),
		initseed:    seed,
	}, nil
}

// Spin 為主要公開入口，會驗證請求，執行一局並回傳結果。
func (m *Machine) Spin(ctx context.Context, r *dto.SpinRequest) (dto.SpinResult, error) {
	return m.SpinObserved(ctx, r, nil)
}

// SpinObserved 與 Spin 相同，但每個連消回合結束後會呼叫 obs（可為 nil）。
func (m *Machine) SpinObserved(ctx context.Context, r *dto.SpinRequest, obs RoundObserver) (dto.SpinResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求合法性
	if err := m.valid(r); err != nil {
		return dto.SpinResult{}, err
	}
	// 2. 轉成內部請求
	req, err := r.Parse()
	if err != nil {
		return dto.SpinResult{}, err
	}
	if req.BetMult < 1 || req.BetMult > m.gs.BetSetting.MaxBetMult {
		return dto.SpinResult{}, errs.BadRequestf("bet_mult %d out of range [1,%d]", req.BetMult, m.gs.BetSetting.MaxBetMult)
	}
	m.SpinRequest.Reset()
	m.SpinRequest.BetMult = req.BetMult
	m.SpinRequest.StartSnap = req.StartSnap

	// 3. 執行
	var observer func(*buf.RoundResult) error
	if obs != nil {
		observer = func(rr *buf.RoundResult) error { return obs(m.namer.Round(rr)) }
	}
	sr, err := m.play(ctx, m.SpinRequest, observer)
	if err != nil {
		return dto.SpinResult{}, err
	}

	// 4. dto
	return dto.NewSpinResultDTO(sr, m.namer)
}

// play 取得快照、必要時還原指定起點、跑完一局，回放時再還原回原本的序列。
func (m *Machine) play(ctx context.Context, req *buf.SpinRequest, observer func(*buf.RoundResult) error) (*buf.SpinResult, error) {
	startsnap, err := m.SnapshotCore()
	if err != nil {
		return nil, errs.Wrap(err, "before snapshot error")
	}
	rem := startsnap
	if req.IsReplay() {
		startsnap = req.StartSnap
		if err := m.RestoreCore(req.StartSnap); err != nil {
			return nil, errs.BadRequestf("restore core err: %v", err)
		}
	}
	restoreBack := func() error {
		if !req.IsReplay() {
			return nil
		}
		if err := m.RestoreCore(rem); err != nil {
			return errs.Fatalf("restore core back err: %v", err)
		}
		return nil
	}

	sr := m.SpinResult
	if err := m.casc.Play(ctx, req.BetMult, sr, observer); err != nil {
		if e := restoreBack(); e != nil {
			return nil, e
		}
		return nil, err
	}

	aftersnap, err := m.SnapshotCore()
	if err != nil {
		if e := m.RestoreCore(rem); e != nil {
			return nil, errs.Fatalf("fall back err: %v", e)
		}
		return nil, errs.Wrap(err, "after snapshot error")
	}
	sr.StartSnap = startsnap
	sr.EndSnap = aftersnap

	if err := restoreBack(); err != nil {
		return nil, err
	}
	return sr, nil
}

// SpinInternal 直接取得內部 SpinResult；用於模擬器或測試，跳過請求檢查且不取快照。
func (m *Machine) SpinInternal(betMult int) (*buf.SpinResult, error) {
	if err := m.casc.Play(context.Background(), betMult, m.SpinResult, nil); err != nil {
		return nil, err
	}
	return m.SpinResult, nil
}

// Tally 生成器目前累積的抽樣次數
func (m *Machine) Tally() gen.Tally { return m.gen.Tally }

// GameSetting 機台使用的設定（只讀）
func (m *Machine) GameSetting() *spec.GameSetting { return m.gs }

// InitSeed 出生 seed
func (m *Machine) InitSeed() int64 { return m.initseed }

func (m *Machine) valid(req *dto.SpinRequest) error {
	if req == nil {
		return errs.BadRequestf("nil spin request")
	}
	if m.gameId != req.GameId {
		return errs.BadRequestf("game id %d is not matched", req.GameId)
	}
	if req.GameName != "" && !strings.EqualFold(m.gameName, req.GameName) {
		return errs.BadRequestf("game name %q is not matched", req.GameName)
	}
	return nil
}

// SnapshotCore 取得 Core 狀態
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態
func (m *Machine) RestoreCore(src []byte) error {
	return m.core.Restore(src)
}

// ResetTally 歸零生成器抽樣計數
func (m *Machine) ResetTally() { m.gen.ResetTally() }
