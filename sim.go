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
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/recorder"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/spec"
	"github.com/zintix-labs/tumblab/stats"
)

const capPrepare int = 100

// Simulator 用於大量模擬，可建立多台機台並平行紀錄統計。
type Simulator struct {
	GameName  string
	GameId    spec.GID
	gs        *spec.GameSetting
	cf        core.PRNGFactory
	log       *slog.Logger
	initSeed  int64
	seedmaker *seedMaker
	mBuf      []*Machine               // 併發執行機台實例
	rBuf      []*recorder.SpinRecorder // 併發遊戲紀錄員
}

func newSimulatorWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64, log *slog.Logger) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		GameId:    gs.GameID,
		gs:        gs,
		cf:        cf,
		log:       log,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
		rBuf:      make([]*recorder.SpinRecorder, 0, capPrepare),
	}
	m, err := newMachineWithSeed(gs, cf, s.initSeed, true, log)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

// InitSeed 模擬器的初始 seed
func (s *Simulator) InitSeed() int64 { return s.initSeed }

func (s *Simulator) check(betMult, rounds int) error {
	if betMult < 1 || betMult > s.gs.BetSetting.MaxBetMult {
		return errs.BadRequestf("bet_mult %d out of range [1,%d]", betMult, s.gs.BetSetting.MaxBetMult)
	}
	if rounds < 1 {
		return errs.BadRequestf("rounds must > 0")
	}
	return nil
}

// Sim 單線模擬：以一台機台連續跑 rounds 局，回傳統計結果與用時。
func (s *Simulator) Sim(betMult int, rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	return s.SimMP(betMult, rounds, 1, showpb)
}

// SimMP 平行執行 workers 台機台，總計 rounds*workers 局，合併統計結果。
func (s *Simulator) SimMP(betMult int, rounds int, workers int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if workers <= 0 {
		return nil, 0, errs.BadRequestf("workers must > 0")
	}
	if err := s.check(betMult, rounds); err != nil {
		return nil, 0, err
	}
	for len(s.mBuf) < workers {
		m, err := newMachineWithSeed(s.gs, s.cf, s.seedmaker.next(), true, s.log)
		if err != nil {
			return nil, 0, err
		}
		s.mBuf = append(s.mBuf, m)
	}
	for len(s.rBuf) < workers {
		r, err := recorder.NewSpinRecorder(s.gs, betMult)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	errCh := make(chan error, workers)
	wg := new(sync.WaitGroup)
	wg.Add(workers)
	bar := pb.StartNew(rounds * workers)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			m := s.mBuf[i]
			rec := s.rBuf[i]
			m.ResetTally()
			for r := 0; r < rounds; r++ {
				sr, err := m.SpinInternal(betMult)
				if err != nil {
					errCh <- err
					return
				}
				rec.Record(sr)
				bar.Increment()
			}
			t := m.Tally()
			rec.AddTally(t.Symbols, t.Tiers)
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, used, errs.Wrap(err, "simulation aborted")
	}

	st, err := recorder.MergeSpinRecorder(s.rBuf[:workers])
	if err != nil {
		return nil, used, err
	}
	result := st.Done()
	result.Done()
	if s.log != nil {
		s.log.Debug("simulation done",
			slog.Int("game_id", int(s.GameId)),
			slog.Int("rounds", rounds*workers),
			slog.Duration("used", used),
		)
	}
	return result, used, nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 SimMP）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
