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

// Package cascade 驅動一局 Spin 的連消狀態機。
//
//	Dropped -> Detecting -> Resolving -> Detecting -> ... -> Settled
//
// 每個回合都是獨立、可分開呼叫的步驟（Detect / Resolve），
// 呼叫端可以在任一回合邊界停下，盤面狀態不會損壞。
package cascade

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/buf"
	"github.com/zintix-labs/tumblab/sdk/calc"
	"github.com/zintix-labs/tumblab/sdk/gen"
	"github.com/zintix-labs/tumblab/sdk/ops"
	"github.com/zintix-labs/tumblab/spec"
)

// State 連消狀態
type State uint8

const (
	Dropped State = iota
	Detecting
	Resolving
	Settled
)

var stateNames = [...]string{"dropped", "detecting", "resolving", "settled"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Cascade 一台機台的連消編排者。Board 只屬於目前這一局，不可跨 goroutine 共用。
type Cascade struct {
	gs        *spec.GameSetting
	gen       *gen.Generator
	finder    *calc.ClusterFinder
	pay       *calc.PayTable
	maxRounds int
	log       *slog.Logger

	// KeepBoards 為 true 時每回合保存盤面快照（對外輸出用，模擬時可關閉）。
	KeepBoards bool

	Board    *board.Board
	state    State
	scale    decimal.Decimal // bet_mult
	pending  []calc.Cluster
	rounds   int
	baseWin  decimal.Decimal
	multSum  int
	totalWin decimal.Decimal
}

// New 建立連消編排者
func New(gs *spec.GameSetting, g *gen.Generator, log *slog.Logger) (*Cascade, error) {
	if err := gs.Init(); err != nil {
		return nil, err
	}
	if g == nil {
		return nil, errs.NewFatal("nil generator")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cascade{
		gs:         gs,
		gen:        g,
		finder:     calc.NewClusterFinder(gs.ClusterSetting.MinSize, gs.SymbolSetting.Count()),
		pay:        calc.NewPayTable(gs, log),
		maxRounds:  gs.CascadeSetting.MaxRounds,
		log:        log,
		KeepBoards: true,
		Board:      board.New(gs.BoardSetting.Rows, gs.BoardSetting.Cols),
		state:      Settled,
		scale:      decimal.NewFromInt(1),
	}, nil
}

// Drop 生成新盤面（含開局倍數注入），重置累積值，進入 Dropped。
// betMult < 1 時回傳 CodeBadRequest，盤面與狀態不變。
func (c *Cascade) Drop(betMult int) ([]board.MultiplierMarker, error) {
	if err := c.reset(betMult); err != nil {
		return nil, err
	}
	return c.gen.Fill(c.Board), nil
}

// DropBoard 以指定盤面開局（不消耗亂數），用於回放或測試。
func (c *Cascade) DropBoard(b *board.Board, betMult int) error {
	if b.Rows != c.gs.BoardSetting.Rows || b.Cols != c.gs.BoardSetting.Cols || len(b.Cells) != b.Rows*b.Cols {
		return errs.Warnf("board %dx%d does not match %dx%d", b.Rows, b.Cols, c.gs.BoardSetting.Rows, c.gs.BoardSetting.Cols).WithCode(errs.CodeBadRequest)
	}
	if b.CountEmpty() != 0 {
		return errs.Warnf("initial board has empty cells").WithCode(errs.CodeBadRequest)
	}
	if err := c.reset(betMult); err != nil {
		return err
	}
	c.Board.CopyFrom(b)
	return nil
}

func (c *Cascade) reset(betMult int) error {
	if betMult < 1 {
		return errs.BadRequestf("bet_mult %d must be >= 1", betMult)
	}
	c.state = Dropped
	c.scale = decimal.NewFromInt(int64(betMult))
	c.pending = nil
	c.rounds = 0
	c.baseWin = decimal.Zero
	c.multSum = 0
	c.totalWin = decimal.Zero
	return nil
}

// Detect 找出目前盤面的集群。
//
// 有集群時進入 Resolving；沒有時直接結算進入 Settled 並回傳 nil。
// 在 Resolving 狀態重複呼叫會回傳同一組集群。
func (c *Cascade) Detect() []calc.Cluster {
	switch c.state {
	case Settled:
		return nil
	case Resolving:
		return c.pending
	}
	c.state = Detecting
	clusters := c.finder.FindClusters(c.Board)
	if len(clusters) == 0 {
		c.Settle()
		return nil
	}
	c.pending = clusters
	c.state = Resolving
	return clusters
}

// Resolve 處理 Detect 找到的集群：派彩、累積、消除、重力補盤、只對新落下的格子注入倍數。
//
// 超過 max_rounds 時回傳 CodeNotConverged (Fatal)，本局應被丟棄。
func (c *Cascade) Resolve() (buf.RoundResult, error) {
	if c.state != Resolving {
		return buf.RoundResult{}, errs.Warnf("resolve called in state %s", c.state)
	}
	if c.rounds >= c.maxRounds {
		return buf.RoundResult{}, errs.Fatalf("cascade did not converge after %d rounds", c.rounds).WithCode(errs.CodeNotConverged)
	}
	clusters := c.pending
	win, groups := c.pay.CalculateWinnings(clusters, c.Board)
	if !c.scale.Equal(decimal.NewFromInt(1)) {
		win = win.Mul(c.scale)
		for i := range groups {
			groups[i].Payout = groups[i].Payout.Mul(c.scale)
		}
	}
	c.baseWin = c.baseWin.Add(win)

	ops.ClearMatches(c.Board, clusters)
	moves := ops.ApplyTumble(c.Board, c.gen.SpawnCell)
	injected := c.gen.InjectSpawned(c.Board, ops.SpawnedPositions(moves))

	rr := buf.RoundResult{
		Index:     c.rounds,
		Clusters:  clusters,
		WinGroups: groups,
		RoundWin:  win,
		BaseWin:   c.baseWin,
		MultSum:   c.Board.MultiplierSum(),
		Moves:     moves,
		Injected:  injected,
	}
	if c.KeepBoards {
		rr.Board = c.Board.Clone()
	}
	c.rounds++
	c.pending = nil
	c.state = Detecting
	return rr, nil
}

// Settle 結算：加總盤面上所有倍數。
// base > 0 且倍數總和 > 0 時 total = base * sum，否則 total = base。
func (c *Cascade) Settle() {
	c.multSum = c.Board.MultiplierSum()
	c.totalWin = c.baseWin
	if c.baseWin.IsPositive() && c.multSum > 0 {
		c.totalWin = c.baseWin.Mul(decimal.NewFromInt(int64(c.multSum)))
	}
	c.pending = nil
	c.state = Settled
}

// Step 執行一個回合。done 為 true 表示已結算，此時 rr 為 nil。
func (c *Cascade) Step() (rr *buf.RoundResult, done bool, err error) {
	if c.Detect() == nil {
		return nil, true, nil
	}
	r, err := c.Resolve()
	if err != nil {
		return nil, false, err
	}
	return &r, false, nil
}

// Run 持續執行到 Settled。每回合結束後呼叫 observer（可為 nil），
// 並在回合邊界檢查 ctx；被取消時回傳 CodeCanceled，保留目前盤面。
func (c *Cascade) Run(ctx context.Context, observer func(*buf.RoundResult) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return errs.Canceled(err, "cascade interrupted at round boundary")
		}
		rr, done, err := c.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if observer != nil {
			if err := observer(rr); err != nil {
				return err
			}
		}
	}
}

// Play 完整跑完一局並寫入 sr（sr 會先 Reset）。
func (c *Cascade) Play(ctx context.Context, betMult int, sr *buf.SpinResult, observer func(*buf.RoundResult) error) error {
	sr.Reset()
	markers, err := c.Drop(betMult)
	if err != nil {
		return err
	}
	sr.BetMult = int(c.scale.IntPart())
	sr.Bet = c.gs.BetSetting.Bet(sr.BetMult)
	sr.InitialMarkers = markers
	if c.KeepBoards {
		sr.InitialBoard = c.Board.Clone()
	}
	err = c.Run(ctx, func(rr *buf.RoundResult) error {
		sr.AppendRound(*rr)
		if observer != nil {
			return observer(rr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sr.BaseWin = c.baseWin
	sr.MultiplierSum = c.multSum
	sr.TotalWin = c.totalWin
	sr.WinTier = c.gs.WinTierOf(c.totalWin, sr.Bet)
	if c.KeepBoards {
		sr.FinalBoard = c.Board.Clone()
	}
	sr.End()
	return nil
}

// State 目前狀態
func (c *Cascade) State() State { return c.state }

// Rounds 已處理的回合數
func (c *Cascade) Rounds() int { return c.rounds }

// BaseWin 目前累積的基本贏分
func (c *Cascade) BaseWin() decimal.Decimal { return c.baseWin }

// MultiplierSum 結算前回傳盤面上目前的倍數總和，結算後回傳結算值
func (c *Cascade) MultiplierSum() int {
	if c.state == Settled {
		return c.multSum
	}
	return c.Board.MultiplierSum()
}

// TotalWin 結算後的總贏分；尚未結算時為 0
func (c *Cascade) TotalWin() decimal.Decimal { return c.totalWin }
