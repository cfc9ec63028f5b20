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

package cascade

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/configs"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/buf"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/sdk/gen"
	"github.com/zintix-labs/tumblab/sdk/ops"
	"github.com/zintix-labs/tumblab/spec"
)

func loadSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	data, err := configs.FS.ReadFile("tumble.yaml")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	gs, err := spec.GetGameSettingByYAML(data)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return gs
}

func newCascade(t *testing.T, gs *spec.GameSetting, seed int64) *Cascade {
	t.Helper()
	g, err := gen.New(gs, core.NewWithSeed(seed))
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	c, err := New(gs, g, nil)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	return c
}

// noClusterBoard 鄰格永不相同的底盤，圖標只用 1..5
func noClusterBoard() *board.Board {
	b := board.New(5, 6)
	for r := 0; r < 5; r++ {
		for c := 0; c < 6; c++ {
			b.Cells[r*6+c] = board.SymbolOf(board.Symbol(1 + (r+2*c)%5))
		}
	}
	return b
}

func TestSettleMultipliesBaseWin(t *testing.T) {
	c := newCascade(t, loadSetting(t), 1)
	b := noClusterBoard()
	b.Cells[3] = board.MultiplierOf(1, 10)
	b.Cells[20] = board.MultiplierOf(0, 5)
	if err := c.DropBoard(b, 1); err != nil {
		t.Fatalf("drop: %v", err)
	}
	c.baseWin = decimal.RequireFromString("2.00")
	if got := c.Detect(); got != nil {
		t.Fatalf("expected no clusters, got %d", len(got))
	}
	if c.State() != Settled || c.MultiplierSum() != 15 {
		t.Fatalf("state %s sum %d", c.State(), c.MultiplierSum())
	}
	if !c.TotalWin().Equal(decimal.NewFromInt(30)) {
		t.Fatalf("total %s, want 30", c.TotalWin())
	}
}

func TestSettleWithoutBaseWin(t *testing.T) {
	c := newCascade(t, loadSetting(t), 1)
	b := noClusterBoard()
	b.Cells[0] = board.MultiplierOf(3, 500)
	_ = c.DropBoard(b, 1)
	c.Detect()
	if !c.TotalWin().IsZero() || c.MultiplierSum() != 500 {
		t.Fatalf("no base win must settle to zero, got %s", c.TotalWin())
	}
}

func TestFirstRoundPaysMinimumCluster(t *testing.T) {
	c := newCascade(t, loadSetting(t), 2)
	b := noClusterBoard()
	for r := 0; r < 2; r++ {
		for col := 0; col < 4; col++ {
			b.Cells[r*6+col] = board.SymbolOf(0)
		}
	}
	_ = c.DropBoard(b, 3)
	clusters := c.Detect()
	if len(clusters) != 1 || c.State() != Resolving {
		t.Fatalf("expected one cluster and resolving state")
	}
	if again := c.Detect(); len(again) != 1 {
		t.Fatalf("detect must be repeatable while resolving")
	}
	rr, err := c.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Crown 8 格 = 2.00，bet_mult 3
	if !rr.RoundWin.Equal(decimal.NewFromInt(6)) || len(rr.WinGroups) != 1 || rr.WinGroups[0].Size != 8 {
		t.Fatalf("round win %s groups %+v", rr.RoundWin, rr.WinGroups)
	}
	if c.Board.CountEmpty() != 0 || c.State() != Detecting {
		t.Fatalf("board must be refilled and state back to detecting")
	}
	spawned := 0
	for _, m := range rr.Moves {
		if m.Spawned() {
			spawned++
		}
	}
	if spawned != 8 {
		t.Fatalf("expected 8 spawned cells, got %d", spawned)
	}
	for _, m := range rr.Injected {
		if m.Position.Row > 1 || m.Position.Col > 3 {
			t.Fatalf("multiplier injected outside spawned cells: %v", m.Position)
		}
	}
}

func TestResolveOutOfOrder(t *testing.T) {
	c := newCascade(t, loadSetting(t), 3)
	_ = c.DropBoard(noClusterBoard(), 1)
	if _, err := c.Resolve(); err == nil {
		t.Fatalf("resolve before detect must fail")
	}
}

func TestPlayInvariants(t *testing.T) {
	gs := loadSetting(t)
	c := newCascade(t, gs, 4)
	sr := buf.NewSpinResult(gs)
	for i := 0; i < 2000; i++ {
		if err := c.Play(context.Background(), 1, sr, nil); err != nil {
			t.Fatalf("play: %v", err)
		}
		sum := decimal.Zero
		prevMult := len(sr.InitialMarkers)
		for _, rr := range sr.Rounds {
			sum = sum.Add(rr.RoundWin)
			if rr.Board.CountEmpty() != 0 {
				t.Fatalf("round %d left empty cells", rr.Index)
			}
			if n := len(rr.Board.Multipliers()); n < prevMult {
				t.Fatalf("multipliers disappeared during cascade")
			} else {
				prevMult = n
			}
		}
		if !sum.Equal(sr.BaseWin) {
			t.Fatalf("base win %s != sum of rounds %s", sr.BaseWin, sum)
		}
		want := sr.BaseWin
		if sr.BaseWin.IsPositive() && sr.MultiplierSum > 0 {
			want = sr.BaseWin.Mul(decimal.NewFromInt(int64(sr.MultiplierSum)))
		}
		if !sr.TotalWin.Equal(want) || sr.MultiplierSum != sr.FinalBoard.MultiplierSum() {
			t.Fatalf("settle mismatch: total %s want %s", sr.TotalWin, want)
		}
	}
}

// chainBoard 第一回合清掉底部 Crown (r3-4, c0-3) 後，c2-3 上方的 YellowGem
// 掉到 r3-4，與 c4-5 原本的 YellowGem 接成 8 格，第二回合必定成立。
// (0,0)、(0,5) 各放一個倍數，分別在第一、第二回合往下掉。
func chainBoard() *board.Board {
	b := noClusterBoard()
	for r := 3; r < 5; r++ {
		for col := 0; col < 4; col++ {
			b.Cells[r*6+col] = board.SymbolOf(0)
		}
		b.Cells[r*6+4] = board.SymbolOf(6)
		b.Cells[r*6+5] = board.SymbolOf(6)
	}
	for r := 1; r < 3; r++ {
		b.Cells[r*6+2] = board.SymbolOf(6)
		b.Cells[r*6+3] = board.SymbolOf(6)
	}
	b.Cells[0] = board.MultiplierOf(0, 3)
	b.Cells[5] = board.MultiplierOf(1, 10)
	return b
}

func TestTwoRoundChain(t *testing.T) {
	gs := loadSetting(t)
	gs.MultSetting.InjectChance = 1
	c := newCascade(t, gs, 9)
	if err := c.DropBoard(chainBoard(), 1); err != nil {
		t.Fatalf("drop: %v", err)
	}
	first := c.Detect()
	if len(first) != 1 || first[0].Symbol != 0 || first[0].Size() != 8 {
		t.Fatalf("round 0 must see only the crown cluster, got %+v", first)
	}

	var rounds []buf.RoundResult
	prev := map[int]int{3: 1, 10: 1}
	err := c.Run(context.Background(), func(rr *buf.RoundResult) error {
		rounds = append(rounds, *rr)
		if rr.Board.CountEmpty() != 0 {
			t.Fatalf("round %d left empty cells", rr.Index)
		}
		spawned := map[board.Position]bool{}
		for _, p := range ops.SpawnedPositions(rr.Moves) {
			spawned[p] = true
		}
		if len(rr.Injected) == 0 {
			t.Fatalf("round %d: inject_chance 1 must inject", rr.Index)
		}
		for _, m := range rr.Injected {
			if !spawned[m.Position] {
				t.Fatalf("round %d injected at %v which was not spawned this round", rr.Index, m.Position)
			}
		}
		// 前一回合留下的倍數值都還在，另外加上本回合注入的
		now := map[int]int{}
		for _, m := range rr.Board.Multipliers() {
			now[m.Value]++
		}
		for _, m := range rr.Injected {
			now[m.Value]--
		}
		for v, n := range prev {
			if now[v] < n {
				t.Fatalf("round %d lost multiplier x%d", rr.Index, v)
			}
		}
		prev = map[int]int{}
		for _, m := range rr.Board.Multipliers() {
			prev[m.Value]++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rounds) < 2 {
		t.Fatalf("expected at least 2 rounds, got %d", len(rounds))
	}
	if !rounds[0].RoundWin.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("round 0 win %s, want 2 (crown x8)", rounds[0].RoundWin)
	}
	yellow := false
	for _, wg := range rounds[1].WinGroups {
		if wg.Symbol == 6 && wg.Size >= 8 {
			yellow = true
		}
	}
	if !yellow {
		t.Fatalf("round 1 must pay the yellow gem cluster, got %+v", rounds[1].WinGroups)
	}
	sum := decimal.Zero
	for _, rr := range rounds {
		sum = sum.Add(rr.RoundWin)
	}
	if !sum.Equal(c.BaseWin()) {
		t.Fatalf("base win %s != sum of rounds %s", c.BaseWin(), sum)
	}
	want := c.BaseWin().Mul(decimal.NewFromInt(int64(c.Board.MultiplierSum())))
	if c.State() != Settled || !c.TotalWin().Equal(want) {
		t.Fatalf("total %s, want %s", c.TotalWin(), want)
	}
}

func TestRejectsNonPositiveBetMult(t *testing.T) {
	gs := loadSetting(t)
	c := newCascade(t, gs, 10)
	for _, bm := range []int{0, -3} {
		if _, err := c.Drop(bm); !errs.Is(err, errs.CodeBadRequest) {
			t.Fatalf("drop bet_mult %d: expected bad request, got %v", bm, err)
		}
		if err := c.DropBoard(noClusterBoard(), bm); !errs.Is(err, errs.CodeBadRequest) {
			t.Fatalf("drop board bet_mult %d: expected bad request, got %v", bm, err)
		}
		sr := buf.NewSpinResult(gs)
		if err := c.Play(context.Background(), bm, sr, nil); !errs.Is(err, errs.CodeBadRequest) {
			t.Fatalf("play bet_mult %d: expected bad request, got %v", bm, err)
		}
	}
	if c.State() != Settled || c.Rounds() != 0 {
		t.Fatalf("rejected bet must not start a spin, state %s", c.State())
	}
}

func TestPlayDeterministicAndScaled(t *testing.T) {
	gs := loadSetting(t)
	a, b := newCascade(t, gs, 77), newCascade(t, gs, 77)
	ra, rb := buf.NewSpinResult(gs), buf.NewSpinResult(gs)
	for i := 0; i < 300; i++ {
		_ = a.Play(context.Background(), 1, ra, nil)
		_ = b.Play(context.Background(), 5, rb, nil)
		if ra.Cascades() != rb.Cascades() || !ra.TotalWin.Mul(decimal.NewFromInt(5)).Equal(rb.TotalWin) {
			t.Fatalf("spin %d: bet_mult must scale wins linearly: %s vs %s", i, ra.TotalWin, rb.TotalWin)
		}
		if !rb.Bet.Equal(decimal.NewFromInt(1)) {
			t.Fatalf("bet %s, want 1.00", rb.Bet)
		}
	}
}

func TestRoundCapNotConverged(t *testing.T) {
	gs := &spec.GameSetting{
		GameName:       "mono",
		BoardSetting:   spec.BoardSetting{Rows: 5, Cols: 6},
		SymbolSetting:  spec.SymbolSetting{Symbols: []spec.SymbolDef{{Name: "A", Weight: 1, Pays: []float64{1}}}},
		MultSetting:    spec.MultiplierSetting{Tiers: []spec.TierDef{{Name: "x", Weight: 1, Values: []int{2}}}},
		ClusterSetting: spec.ClusterSetting{MinSize: 8, PayThresholds: []int{8}},
		CascadeSetting: spec.CascadeSetting{MaxRounds: 5},
		BetSetting:     spec.BetSetting{BaseBet: 1},
	}
	c := newCascade(t, gs, 5)
	if _, err := c.Drop(1); err != nil {
		t.Fatalf("drop: %v", err)
	}
	err := c.Run(context.Background(), nil)
	if !errs.Is(err, errs.CodeNotConverged) || !errs.IsFatal(err) {
		t.Fatalf("expected fatal not-converged, got %v", err)
	}
	if c.Rounds() != 5 {
		t.Fatalf("expected exactly 5 resolved rounds, got %d", c.Rounds())
	}
}

func TestRunCanceledAtBoundary(t *testing.T) {
	c := newCascade(t, loadSetting(t), 6)
	if _, err := c.Drop(1); err != nil {
		t.Fatalf("drop: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Run(ctx, nil)
	if !errs.Is(err, errs.CodeCanceled) || errs.IsFatal(err) {
		t.Fatalf("expected non-fatal canceled error, got %v", err)
	}
	if c.State() != Dropped || c.Board.CountEmpty() != 0 {
		t.Fatalf("cancel must leave board intact")
	}
}

func TestObserverSeesEveryRound(t *testing.T) {
	gs := loadSetting(t)
	c := newCascade(t, gs, 8)
	sr := buf.NewSpinResult(gs)
	for i := 0; i < 200; i++ {
		seen := 0
		err := c.Play(context.Background(), 1, sr, func(rr *buf.RoundResult) error {
			if rr.Index != seen {
				t.Fatalf("round index %d, want %d", rr.Index, seen)
			}
			seen++
			return nil
		})
		if err != nil || seen != sr.Cascades() {
			t.Fatalf("observer saw %d of %d rounds (%v)", seen, sr.Cascades(), err)
		}
	}
}
