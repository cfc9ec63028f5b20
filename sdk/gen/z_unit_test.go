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

package gen

import (
	"testing"

	"github.com/zintix-labs/tumblab/configs"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/spec"
)

func testGenerator(t *testing.T, seed int64) *Generator {
	t.Helper()
	data, err := configs.FS.ReadFile("tumble.yaml")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	gs, err := spec.GetGameSettingByYAML(data)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	g, err := New(gs, core.NewWithSeed(seed))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	return g
}

func TestGenerateBoardFillsEveryCell(t *testing.T) {
	g := testGenerator(t, 1)
	for i := 0; i < 500; i++ {
		b, markers, err := g.GenerateBoard(5, 6)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if b.CountEmpty() != 0 {
			t.Fatalf("board has empty cells")
		}
		if len(markers) > 2 || len(b.Multipliers()) != len(markers) {
			t.Fatalf("markers %d board multipliers %d", len(markers), len(b.Multipliers()))
		}
	}
}

func TestGenerateBoardDeterministic(t *testing.T) {
	b1, _, _ := testGenerator(t, 9).GenerateBoard(5, 6)
	b2, _, _ := testGenerator(t, 9).GenerateBoard(5, 6)
	for i := range b1.Cells {
		if b1.Cells[i] != b2.Cells[i] {
			t.Fatalf("cell %d differs: %+v vs %+v", i, b1.Cells[i], b2.Cells[i])
		}
	}
}

func TestGenerateBoardRejectsBadSize(t *testing.T) {
	g := testGenerator(t, 1)
	if _, _, err := g.GenerateBoard(0, 6); !errs.Is(err, errs.CodeBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestInjectAllUsesSymbolCellsOnly(t *testing.T) {
	g := testGenerator(t, 12)
	g.chance = 1
	b := board.New(2, 2)
	b.Cells[0] = board.MultiplierOf(0, 2)
	b.Cells[1] = board.SymbolOf(1)
	markers := g.InjectAll(b)
	if len(markers) != 1 || markers[0].Position != (board.Position{Row: 0, Col: 1}) {
		t.Fatalf("expected single injection at (0,1), got %v", markers)
	}
}

func TestInjectEmptyPositionsIsNoop(t *testing.T) {
	g := testGenerator(t, 2)
	b, _, _ := g.GenerateBoard(5, 6)
	before := b.Clone()
	snap, _ := g.core.Snapshot()
	markers := g.InjectMultipliers(b, []board.Position{}, 1)
	if len(markers) != 0 {
		t.Fatalf("expected no markers, got %v", markers)
	}
	for i := range b.Cells {
		if b.Cells[i] != before.Cells[i] {
			t.Fatalf("board modified at %d", i)
		}
	}
	after, _ := g.core.Snapshot()
	if string(snap) != string(after) {
		t.Fatalf("empty eligible list must not consume randomness")
	}
}

func TestInjectRestrictsCandidates(t *testing.T) {
	g := testGenerator(t, 3)
	b := board.New(2, 3)
	for i := range b.Cells {
		b.Cells[i] = board.MultiplierOf(0, 2)
	}
	b.Cells[4] = board.SymbolOf(1)
	all := []board.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}}
	for i := 0; i < 50; i++ {
		c := b.Clone()
		markers := g.InjectMultipliers(c, all, 1)
		if len(markers) != 1 || markers[0].Position != (board.Position{Row: 1, Col: 1}) {
			t.Fatalf("only the symbol cell is a candidate, got %+v", markers)
		}
	}
	// 全是倍數格：沒有候選，no-op
	b.Cells[4] = board.MultiplierOf(0, 2)
	if markers := g.InjectMultipliers(b, nil, 1); len(markers) != 0 {
		t.Fatalf("expected no candidates")
	}
}

func TestInjectCountAndDistinct(t *testing.T) {
	g := testGenerator(t, 4)
	eligible := []board.Position{{Row: 0, Col: 0}, {Row: 0, Col: 3}, {Row: 2, Col: 5}}
	counts := map[int]int{}
	for i := 0; i < 4000; i++ {
		b := board.New(5, 6)
		for j := range b.Cells {
			b.Cells[j] = board.SymbolOf(0)
		}
		markers := g.InjectMultipliers(b, eligible, 1)
		counts[len(markers)]++
		if len(markers) == 2 && markers[0].Position == markers[1].Position {
			t.Fatalf("duplicate injection position")
		}
		for _, m := range markers {
			ok := false
			for _, p := range eligible {
				ok = ok || p == m.Position
			}
			if !ok {
				t.Fatalf("marker outside eligible set: %v", m.Position)
			}
			c, _ := b.At(m.Position)
			if c.Kind != board.MultiplierCell || c.Value != m.Value {
				t.Fatalf("board not updated at %v", m.Position)
			}
		}
	}
	if counts[0] != 0 || counts[1] < 1800 || counts[2] < 1800 {
		t.Fatalf("count distribution %v", counts)
	}
}

func TestInjectChanceRate(t *testing.T) {
	g := testGenerator(t, 5)
	fired := 0
	const n = 40000
	b := board.New(5, 6)
	for i := 0; i < n; i++ {
		for j := range b.Cells {
			b.Cells[j] = board.SymbolOf(2)
		}
		if len(g.InjectMultipliers(b, nil, 0.15)) > 0 {
			fired++
		}
	}
	if rate := float64(fired) / n; rate < 0.14 || rate > 0.16 {
		t.Fatalf("injection rate %.4f, want ~0.15", rate)
	}
}

func TestSampleMultiplierValues(t *testing.T) {
	g := testGenerator(t, 6)
	for i := 0; i < 5000; i++ {
		tier, v := g.SampleMultiplier()
		ok := false
		for _, x := range g.tierValues[tier] {
			ok = ok || x == v
		}
		if !ok {
			t.Fatalf("value %d not in tier %d", v, tier)
		}
	}
	var total int64
	for _, n := range g.Tally.Tiers {
		total += n
	}
	if total != 5000 {
		t.Fatalf("tally %d", total)
	}
	g.ResetTally()
	if g.Tally.Tiers[0] != 0 {
		t.Fatalf("reset failed")
	}
}
