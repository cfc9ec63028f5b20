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

package ops

import (
	"testing"

	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/calc"
	"github.com/zintix-labs/tumblab/sdk/core"
)

func counterSpawn(start board.Symbol) func() board.Cell {
	next := start
	return func() board.Cell {
		c := board.SymbolOf(next)
		next++
		return c
	}
}

func TestClearMatches(t *testing.T) {
	b := board.New(2, 2)
	for i := range b.Cells {
		b.Cells[i] = board.SymbolOf(1)
	}
	cl := calc.Cluster{Symbol: 1, Positions: []board.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 5, Col: 5}}}
	if n := ClearMatches(b, []calc.Cluster{cl}); n != 2 {
		t.Fatalf("cleared %d", n)
	}
	if b.Cells[0].Kind != board.Empty || b.Cells[3].Kind != board.Empty || b.Cells[1].Kind != board.SymbolCell {
		t.Fatalf("unexpected board %+v", b.Cells)
	}
}

// 5 列單行：rows 2 與 4 有圖標，其餘為空
func TestTumbleColumnScenario(t *testing.T) {
	b := board.New(5, 1)
	b.Cells[2] = board.SymbolOf(7)
	b.Cells[4] = board.SymbolOf(8)
	moves := ApplyTumble(b, counterSpawn(0))
	if len(moves) != 4 {
		t.Fatalf("expected 4 moves (row 4 already in place), got %+v", moves)
	}
	if moves[0] != (TumbleMove{FromRow: 2, ToRow: 3, Col: 0}) {
		t.Fatalf("unexpected compaction move %+v", moves[0])
	}
	if b.Cells[3].Symbol != 7 || b.Cells[4].Symbol != 8 {
		t.Fatalf("relative order lost: %+v", b.Cells)
	}
	spawned := SpawnedPositions(moves)
	if len(spawned) != 3 {
		t.Fatalf("expected 3 spawned, got %v", spawned)
	}
	for i, p := range spawned {
		if p.Row != 2-i || p.Col != 0 {
			t.Fatalf("spawn order %v", spawned)
		}
	}

	// 兩個圖標都需要移動時，共 5 筆位移
	b = board.New(5, 1)
	b.Cells[1] = board.SymbolOf(7)
	b.Cells[3] = board.SymbolOf(8)
	moves = ApplyTumble(b, counterSpawn(0))
	if len(moves) != 5 || b.Cells[3].Symbol != 7 || b.Cells[4].Symbol != 8 {
		t.Fatalf("expected 2 compaction + 3 spawn, got %+v", moves)
	}
}

func TestTumbleIdempotentOnFullBoard(t *testing.T) {
	b := board.New(5, 6)
	for i := range b.Cells {
		b.Cells[i] = board.SymbolOf(board.Symbol(i % 9))
	}
	before := b.Clone()
	if moves := ApplyTumble(b, counterSpawn(0)); len(moves) != 0 {
		t.Fatalf("full board must produce no moves, got %d", len(moves))
	}
	for i := range b.Cells {
		if b.Cells[i] != before.Cells[i] {
			t.Fatalf("full board modified")
		}
	}
}

func TestClearThenTumbleLeavesNoEmpty(t *testing.T) {
	c := core.NewWithSeed(21)
	spawn := func() board.Cell { return board.SymbolOf(board.Symbol(c.IntN(9))) }
	for trial := 0; trial < 300; trial++ {
		b := board.New(5, 6)
		for i := range b.Cells {
			if c.Chance(0.1) {
				b.Cells[i] = board.MultiplierOf(0, 3)
			} else {
				b.Cells[i] = spawn()
			}
		}
		var cl calc.Cluster
		for i := range b.Cells {
			if c.Chance(0.4) {
				cl.Positions = append(cl.Positions, b.PosOf(i))
			}
		}
		cleared := ClearMatches(b, []calc.Cluster{cl})
		mults := b.MultiplierSum()
		moves := ApplyTumble(b, spawn)
		if b.CountEmpty() != 0 {
			t.Fatalf("trial %d: empty cells remain", trial)
		}
		if len(SpawnedPositions(moves)) != cleared {
			t.Fatalf("trial %d: spawned %d cleared %d", trial, len(SpawnedPositions(moves)), cleared)
		}
		if b.MultiplierSum() != mults {
			t.Fatalf("multipliers must survive tumble")
		}
		for _, m := range moves {
			if m.Spawned() {
				continue
			}
			if m.ToRow <= m.FromRow {
				t.Fatalf("move must go down: %+v", m)
			}
		}
	}
}

func TestColumnsIndependent(t *testing.T) {
	b := board.New(3, 2)
	for i := range b.Cells {
		b.Cells[i] = board.SymbolOf(board.Symbol(i))
	}
	b.Cells[2*2+0] = board.Cell{}
	moves := ApplyTumble(b, counterSpawn(50))
	for _, m := range moves {
		if m.Col != 0 {
			t.Fatalf("column 1 must be untouched, got %+v", m)
		}
	}
	if b.Cells[1].Symbol != 1 || b.Cells[3].Symbol != 3 || b.Cells[5].Symbol != 5 {
		t.Fatalf("column 1 changed: %+v", b.Cells)
	}
}
