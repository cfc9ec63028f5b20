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

import "github.com/zintix-labs/tumblab/sdk/board"

// Fill 配合 Gravity 使用：每行從 fillTop 往上補到 row 0，每格記一筆生成位移。
//
// spawn 依「行由左至右、列由下至上」的順序被呼叫。
func Fill(b *board.Board, fillTop []int, spawn func() board.Cell, moves []TumbleMove) []TumbleMove {
	cols := b.Cols
	for c, top := range fillTop {
		for r := top; r >= 0; r-- {
			b.Cells[r*cols+c] = spawn()
			moves = append(moves, TumbleMove{FromRow: SpawnedRow, ToRow: r, Col: c})
		}
	}
	return moves
}

// ApplyTumble 重力壓實後補滿空位，回傳本次所有位移（先壓實、後生成）。
//
// 已壓實且無空格的盤面回傳空列表。
func ApplyTumble(b *board.Board, spawn func() board.Cell) []TumbleMove {
	fillTop := make([]int, b.Cols)
	moves := Gravity(b, nil, fillTop)
	return Fill(b, fillTop, spawn, moves)
}

// SpawnedPositions 從位移列表取出新生成的格子座標
func SpawnedPositions(moves []TumbleMove) []board.Position {
	out := make([]board.Position, 0, len(moves))
	for _, m := range moves {
		if m.Spawned() {
			out = append(out, board.Position{Row: m.ToRow, Col: m.Col})
		}
	}
	return out
}
