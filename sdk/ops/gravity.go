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

// SpawnedRow TumbleMove.FromRow 的哨兵值：格子從盤面上方新生成。
const SpawnedRow = -1

// TumbleMove 單一格在一次重力處理中的垂直位移
type TumbleMove struct {
	FromRow int `json:"from_row"`
	ToRow   int `json:"to_row"`
	Col     int `json:"col"`
}

// Spawned 回報是否為新生成的格子
func (m TumbleMove) Spawned() bool { return m.FromRow == SpawnedRow }

// Gravity 逐行由下往上壓實非空格（保持相對順序），原地修改。
//
//   - moves: 追加每個 row 真正改變的格子，回傳追加後的切片
//   - fillTop: 若非 nil，寫入每行壓實後最上方非空格的上一列（-1 表示該行已滿）
//
// 行與行之間完全獨立。
func Gravity(b *board.Board, moves []TumbleMove, fillTop []int) []TumbleMove {
	rows, cols := b.Rows, b.Cols
	cells := b.Cells
	for c := 0; c < cols; c++ {
		wp := rows - 1 // write pointer (row)
		for r := rows - 1; r >= 0; r-- {
			rp := r*cols + c
			if cells[rp].Kind == board.Empty {
				continue
			}
			if r != wp {
				cells[wp*cols+c] = cells[rp]
				cells[rp] = board.Cell{}
				moves = append(moves, TumbleMove{FromRow: r, ToRow: wp, Col: c})
			}
			wp--
		}
		if fillTop != nil && c < len(fillTop) {
			fillTop[c] = wp
		}
	}
	return moves
}
