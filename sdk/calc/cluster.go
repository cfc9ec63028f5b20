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

// Package calc 負責集群判定與派彩計算。
package calc

import (
	"github.com/zintix-labs/tumblab/sdk/board"
)

// Cluster 同一基本圖標、4 向相連、且為極大的一組座標。
type Cluster struct {
	Symbol    board.Symbol     `json:"symbol"`
	Positions []board.Position `json:"positions"`
}

// Size 集群大小
func (c Cluster) Size() int { return len(c.Positions) }

// ClusterFinder 以顯式堆疊做 flood fill，緩衝在多次呼叫間重用。
//
// 倍數格與空格在判定前就被遮罩成 NoSymbol，不會加入也不會切斷集群以外的任何東西。
type ClusterFinder struct {
	MinSize     int
	SymbolCount int

	stack   []int
	visited []bool
	members []int
}

// NewClusterFinder 建立集群判定器
func NewClusterFinder(minSize, symbolCount int) *ClusterFinder {
	return &ClusterFinder{MinSize: minSize, SymbolCount: symbolCount}
}

// FindClusters 單次呼叫的便利函式
func FindClusters(b *board.Board, minSize, symbolCount int) []Cluster {
	return NewClusterFinder(minSize, symbolCount).FindClusters(b)
}

// resetSizes 只調整容量，visited 會清為 false
func (f *ClusterFinder) resetSizes(n int) {
	if cap(f.visited) < n {
		f.visited = make([]bool, n)
		f.stack = make([]int, 0, n)
		f.members = make([]int, 0, n)
	}
	f.visited = f.visited[:n]
	clear(f.visited)
}

// FindClusters 回傳所有大小 >= MinSize 的集群。
//
// 外層依圖標表順序、內層依 row-major 掃描起點，因此輸出順序穩定；
// 每格最多被走訪一次，回傳的集群彼此不共用座標。
func (f *ClusterFinder) FindClusters(b *board.Board) []Cluster {
	n := len(b.Cells)
	f.resetSizes(n)
	rows, cols := b.Rows, b.Cols
	var out []Cluster

	for s := 0; s < f.SymbolCount; s++ {
		sym := board.Symbol(s)
		for start := 0; start < n; start++ {
			if f.visited[start] || b.Cells[start].Masked() != sym {
				continue
			}
			f.visited[start] = true
			f.stack = append(f.stack[:0], start)
			f.members = f.members[:0]

			for len(f.stack) > 0 {
				curr := f.stack[len(f.stack)-1]
				f.stack = f.stack[:len(f.stack)-1]
				f.members = append(f.members, curr)

				r, c := curr/cols, curr%cols
				if r > 0 {
					f.push(b, curr-cols, sym)
				}
				if r+1 < rows {
					f.push(b, curr+cols, sym)
				}
				if c > 0 {
					f.push(b, curr-1, sym)
				}
				if c+1 < cols {
					f.push(b, curr+1, sym)
				}
			}

			if len(f.members) < f.MinSize {
				continue
			}
			pos := make([]board.Position, len(f.members))
			for i, idx := range f.members {
				pos[i] = b.PosOf(idx)
			}
			out = append(out, Cluster{Symbol: sym, Positions: pos})
		}
	}
	return out
}

func (f *ClusterFinder) push(b *board.Board, next int, sym board.Symbol) {
	if f.visited[next] || b.Cells[next].Masked() != sym {
		return
	}
	f.visited[next] = true
	f.stack = append(f.stack, next)
}
