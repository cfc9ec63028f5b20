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

// Package ops 提供盤面原地操作：消除、重力下落、補盤。
package ops

import (
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/calc"
)

// ClearMatches 將所有集群格設為 Empty，回傳實際清掉的格數。
//
// 越界座標直接略過；必須在 ApplyTumble 之前呼叫。
func ClearMatches(b *board.Board, clusters []calc.Cluster) int {
	n := 0
	for _, cl := range clusters {
		for _, p := range cl.Positions {
			if !b.InBounds(p) {
				continue
			}
			idx := b.Index(p)
			if b.Cells[idx].Kind != board.Empty {
				b.Cells[idx] = board.Cell{}
				n++
			}
		}
	}
	return n
}
