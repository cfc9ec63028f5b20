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

// 本檔案 (cumulative.go) 實作累積權重表 + 二分搜尋。
//
//   - 建表 O(N)，抽樣 O(log N)，只消耗 1 次 IntN。
//   - 與選項順序綁定：同 seed 同權重表必得同結果，便於稽核。

package sampler

import (
	"math"
	"sort"

	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/core"
)

// CumulativeTable 存放前綴和，Bounds[i] = w[0] + ... + w[i]。
type CumulativeTable struct {
	Bounds []int
	Total  int
}

// BuildCumulativeTable 依權重建立累積表。
func BuildCumulativeTable(weights []int) (*CumulativeTable, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return nil, err
	}
	bounds := make([]int, len(weights))
	acc := 0
	for i, w := range weights {
		acc += w
		bounds[i] = acc
	}
	return &CumulativeTable{Bounds: bounds, Total: total}, nil
}

// Pick 抽一個 [0,Total) 的整數，回傳第一個 Bounds[i] > u 的 i。
// 權重為 0 的選項前後 Bounds 相同，永遠不會被選中。
func (ct *CumulativeTable) Pick(c *core.Core) int {
	if len(ct.Bounds) == 0 {
		return -1
	}
	u := c.IntN(ct.Total)
	return sort.Search(len(ct.Bounds), func(i int) bool { return ct.Bounds[i] > u })
}

// Len 回傳選項數量
func (ct *CumulativeTable) Len() int { return len(ct.Bounds) }

func sumWeights(weights []int) (int, error) {
	if len(weights) == 0 {
		return 0, errs.Configf("sampler: empty weights")
	}
	total := 0
	for i, w := range weights {
		if w < 0 {
			return 0, errs.Configf("sampler: negative weight %d at %d", w, i)
		}
		if total > math.MaxInt-w {
			return 0, errs.Configf("sampler: total weight overflows int")
		}
		total += w
	}
	if total == 0 {
		return 0, errs.Configf("sampler: all weights are zero")
	}
	return total, nil
}
