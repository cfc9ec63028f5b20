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

// 本檔案 (aliastable.go) 實作 Vose's Alias Method（整數版）。
//
//   - 建表 O(N)，抽樣 O(1)，固定消耗 2 次 IntN。
//   - 全整數 scaling，避免浮點誤差（0.999... != 1.0）。
//   - 記憶體與選項數成正比，與權重總和無關。

package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/core"
)

// AliasTable 是 Vose Alias Method 的整數版本。
//
//   - Prob: 每個槽位經 scaling 後的「自己」機率。
//   - Aliases: 槽位機率不足時補位的索引。
//   - Total: 權重總和，抽樣時作為整數比較的分母。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 根據權重建立 AliasTable。
//
// 權重需為非負整數且總和 > 0；w*n 溢位時回傳錯誤。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return nil, err
	}
	n := len(weights)
	if !isSafeMultiply(total, n) {
		return nil, errs.Configf("alias table: weights too large, w*n overflows")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		prob[i] = w * n // 整數 scaling
		if prob[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] = prob[l] + prob[s] - total // 維持 sum(prob) = total * n

		if prob[l] < total {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 殘留者機率視為滿格，避免整數邊界造成永遠走 alias
	for _, i := range large {
		prob[i] = total
	}
	for _, i := range small {
		prob[i] = total
	}

	return &AliasTable{
		Prob:    prob,
		Aliases: aliases,
		Size:    n,
		Total:   total,
	}, nil
}

// Pick 抽出一個索引：先選槽位，再以 IntN(Total) < Prob[idx] 決定自己或 alias。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}

// Len 回傳選項數量
func (at *AliasTable) Len() int { return at.Size }

// isSafeMultiply 檢查 a*b 是否超過 math.MaxInt64。
func isSafeMultiply(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && lo <= math.MaxInt64
}
