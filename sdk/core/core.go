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

// Package core 提供引擎唯一的亂數來源。
//
// 所有取樣（圖標、倍數、注入位置）都經過同一個 *Core，
// 因此一局遊戲的結果完全由 PRNG 狀態決定，可用 Snapshot/Restore 重放。
package core

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一實作同一版本下，New(seed) 必須是決定性的。
type PRNGFactory interface {
	New(int64) PRNG
}

// DefaultPRNG 為預設的 PRNGFactory（PCG64）。
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並提供常用取樣與工具方法。
type Core struct {
	PRNG
	idx []int // SampleDistinct 重用的索引緩衝
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{PRNG: rng}
}

// NewWithSeed 以預設 PRNG 建立 Core。
func NewWithSeed(seed int64) *Core {
	return New(Default().New(seed))
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// Chance 以機率 p 回傳 true。p <= 0 永遠 false，p >= 1 永遠 true，且兩端都不消耗亂數。
func (c *Core) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return c.Float64() < p
}

// Between 回傳 [lo, hi] 的整數（含兩端）；hi < lo 時回傳 lo。
func (c *Core) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.IntN(hi-lo+1)
}

// ShuffleInts 以 Fisher-Yates 就地重排。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}
	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// SampleDistinct 從 [0,n) 中不放回地均勻抽出 k 個索引。
//
// 使用部分 Fisher-Yates：只洗前 k 個位置，每個索引被選中的機率相同。
// 回傳的切片指向內部緩衝，下次呼叫前有效。
func (c *Core) SampleDistinct(n int, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	k = min(k, n)
	if cap(c.idx) < n {
		c.idx = make([]int, n)
	}
	idx := c.idx[:n]
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + c.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
