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

// Package gen 負責所有隨機生成：基本圖標、倍數階層與值、開局盤面、倍數注入。
package gen

import (
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/sdk/sampler"
	"github.com/zintix-labs/tumblab/spec"
)

// Tally 記錄抽樣次數，供統計做分佈檢定。
type Tally struct {
	Symbols []int64
	Tiers   []int64
}

// Generator 保存生成所需的所有狀態。
// 抽樣表在建立時就預先算好，熱路徑上不再配置。
type Generator struct {
	core        *core.Core
	symbols     sampler.Picker
	tiers       sampler.Picker
	tierValues  [][]int
	maxPerEvent int
	chance      float64
	initChance  float64

	cand  []int // 注入候選格 idx 緩衝
	Tally Tally
}

// New 根據遊戲設定與核心亂數器建立生成器。
func New(gs *spec.GameSetting, c *core.Core) (*Generator, error) {
	if err := gs.Init(); err != nil {
		return nil, err
	}
	kind := sampler.Kind(gs.Sampler)
	syms, err := sampler.Build(kind, gs.SymbolSetting.Weights)
	if err != nil {
		return nil, err
	}
	tiers, err := sampler.Build(kind, gs.MultSetting.TierWeights)
	if err != nil {
		return nil, err
	}
	ms := &gs.MultSetting
	g := &Generator{
		core:        c,
		symbols:     syms,
		tiers:       tiers,
		tierValues:  make([][]int, len(ms.Tiers)),
		maxPerEvent: ms.MaxPerEvent,
		chance:      ms.InjectChance,
		initChance:  *ms.InitialInjectChance,
		cand:        make([]int, 0, gs.BoardSetting.Size),
		Tally: Tally{
			Symbols: make([]int64, syms.Len()),
			Tiers:   make([]int64, tiers.Len()),
		},
	}
	for i, t := range ms.Tiers {
		g.tierValues[i] = t.Values
	}
	return g, nil
}

// ResetTally 歸零抽樣計數
func (g *Generator) ResetTally() {
	clear(g.Tally.Symbols)
	clear(g.Tally.Tiers)
}

// SampleSymbol 依權重抽一個基本圖標
func (g *Generator) SampleSymbol() board.Symbol {
	id := g.symbols.Pick(g.core)
	g.Tally.Symbols[id]++
	return board.Symbol(id)
}

// SampleMultiplier 先依權重抽階層，再於階層內均勻抽倍數值
func (g *Generator) SampleMultiplier() (tier int, value int) {
	tier = g.tiers.Pick(g.core)
	g.Tally.Tiers[tier]++
	vals := g.tierValues[tier]
	return tier, vals[g.core.IntN(len(vals))]
}

// SpawnCell 補盤用：回傳新抽出的基本圖標格
func (g *Generator) SpawnCell() board.Cell {
	return board.SymbolOf(g.SampleSymbol())
}

// GenerateBoard 建立新盤面並以開局機率對全盤注入倍數。
func (g *Generator) GenerateBoard(rows, cols int) (*board.Board, []board.MultiplierMarker, error) {
	if rows <= 0 || cols <= 0 {
		return nil, nil, errs.BadRequestf("board %dx%d must be positive", rows, cols)
	}
	b := board.New(rows, cols)
	return b, g.Fill(b), nil
}

// Fill 原地重填整個盤面（重用既有緩衝），再對全盤注入倍數。
func (g *Generator) Fill(b *board.Board) []board.MultiplierMarker {
	for i := range b.Cells {
		b.Cells[i] = g.SpawnCell()
	}
	return g.InjectMultipliers(b, nil, g.initChance)
}

// InjectAll 以消除後的機率對全盤基本圖標格注入倍數
func (g *Generator) InjectAll(b *board.Board) []board.MultiplierMarker {
	return g.InjectMultipliers(b, nil, g.chance)
}

// InjectSpawned 消除補盤後的注入：只限新落下的格子。
func (g *Generator) InjectSpawned(b *board.Board, spawned []board.Position) []board.MultiplierMarker {
	if len(spawned) == 0 {
		return nil
	}
	return g.InjectMultipliers(b, spawned, g.chance)
}

// InjectMultipliers 倍數注入。
//
//   - positions == nil 代表全盤皆可；非 nil 的空切片直接 no-op，不消耗亂數。
//   - 以機率 chance 觸發，未觸發即 no-op。
//   - 候選格只保留基本圖標格（倍數不疊加、不落在空格）。
//   - 注入數量在 [1, min(maxPerEvent, 候選數)] 均勻抽取，位置不放回均勻抽取。
func (g *Generator) InjectMultipliers(b *board.Board, positions []board.Position, chance float64) []board.MultiplierMarker {
	if positions != nil && len(positions) == 0 {
		return nil
	}
	if !g.core.Chance(chance) {
		return nil
	}
	cand := g.cand[:0]
	if positions == nil {
		for i, c := range b.Cells {
			if c.Kind == board.SymbolCell {
				cand = append(cand, i)
			}
		}
	} else {
		for _, p := range positions {
			if !b.InBounds(p) {
				continue
			}
			idx := b.Index(p)
			if b.Cells[idx].Kind == board.SymbolCell && !contains(cand, idx) {
				cand = append(cand, idx)
			}
		}
	}
	g.cand = cand
	if len(cand) == 0 {
		return nil
	}
	count := g.core.Between(1, min(g.maxPerEvent, len(cand)))
	picks := g.core.SampleDistinct(len(cand), count)
	out := make([]board.MultiplierMarker, 0, len(picks))
	for _, k := range picks {
		idx := cand[k]
		tier, value := g.SampleMultiplier()
		b.Cells[idx] = board.MultiplierOf(tier, value)
		out = append(out, board.MultiplierMarker{Position: b.PosOf(idx), Tier: tier, Value: value})
	}
	return out
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
