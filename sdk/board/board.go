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

// Package board 定義盤面資料模型。
//
// 盤面以一維切片存放，索引 idx = r*Cols + c，row 0 為最上方。
// 每格在任何時刻都恰好是「基本圖標」「倍數標記」之一；
// Empty 只在消除到補盤之間短暫存在。
package board

import (
	"fmt"

	"github.com/zintix-labs/tumblab/errs"
)

// Symbol 基本圖標 ID，對應設定檔 symbols.table 的索引。
type Symbol int16

// NoSymbol 遮罩值：倍數格與空格在集群判定時一律視為 NoSymbol。
const NoSymbol Symbol = -1

// Kind 格子種類
type Kind uint8

const (
	Empty Kind = iota
	SymbolCell
	MultiplierCell
)

func (k Kind) String() string {
	switch k {
	case SymbolCell:
		return "symbol"
	case MultiplierCell:
		return "multiplier"
	default:
		return "empty"
	}
}

// Cell 格子內容（tagged value）。
//
//   - Kind == SymbolCell: 只有 Symbol 有意義
//   - Kind == MultiplierCell: Tier 為階層索引，Value 為倍數值
type Cell struct {
	Kind   Kind   `json:"kind"`
	Symbol Symbol `json:"symbol"`
	Tier   int    `json:"tier"`
	Value  int    `json:"value"`
}

// SymbolOf 建立基本圖標格
func SymbolOf(s Symbol) Cell { return Cell{Kind: SymbolCell, Symbol: s} }

// MultiplierOf 建立倍數格
func MultiplierOf(tier, value int) Cell {
	return Cell{Kind: MultiplierCell, Symbol: NoSymbol, Tier: tier, Value: value}
}

// Masked 回傳集群判定用的純圖標視圖。
func (c Cell) Masked() Symbol {
	if c.Kind != SymbolCell {
		return NoSymbol
	}
	return c.Symbol
}

// Position 盤面座標，0-indexed。
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// MultiplierMarker 注入結果，供呈現層做動畫。
type MultiplierMarker struct {
	Position Position `json:"position"`
	Tier     int      `json:"tier"`
	Value    int      `json:"value"`
}

// Board 固定尺寸盤面。一局 Spin 內由單一編排者獨佔並原地修改。
type Board struct {
	Rows  int
	Cols  int
	Cells []Cell
}

// New 建立全空盤面
func New(rows, cols int) *Board {
	return &Board{Rows: rows, Cols: cols, Cells: make([]Cell, rows*cols)}
}

// InBounds 回報座標是否在盤面內
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.Rows && p.Col >= 0 && p.Col < b.Cols
}

// Index 將座標轉為一維索引，不做邊界檢查
func (b *Board) Index(p Position) int { return p.Row*b.Cols + p.Col }

// PosOf 將一維索引轉回座標
func (b *Board) PosOf(idx int) Position {
	return Position{Row: idx / b.Cols, Col: idx % b.Cols}
}

// At 讀取格子；越界回傳 CodeOutOfBounds (Warn)，不會夾回邊界。
func (b *Board) At(p Position) (Cell, error) {
	if !b.InBounds(p) {
		return Cell{}, b.outOfBounds(p)
	}
	return b.Cells[b.Index(p)], nil
}

// Set 寫入格子；越界回傳 CodeOutOfBounds (Warn)。
func (b *Board) Set(p Position, c Cell) error {
	if !b.InBounds(p) {
		return b.outOfBounds(p)
	}
	b.Cells[b.Index(p)] = c
	return nil
}

// SymbolAt 回傳該格的基本圖標；越界、空格或倍數格時 ok 為 false。
func (b *Board) SymbolAt(p Position) (Symbol, bool) {
	if !b.InBounds(p) {
		return NoSymbol, false
	}
	c := b.Cells[b.Index(p)]
	if c.Kind != SymbolCell {
		return NoSymbol, false
	}
	return c.Symbol, true
}

func (b *Board) outOfBounds(p Position) error {
	return errs.Warnf("position %s out of %dx%d board", p, b.Rows, b.Cols).WithCode(errs.CodeOutOfBounds)
}

// Clone 深拷貝
func (b *Board) Clone() *Board {
	nb := &Board{Rows: b.Rows, Cols: b.Cols, Cells: make([]Cell, len(b.Cells))}
	copy(nb.Cells, b.Cells)
	return nb
}

// CopyFrom 將 src 的內容複製進 b，尺寸不同時重新配置
func (b *Board) CopyFrom(src *Board) {
	b.Rows, b.Cols = src.Rows, src.Cols
	if cap(b.Cells) < len(src.Cells) {
		b.Cells = make([]Cell, len(src.Cells))
	}
	b.Cells = b.Cells[:len(src.Cells)]
	copy(b.Cells, src.Cells)
}

// MultiplierSum 盤面上所有倍數標記值的總和
func (b *Board) MultiplierSum() int {
	sum := 0
	for _, c := range b.Cells {
		if c.Kind == MultiplierCell {
			sum += c.Value
		}
	}
	return sum
}

// Multipliers 依 row-major 順序列出盤面上的倍數標記
func (b *Board) Multipliers() []MultiplierMarker {
	var out []MultiplierMarker
	for i, c := range b.Cells {
		if c.Kind == MultiplierCell {
			out = append(out, MultiplierMarker{Position: b.PosOf(i), Tier: c.Tier, Value: c.Value})
		}
	}
	return out
}

// CountEmpty 空格數量
func (b *Board) CountEmpty() int {
	n := 0
	for _, c := range b.Cells {
		if c.Kind == Empty {
			n++
		}
	}
	return n
}

// Symbols 將盤面轉為 [row][col] 的遮罩圖標視圖，倍數格與空格為 NoSymbol。
func (b *Board) Symbols() [][]Symbol {
	out := make([][]Symbol, b.Rows)
	for r := range out {
		row := make([]Symbol, b.Cols)
		for c := range row {
			row[c] = b.Cells[r*b.Cols+c].Masked()
		}
		out[r] = row
	}
	return out
}
