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

package spec

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
)

// SymbolDef 單一基本圖標：名稱、抽樣權重、各門檻的派彩。
type SymbolDef struct {
	Name   string    `yaml:"name"   json:"name"`
	Weight int       `yaml:"weight" json:"weight"`
	Pays   []float64 `yaml:"pays"   json:"pays"`
}

// SymbolSetting 基本圖標表。
//
// 圖標 ID 即其在 Symbols 內的索引；表的順序同時決定集群輸出順序。
type SymbolSetting struct {
	Symbols  []SymbolDef         `yaml:"table" json:"table"`
	Weights  []int               `yaml:"-"     json:"-"`
	PayTable [][]decimal.Decimal `yaml:"-"     json:"-"`
	index    map[string]int
	initFlag bool
}

// Init 檢查設定並賦值
func (ss *SymbolSetting) Init() error {
	if ss.initFlag {
		return nil
	}
	if len(ss.Symbols) == 0 {
		return errs.Configf("symbol table is empty")
	}
	if len(ss.Symbols) > math.MaxInt16 {
		return errs.Configf("too many symbols: %d", len(ss.Symbols))
	}
	ss.Weights = make([]int, len(ss.Symbols))
	ss.PayTable = make([][]decimal.Decimal, len(ss.Symbols))
	ss.index = make(map[string]int, len(ss.Symbols))
	total := 0
	for i, s := range ss.Symbols {
		if s.Name == "" {
			return errs.Configf("symbol %d has no name", i)
		}
		if _, dup := ss.index[s.Name]; dup {
			return errs.Configf("duplicate symbol %s", s.Name)
		}
		if s.Weight < 0 {
			return errs.Configf("symbol %s has negative weight", s.Name)
		}
		ss.index[s.Name] = i
		ss.Weights[i] = s.Weight
		total += s.Weight
		row := make([]decimal.Decimal, len(s.Pays))
		for j, p := range s.Pays {
			if p < 0 {
				return errs.Configf("symbol %s has negative pay", s.Name)
			}
			row[j] = decimal.NewFromFloat(p)
		}
		ss.PayTable[i] = row
	}
	if total == 0 {
		return errs.Configf("symbol weights are all zero")
	}
	ss.initFlag = true
	return nil
}

// Count 回傳基本圖標數量
func (ss *SymbolSetting) Count() int { return len(ss.Symbols) }

// Name 回傳圖標名稱；越界時回傳 "?"
func (ss *SymbolSetting) Name(id int) string {
	if id < 0 || id >= len(ss.Symbols) {
		return "?"
	}
	return ss.Symbols[id].Name
}

// ID 依名稱查圖標 ID
func (ss *SymbolSetting) ID(name string) (int, bool) {
	id, ok := ss.index[name]
	return id, ok
}
