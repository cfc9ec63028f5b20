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

package calc

import (
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/spec"
)

// WinGroup 單一集群在單一回合的派彩結果
type WinGroup struct {
	Symbol board.Symbol    `json:"symbol"`
	Name   string          `json:"name"`
	Size   int             `json:"size"`
	Payout decimal.Decimal `json:"payout"`
}

// PayTable 依 (圖標, 集群大小) 查派彩。
//
// 金額是押注等於 base bet 時的派彩幣值（例如 Crown 8 格 = 2.00 @ 0.20），
// 不是 base bet 的倍數；cascade 再依 bet_mult 等比放大。
type PayTable struct {
	Thresholds []int
	Pays       [][]decimal.Decimal
	Names      []string
	Log        *slog.Logger
}

// NewPayTable 從已初始化的遊戲設定建立派彩表
func NewPayTable(gs *spec.GameSetting, log *slog.Logger) *PayTable {
	if log == nil {
		log = slog.Default()
	}
	names := make([]string, gs.SymbolSetting.Count())
	for i := range names {
		names[i] = gs.SymbolSetting.Name(i)
	}
	return &PayTable{
		Thresholds: gs.ClusterSetting.PayThresholds,
		Pays:       gs.SymbolSetting.PayTable,
		Names:      names,
		Log:        log,
	}
}

// Payout 取最高且 <= size 的門檻對應派彩；未達最低門檻為 0。
// 未知圖標回傳 0 並記錄警告（圖標集合是封閉的，出現即代表資料不一致）。
func (pt *PayTable) Payout(sym board.Symbol, size int) decimal.Decimal {
	if sym < 0 || int(sym) >= len(pt.Pays) {
		pt.logger().Warn("payout lookup for unknown symbol", slog.Int("symbol", int(sym)), slog.Int("size", size))
		return decimal.Zero
	}
	row := pt.Pays[sym]
	for i := len(pt.Thresholds) - 1; i >= 0; i-- {
		if size >= pt.Thresholds[i] && i < len(row) {
			return row[i]
		}
	}
	return decimal.Zero
}

// CalculateWinnings 加總一回合所有集群的派彩，圖標取自集群第一格在盤面上的值。
// 加總與集群順序無關。
func (pt *PayTable) CalculateWinnings(clusters []Cluster, b *board.Board) (decimal.Decimal, []WinGroup) {
	total := decimal.Zero
	groups := make([]WinGroup, 0, len(clusters))
	for _, cl := range clusters {
		if len(cl.Positions) == 0 {
			continue
		}
		sym, ok := b.SymbolAt(cl.Positions[0])
		if !ok {
			sym = board.NoSymbol
		}
		pay := pt.Payout(sym, len(cl.Positions))
		name := "?"
		if sym >= 0 && int(sym) < len(pt.Names) {
			name = pt.Names[sym]
		}
		groups = append(groups, WinGroup{Symbol: sym, Name: name, Size: len(cl.Positions), Payout: pay})
		total = total.Add(pay)
	}
	return total, groups
}

func (pt *PayTable) logger() *slog.Logger {
	if pt.Log == nil {
		return slog.Default()
	}
	return pt.Log
}
