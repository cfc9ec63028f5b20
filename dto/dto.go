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

// Package dto 定義對外（HTTP/WebSocket）輸入輸出的序列化結構。
//
// 金額一律以 decimal 字串輸出（例如 "30.00" 會輸出為 "30"），避免浮點誤差。
package dto

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/corefmt"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/buf"
	"github.com/zintix-labs/tumblab/sdk/calc"
	"github.com/zintix-labs/tumblab/sdk/ops"
	"github.com/zintix-labs/tumblab/spec"
)

// SpinResult 對外輸出的一局結果
type SpinResult struct {
	GameName       string           `json:"game"`
	GameID         spec.GID         `json:"gameid"`
	Bet            decimal.Decimal  `json:"bet"`
	BetMult        int              `json:"betmult"`
	InitialBoard   [][]CellDTO      `json:"initial_board,omitempty"`
	InitialMarkers []MarkerDTO      `json:"initial_multipliers,omitempty"`
	Rounds         []RoundDTO       `json:"rounds,omitempty"`
	BaseWin        decimal.Decimal  `json:"base_win"`
	MultiplierSum  int              `json:"multiplier_sum"`
	TotalWin       decimal.Decimal  `json:"win"`
	WinTier        string           `json:"win_tier,omitempty"`
	IsGameEnd      bool             `json:"isend"`
	Balance        *decimal.Decimal `json:"balance,omitempty"` // 有帶 session 時回傳扣款入帳後餘額
	State          SpinState        `json:"spin_state"`
}

// SpinState 回放用的 PRNG 快照（Base64URL）
type SpinState struct {
	StartCoreSnapB64U string `json:"start_b64u"`
	AfterCoreSnapB64U string `json:"after_b64u"`
}

// CellDTO 盤面格子：基本圖標只帶 symbol；倍數格帶 mult 與 tier。
type CellDTO struct {
	Symbol string `json:"symbol,omitempty"`
	Mult   int    `json:"mult,omitempty"`
	Tier   string `json:"tier,omitempty"`
}

// MarkerDTO 倍數注入
type MarkerDTO struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Tier  string `json:"tier"`
	Value int    `json:"value"`
}

// ClusterDTO 集群
type ClusterDTO struct {
	Symbol    string           `json:"symbol"`
	Size      int              `json:"size"`
	Positions []board.Position `json:"positions"`
}

// RoundDTO 單一連消回合
type RoundDTO struct {
	Index    int              `json:"index"`
	Clusters []ClusterDTO     `json:"clusters"`
	Wins     []calc.WinGroup  `json:"wins"`
	RoundWin decimal.Decimal  `json:"round_win"`
	BaseWin  decimal.Decimal  `json:"base_win"`
	MultSum  int              `json:"multiplier_sum"`
	Moves    []ops.TumbleMove `json:"moves"`
	Injected []MarkerDTO      `json:"injected,omitempty"`
	Board    [][]CellDTO      `json:"board,omitempty"`
}

// Namer 將 ID 轉成名稱；由 GameSetting 提供。
type Namer struct {
	gs *spec.GameSetting
}

// NewNamer 建立名稱轉換器
func NewNamer(gs *spec.GameSetting) Namer { return Namer{gs: gs} }

func (n Namer) symbol(s board.Symbol) string { return n.gs.SymbolSetting.Name(int(s)) }

func (n Namer) tier(t int) string {
	if t < 0 || t >= len(n.gs.MultSetting.Tiers) {
		return "?"
	}
	return n.gs.MultSetting.Tiers[t].Name
}

// NewSpinResultDTO 深拷貝成對外結構；sr 之後可被重用。
func NewSpinResultDTO(sr *buf.SpinResult, n Namer) (SpinResult, error) {
	if sr == nil {
		return SpinResult{}, errs.NewWarn("spin result is nil")
	}
	out := SpinResult{
		GameName:       sr.GameName,
		GameID:         sr.GameID,
		Bet:            sr.Bet,
		BetMult:        sr.BetMult,
		InitialBoard:   n.Board(sr.InitialBoard),
		InitialMarkers: n.Markers(sr.InitialMarkers),
		BaseWin:        sr.BaseWin,
		MultiplierSum:  sr.MultiplierSum,
		TotalWin:       sr.TotalWin,
		WinTier:        sr.WinTier,
		IsGameEnd:      sr.IsGameEnd,
		State: SpinState{
			StartCoreSnapB64U: corefmt.EncodeBase64URL(sr.StartSnap),
			AfterCoreSnapB64U: corefmt.EncodeBase64URL(sr.EndSnap),
		},
	}
	if len(sr.Rounds) > 0 {
		out.Rounds = make([]RoundDTO, len(sr.Rounds))
		for i := range sr.Rounds {
			out.Rounds[i] = n.Round(&sr.Rounds[i])
		}
	}
	return out, nil
}

// Round 轉換單一回合
func (n Namer) Round(rr *buf.RoundResult) RoundDTO {
	d := RoundDTO{
		Index:    rr.Index,
		Clusters: make([]ClusterDTO, len(rr.Clusters)),
		Wins:     append([]calc.WinGroup(nil), rr.WinGroups...),
		RoundWin: rr.RoundWin,
		BaseWin:  rr.BaseWin,
		MultSum:  rr.MultSum,
		Moves:    append([]ops.TumbleMove(nil), rr.Moves...),
		Injected: n.Markers(rr.Injected),
		Board:    n.Board(rr.Board),
	}
	for i, cl := range rr.Clusters {
		d.Clusters[i] = ClusterDTO{
			Symbol:    n.symbol(cl.Symbol),
			Size:      cl.Size(),
			Positions: append([]board.Position(nil), cl.Positions...),
		}
	}
	return d
}

// Board 轉成 [row][col]；nil 盤面回傳 nil
func (n Namer) Board(b *board.Board) [][]CellDTO {
	if b == nil {
		return nil
	}
	out := make([][]CellDTO, b.Rows)
	for r := range out {
		row := make([]CellDTO, b.Cols)
		for c := range row {
			cell := b.Cells[r*b.Cols+c]
			switch cell.Kind {
			case board.SymbolCell:
				row[c] = CellDTO{Symbol: n.symbol(cell.Symbol)}
			case board.MultiplierCell:
				row[c] = CellDTO{Mult: cell.Value, Tier: n.tier(cell.Tier)}
			}
		}
		out[r] = row
	}
	return out
}

// Markers 轉換倍數注入列表
func (n Namer) Markers(ms []board.MultiplierMarker) []MarkerDTO {
	if len(ms) == 0 {
		return nil
	}
	out := make([]MarkerDTO, len(ms))
	for i, m := range ms {
		out[i] = MarkerDTO{Row: m.Position.Row, Col: m.Position.Col, Tier: n.tier(m.Tier), Value: m.Value}
	}
	return out
}
