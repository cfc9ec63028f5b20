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

// Package buf 定義一局 Spin 的完整紀錄，供回放、統計與對外輸出。
package buf

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/sdk/board"
	"github.com/zintix-labs/tumblab/sdk/calc"
	"github.com/zintix-labs/tumblab/sdk/ops"
	"github.com/zintix-labs/tumblab/spec"
)

const capRoundGrow int = 16 // 容量大小

// SpinResult 一局 Spin 的所有累積資訊：開局盤面、每回合連消、結算。
type SpinResult struct {
	GameName string
	GameID   spec.GID
	Bet      decimal.Decimal // 實際押注 = base_bet * BetMult
	BetMult  int

	StartSnap []byte // 開局前 PRNG 狀態，可用於重放
	EndSnap   []byte // 結算後 PRNG 狀態

	InitialBoard   *board.Board
	InitialMarkers []board.MultiplierMarker
	Rounds         []RoundResult
	FinalBoard     *board.Board

	BaseWin       decimal.Decimal
	MultiplierSum int
	TotalWin      decimal.Decimal
	WinTier       string
	IsGameEnd     bool
}

// RoundResult 一個連消回合（Detecting -> Resolving）的結果。
type RoundResult struct {
	Index     int
	Clusters  []calc.Cluster
	WinGroups []calc.WinGroup
	RoundWin  decimal.Decimal
	BaseWin   decimal.Decimal // 到本回合為止的累積
	MultSum   int             // 回合結束時盤面上的倍數總和
	Moves     []ops.TumbleMove
	Injected  []board.MultiplierMarker
	Board     *board.Board // 補盤與注入後的快照
}

// NewSpinResult 建立指定機台的 SpinResult 實體，並預先配置基本容量。
func NewSpinResult(gs *spec.GameSetting) *SpinResult {
	return &SpinResult{
		GameName: gs.GameName,
		GameID:   gs.GameID,
		Rounds:   make([]RoundResult, 0, capRoundGrow),
	}
}

// AppendRound 將單一回合結果累積到 SpinResult。
func (s *SpinResult) AppendRound(rr RoundResult) {
	if s.IsGameEnd {
		panic("spin is already settled, but still append new round")
	}
	s.Rounds = append(s.Rounds, rr)
}

// Cascades 連消回合數（有派彩的回合）
func (s *SpinResult) Cascades() int { return len(s.Rounds) }

// End : 結束Spin
func (s *SpinResult) End() {
	s.IsGameEnd = true
}

// Reset 重置累積資料，保留已配置的內部切片容量。
func (s *SpinResult) Reset() {
	s.Bet = decimal.Zero
	s.BetMult = 0
	s.StartSnap = nil
	s.EndSnap = nil
	s.InitialBoard = nil
	s.InitialMarkers = nil
	clear(s.Rounds)
	s.Rounds = s.Rounds[:0]
	s.FinalBoard = nil
	s.BaseWin = decimal.Zero
	s.MultiplierSum = 0
	s.TotalWin = decimal.Zero
	s.WinTier = ""
	s.IsGameEnd = false
}
