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

// Package spec 定義遊戲設定檔的結構、預設值與驗證。
//
// 每個子設定都有 Init()，以 initFlag 保證只初始化一次；
// 所有錯誤皆為 errs.CodeConfig（Fatal），設定不合法時機台不應被建立。
package spec

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
)

// GID 遊戲 ID
type GID uint

// GameSetting 包含啟動一台機台所需的所有設定。
type GameSetting struct {
	GameName       string            `yaml:"game_name"      json:"game_name"`
	GameID         GID               `yaml:"game_id"        json:"game_id"`
	Sampler        string            `yaml:"sampler"        json:"sampler"`
	BoardSetting   BoardSetting      `yaml:"board"          json:"board"`
	SymbolSetting  SymbolSetting     `yaml:"symbols"        json:"symbols"`
	MultSetting    MultiplierSetting `yaml:"multiplier"     json:"multiplier"`
	ClusterSetting ClusterSetting    `yaml:"cluster"        json:"cluster"`
	CascadeSetting CascadeSetting    `yaml:"cascade"        json:"cascade"`
	BetSetting     BetSetting        `yaml:"bet"            json:"bet"`
	WinTiers       []WinTier         `yaml:"win_tiers"      json:"win_tiers"`
	initFlag       bool
}

// WinTier 結算時依贏倍（總贏分/押注）給出的稱號，例如 BIG WIN。
type WinTier struct {
	Name    string          `yaml:"name"     json:"name"`
	MinMult float64         `yaml:"min_mult" json:"min_mult"`
	Min     decimal.Decimal `yaml:"-"        json:"-"`
}

// Init 依序初始化所有子設定並做跨設定檢查。
func (gs *GameSetting) Init() error {
	if gs.initFlag {
		return nil
	}
	if gs.GameName == "" {
		return errs.Configf("game_name is required")
	}
	switch gs.Sampler {
	case "", "cumulative", "alias":
	default:
		return errs.Configf("game %s: unknown sampler %q", gs.GameName, gs.Sampler)
	}
	inits := []func() error{
		gs.BoardSetting.Init,
		gs.SymbolSetting.Init,
		gs.MultSetting.Init,
		gs.ClusterSetting.Init,
		gs.CascadeSetting.Init,
		gs.BetSetting.Init,
	}
	for _, fn := range inits {
		if err := fn(); err != nil {
			return errs.Wrap(err, "game "+gs.GameName)
		}
	}
	if err := gs.valid(); err != nil {
		return err
	}
	gs.initFlag = true
	return nil
}

// valid 檢查需要跨子設定的規則。
func (gs *GameSetting) valid() error {
	pays := len(gs.ClusterSetting.PayThresholds)
	for _, s := range gs.SymbolSetting.Symbols {
		if len(s.Pays) != pays {
			return errs.Configf("game %s: symbol %s has %d pays, want %d (one per threshold)", gs.GameName, s.Name, len(s.Pays), pays)
		}
	}
	if gs.ClusterSetting.MinSize > gs.BoardSetting.Size {
		return errs.Configf("game %s: min cluster size %d exceeds board size %d", gs.GameName, gs.ClusterSetting.MinSize, gs.BoardSetting.Size)
	}
	last := 0.0
	for i := range gs.WinTiers {
		wt := &gs.WinTiers[i]
		if wt.Name == "" || wt.MinMult <= last {
			return errs.Configf("game %s: win_tiers must be named and strictly increasing", gs.GameName)
		}
		last = wt.MinMult
		wt.Min = decimal.NewFromFloat(wt.MinMult)
	}
	return nil
}

// WinTierOf 回傳贏倍對應的最高稱號；未達任何門檻時回傳空字串。
func (gs *GameSetting) WinTierOf(win, bet decimal.Decimal) string {
	if !bet.IsPositive() {
		return ""
	}
	mult := win.Div(bet)
	name := ""
	for _, wt := range gs.WinTiers {
		if mult.GreaterThanOrEqual(wt.Min) {
			name = wt.Name
		}
	}
	return name
}
