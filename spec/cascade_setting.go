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
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
)

const defaultMaxRounds = 256

// ClusterSetting 集群判定與派彩門檻。
//
// PayThresholds 必須嚴格遞增；集群大小 >= PayThresholds[i] 時取第 i 檔派彩。
type ClusterSetting struct {
	MinSize       int   `yaml:"min_size"       json:"min_size"`
	PayThresholds []int `yaml:"pay_thresholds" json:"pay_thresholds"`
	initFlag      bool
}

// Init 檢查設定並賦值
func (cs *ClusterSetting) Init() error {
	if cs.initFlag {
		return nil
	}
	if cs.MinSize <= 0 {
		return errs.Configf("cluster min_size must be > 0, got %d", cs.MinSize)
	}
	if len(cs.PayThresholds) == 0 {
		return errs.Configf("cluster pay_thresholds is empty")
	}
	last := 0
	for _, th := range cs.PayThresholds {
		if th <= last {
			return errs.Configf("cluster pay_thresholds must be positive and strictly increasing: %v", cs.PayThresholds)
		}
		last = th
	}
	cs.initFlag = true
	return nil
}

// CascadeSetting 連消安全上限。
type CascadeSetting struct {
	MaxRounds int `yaml:"max_rounds" json:"max_rounds"`
	initFlag  bool
}

// Init 未設定時套用預設上限
func (cs *CascadeSetting) Init() error {
	if cs.initFlag {
		return nil
	}
	if cs.MaxRounds < 0 {
		return errs.Configf("cascade max_rounds must be >= 0, got %d", cs.MaxRounds)
	}
	if cs.MaxRounds == 0 {
		cs.MaxRounds = defaultMaxRounds
	}
	cs.initFlag = true
	return nil
}

// BetSetting 押注與錢包設定（金額皆以 decimal 運算）。
type BetSetting struct {
	BaseBet        float64         `yaml:"base_bet"        json:"base_bet"`
	MaxBetMult     int             `yaml:"max_bet_mult"    json:"max_bet_mult"`
	InitialBalance float64         `yaml:"initial_balance" json:"initial_balance"`
	Base           decimal.Decimal `yaml:"-"               json:"-"`
	Balance        decimal.Decimal `yaml:"-"               json:"-"`
	initFlag       bool
}

// Init 檢查設定並賦值
func (bs *BetSetting) Init() error {
	if bs.initFlag {
		return nil
	}
	if bs.BaseBet <= 0 {
		return errs.Configf("base_bet must be > 0, got %v", bs.BaseBet)
	}
	if bs.MaxBetMult <= 0 {
		bs.MaxBetMult = 1
	}
	if bs.InitialBalance < 0 {
		return errs.Configf("initial_balance must be >= 0, got %v", bs.InitialBalance)
	}
	bs.Base = decimal.NewFromFloat(bs.BaseBet)
	bs.Balance = decimal.NewFromFloat(bs.InitialBalance)
	bs.initFlag = true
	return nil
}

// Bet 回傳 base_bet * mult
func (bs *BetSetting) Bet(mult int) decimal.Decimal {
	return bs.Base.Mul(decimal.NewFromInt(int64(mult)))
}
