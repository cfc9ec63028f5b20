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

import "github.com/zintix-labs/tumblab/errs"

// TierDef 倍數階層：抽樣權重與可能的倍數值（階層內均勻抽選）。
type TierDef struct {
	Name   string `yaml:"name"   json:"name"`
	Weight int    `yaml:"weight" json:"weight"`
	Values []int  `yaml:"values" json:"values"`
}

// MultiplierSetting 倍數注入設定。
//
//   - InjectChance: 消除後新落下格子的注入機率。
//   - InitialInjectChance: 開局盤面的注入機率；未設定時沿用 InjectChance。
//   - MaxPerEvent: 單次注入最多幾顆。
type MultiplierSetting struct {
	Tiers               []TierDef `yaml:"tiers"                 json:"tiers"`
	InjectChance        float64   `yaml:"inject_chance"         json:"inject_chance"`
	InitialInjectChance *float64  `yaml:"initial_inject_chance" json:"initial_inject_chance"`
	MaxPerEvent         int       `yaml:"max_per_event"         json:"max_per_event"`
	TierWeights         []int     `yaml:"-"                     json:"-"`
	initFlag            bool
}

// Init 檢查設定並賦值
func (ms *MultiplierSetting) Init() error {
	if ms.initFlag {
		return nil
	}
	if len(ms.Tiers) == 0 {
		return errs.Configf("multiplier tiers are empty")
	}
	ms.TierWeights = make([]int, len(ms.Tiers))
	total := 0
	for i, t := range ms.Tiers {
		if len(t.Values) == 0 {
			return errs.Configf("multiplier tier %q has no values", t.Name)
		}
		for _, v := range t.Values {
			if v <= 0 {
				return errs.Configf("multiplier tier %q has non-positive value %d", t.Name, v)
			}
		}
		if t.Weight < 0 {
			return errs.Configf("multiplier tier %q has negative weight", t.Name)
		}
		ms.TierWeights[i] = t.Weight
		total += t.Weight
	}
	if total == 0 {
		return errs.Configf("multiplier tier weights are all zero")
	}
	if ms.InjectChance < 0 || ms.InjectChance > 1 {
		return errs.Configf("inject_chance %v out of [0,1]", ms.InjectChance)
	}
	if ms.InitialInjectChance == nil {
		v := ms.InjectChance
		ms.InitialInjectChance = &v
	}
	if *ms.InitialInjectChance < 0 || *ms.InitialInjectChance > 1 {
		return errs.Configf("initial_inject_chance %v out of [0,1]", *ms.InitialInjectChance)
	}
	if ms.MaxPerEvent <= 0 {
		ms.MaxPerEvent = 2
	}
	ms.initFlag = true
	return nil
}
