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

// Package sampler 提供加權抽樣結構。
//
// 兩種實作可互換：
//   - CumulativeTable：預設，前綴和 + 二分搜尋。
//   - AliasTable：O(1) 抽樣，選項多或權重懸殊時使用。
package sampler

import (
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/core"
)

// Picker 為加權抽樣的共同介面。
type Picker interface {
	Pick(c *core.Core) int
	Len() int
}

// Kind 選擇抽樣演算法
type Kind string

const (
	KindCumulative Kind = "cumulative"
	KindAlias      Kind = "alias"
)

// Build 依 Kind 建立 Picker；空字串視為 KindCumulative。
func Build(kind Kind, weights []int) (Picker, error) {
	switch kind {
	case "", KindCumulative:
		ct, err := BuildCumulativeTable(weights)
		if err != nil {
			return nil, err
		}
		return ct, nil
	case KindAlias:
		at, err := BuildAliasTable(weights)
		if err != nil {
			return nil, err
		}
		return at, nil
	default:
		return nil, errs.Configf("sampler: unknown kind %q", kind)
	}
}
