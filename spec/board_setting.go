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

// BoardSetting 描述盤面尺寸。
type BoardSetting struct {
	Rows     int `yaml:"rows"  json:"rows"`
	Cols     int `yaml:"cols"  json:"cols"`
	Size     int `yaml:"-"     json:"-"`
	initFlag bool
}

// Init 檢查不合法的設定
func (bs *BoardSetting) Init() error {
	if bs.initFlag {
		return nil
	}
	if bs.Rows <= 0 || bs.Cols <= 0 {
		return errs.Configf("invalid board dimensions: rows=%d cols=%d", bs.Rows, bs.Cols)
	}
	bs.Size = bs.Rows * bs.Cols
	bs.initFlag = true
	return nil
}
