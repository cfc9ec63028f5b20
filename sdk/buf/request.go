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

package buf

// SpinRequest 引擎內部使用的 Spin 參數（已由 dto 層解碼並轉換）。
type SpinRequest struct {
	BetMult   int    // 投注倍數(base_bet 的幾倍)
	StartSnap []byte // 指定開局 PRNG 狀態（回放用）；nil 代表新局
}

// Reset 清空請求，保留重用
func (r *SpinRequest) Reset() {
	r.BetMult = 0
	r.StartSnap = nil
}

// IsReplay 回報是否指定了開局狀態
func (r *SpinRequest) IsReplay() bool { return len(r.StartSnap) != 0 }
