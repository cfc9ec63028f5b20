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

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/spec"
)

func TestSpinResultAppendReset(t *testing.T) {
	gs := &spec.GameSetting{GameName: "demo", GameID: 7}
	sr := NewSpinResult(gs)
	if sr.GameName != "demo" || sr.GameID != 7 {
		t.Fatalf("unexpected spin result metadata: %+v", sr)
	}
	sr.AppendRound(RoundResult{Index: 0, RoundWin: decimal.NewFromInt(1)})
	sr.AppendRound(RoundResult{Index: 1, RoundWin: decimal.NewFromInt(2)})
	if sr.Cascades() != 2 {
		t.Fatalf("expected 2 rounds, got %d", sr.Cascades())
	}
	sr.TotalWin = decimal.NewFromInt(3)
	sr.End()
	sr.Reset()
	if sr.Cascades() != 0 || !sr.TotalWin.IsZero() || sr.IsGameEnd || cap(sr.Rounds) < 2 {
		t.Fatalf("spin result not reset: %+v", sr)
	}
}

func TestSpinResultAppendAfterEndPanics(t *testing.T) {
	sr := NewSpinResult(&spec.GameSetting{})
	sr.End()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when appending after End")
		}
	}()
	sr.AppendRound(RoundResult{})
}

func TestSpinRequestReset(t *testing.T) {
	r := &SpinRequest{BetMult: 3, StartSnap: []byte{1}}
	if !r.IsReplay() {
		t.Fatalf("expected replay request")
	}
	r.Reset()
	if r.IsReplay() || r.BetMult != 0 {
		t.Fatalf("request not reset: %+v", r)
	}
}
