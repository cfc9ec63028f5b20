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

// Package recorder 累積模擬結果並輸出 stats.StatReport。
package recorder

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/buf"
	"github.com/zintix-labs/tumblab/spec"
	"github.com/zintix-labs/tumblab/stats"
)

// SpinRecorder 遊戲紀錄員
//
// SpinRecorder 負責紀錄遊戲結果，並透過Done輸出統計報表。
// 金額以「分」記錄，熱路徑上只做整數運算。
type SpinRecorder struct {
	GameName string
	GameId   spec.GID
	BetMult  int
	BetUnit  int // 單局押注（分）
	gs       *spec.GameSetting
	Basic    *BasicRecord
	Dist     *DistRecord
	Depth    []int // Depth[i] = 恰好 i 次連消的局數
	Tiers    []int // 大獎分級次數
	Symbols  []int64
	MultTier []int64
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalBet      int
	TotalWin      int
	BaseWin       int
	TotalWinSqSum int // 平方和
	BaseWinSqSum  int // 平方和
	MultHits      int
	Rounds        int
}

// DistRecord 分數區間落點統計
type DistRecord struct {
	Bucket          *stats.WinBucket
	TotalWinCollect []int
	BaseWinCollect  []int
}

// NewSpinRecorder 建立指定遊戲與押注倍數的紀錄員
func NewSpinRecorder(gs *spec.GameSetting, betMult int) (*SpinRecorder, error) {
	if gs == nil {
		return nil, errs.NewFatal("game setting is nil")
	}
	if err := gs.Init(); err != nil {
		return nil, err
	}
	if betMult < 1 || betMult > gs.BetSetting.MaxBetMult {
		return nil, errs.BadRequestf("bet_mult %d out of range [1,%d]", betMult, gs.BetSetting.MaxBetMult)
	}
	bu := Cents(gs.BetSetting.Bet(betMult))
	if bu <= 0 {
		return nil, errs.Configf("bet must be positive, got %d cents", bu)
	}
	s := &SpinRecorder{
		GameName: gs.GameName,
		GameId:   gs.GameID,
		BetMult:  betMult,
		BetUnit:  bu,
		gs:       gs,
		Basic:    new(BasicRecord),
		Dist:     newDistRecord(bu),
		Depth:    make([]int, gs.CascadeSetting.MaxRounds+1),
		Tiers:    make([]int, len(gs.WinTiers)),
		Symbols:  make([]int64, gs.SymbolSetting.Count()),
		MultTier: make([]int64, len(gs.MultSetting.Tiers)),
	}
	return s, nil
}

// MergeSpinRecorder 合併多個同設定的紀錄員
func MergeSpinRecorder(r []*SpinRecorder) (*SpinRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge spin record err : empty input")
	}
	r0 := r[0]
	s, err := NewSpinRecorder(r0.gs, r0.BetMult)
	if err != nil {
		return nil, err
	}
	for _, v := range r {
		if v.GameId != r0.GameId || v.GameName != r0.GameName {
			return nil, errs.NewFatal("merge spin record err : different game")
		}
		if v.BetMult != r0.BetMult {
			return nil, errs.NewFatal(fmt.Sprintf("merge spin record err : bet_mult %d vs %d", v.BetMult, r0.BetMult))
		}
		s.Basic.TotalBet += v.Basic.TotalBet
		s.Basic.TotalWin += v.Basic.TotalWin
		s.Basic.BaseWin += v.Basic.BaseWin
		s.Basic.TotalWinSqSum += v.Basic.TotalWinSqSum
		s.Basic.BaseWinSqSum += v.Basic.BaseWinSqSum
		s.Basic.MultHits += v.Basic.MultHits
		s.Basic.Rounds += v.Basic.Rounds

		addInts(s.Dist.TotalWinCollect, v.Dist.TotalWinCollect)
		addInts(s.Dist.BaseWinCollect, v.Dist.BaseWinCollect)
		addInts(s.Depth, v.Depth)
		addInts(s.Tiers, v.Tiers)
		s.AddTally(v.Symbols, v.MultTier)
	}
	return s, nil
}

// Record 以單次 SpinResult 更新統計
func (s *SpinRecorder) Record(sr *buf.SpinResult) {
	w := Cents(sr.TotalWin)
	bw := Cents(sr.BaseWin)

	s.Basic.TotalBet += s.BetUnit
	s.Basic.TotalWin += w
	s.Basic.BaseWin += bw
	s.Basic.TotalWinSqSum += w * w
	s.Basic.BaseWinSqSum += bw * bw
	if bw > 0 && sr.MultiplierSum > 0 {
		s.Basic.MultHits++
	}
	s.Basic.Rounds++

	s.Dist.TotalWinCollect[s.Dist.Bucket.Index(w)]++
	s.Dist.BaseWinCollect[s.Dist.Bucket.Index(bw)]++

	d := min(sr.Cascades(), len(s.Depth)-1)
	s.Depth[d]++

	if sr.WinTier != "" {
		for i, t := range s.gs.WinTiers {
			if t.Name == sr.WinTier {
				s.Tiers[i]++
				break
			}
		}
	}
}

// AddTally 累加生成器的抽樣次數（圖標、倍數階層），供卡方檢定使用
func (s *SpinRecorder) AddTally(symbols, tiers []int64) {
	for i := range min(len(s.Symbols), len(symbols)) {
		s.Symbols[i] += symbols[i]
	}
	for i := range min(len(s.MultTier), len(tiers)) {
		s.MultTier[i] += tiers[i]
	}
}

// Done 輸出統計報表（尚未呼叫 StatReport.Done）
func (s *SpinRecorder) Done() *stats.StatReport {
	bufloat := float64(s.BetUnit)
	bb := bufloat * bufloat

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			GameId:      s.GameId,
			BetUnit:     s.BetUnit,
			BetMult:     s.BetMult,
			TotalBet:    s.Basic.TotalBet,
			TotalWin:    s.Basic.TotalWin,
			BaseWin:     s.Basic.BaseWin,
			MultWin:     s.Basic.TotalWin - s.Basic.BaseWin,
			MultHits:    s.Basic.MultHits,
			NoWinRounds: s.Dist.TotalWinCollect[0],
			Rounds:      s.Basic.Rounds,
		},
		Mult: &stats.MultReport{
			TotalWinMult:      float64(s.Basic.TotalWin) / bufloat,
			BaseWinMult:       float64(s.Basic.BaseWin) / bufloat,
			TotalWinMultSqSum: float64(s.Basic.TotalWinSqSum) / bb,
			BaseWinMultSqSum:  float64(s.Basic.BaseWinSqSum) / bb,
		},
		Dist: &stats.DistReport{
			WinBucket:       stats.Buckets.WinBucketStr(),
			TotalWinCollect: append([]int(nil), s.Dist.TotalWinCollect...),
			BaseWinCollect:  append([]int(nil), s.Dist.BaseWinCollect...),
		},
		Cascade: &stats.CascadeReport{Depth: trimDepth(s.Depth)},
	}

	if len(s.gs.WinTiers) > 0 {
		names := make([]string, len(s.gs.WinTiers))
		for i, t := range s.gs.WinTiers {
			names[i] = t.Name
		}
		report.Tier = &stats.WinTierReport{Names: names, Counts: append([]int(nil), s.Tiers...)}
	}

	symNames := make([]string, s.gs.SymbolSetting.Count())
	for i := range symNames {
		symNames[i] = s.gs.SymbolSetting.Name(i)
	}
	tierNames := make([]string, len(s.gs.MultSetting.Tiers))
	for i, t := range s.gs.MultSetting.Tiers {
		tierNames[i] = t.Name
	}
	fit := &stats.FitReport{
		Symbols: stats.GoodnessOfFit(symNames, s.Symbols, s.gs.SymbolSetting.Weights),
		Tiers:   stats.GoodnessOfFit(tierNames, s.MultTier, s.gs.MultSetting.TierWeights),
	}
	if fit.Symbols != nil || fit.Tiers != nil {
		report.Fit = fit
	}

	length := len(report.Dist.WinBucket)
	report.Dist.TotalWinDist = make([]float64, length)
	report.Dist.BaseWinDist = make([]float64, length)
	if rf := float64(report.Summary.Rounds); rf > 0 {
		for i := range length {
			report.Dist.TotalWinDist[i] = float64(report.Dist.TotalWinCollect[i]) / rf
			report.Dist.BaseWinDist[i] = float64(report.Dist.BaseWinCollect[i]) / rf
		}
	}
	return report
}

// Cents 將金額轉成整數分（四捨五入）
func Cents(d decimal.Decimal) int {
	return int(d.Shift(2).Round(0).IntPart())
}

func newDistRecord(bu int) *DistRecord {
	n := len(stats.Buckets.WinBucketStr())
	return &DistRecord{
		Bucket:          stats.Buckets.GetBucketByBetUnit(bu),
		TotalWinCollect: make([]int, n),
		BaseWinCollect:  make([]int, n),
	}
}

// trimDepth 去掉尾端的 0，保留至少一格
func trimDepth(d []int) []int {
	n := len(d)
	for n > 1 && d[n-1] == 0 {
		n--
	}
	return append([]int(nil), d[:n]...)
}

func addInts(dst, src []int) {
	for i := range min(len(dst), len(src)) {
		dst[i] += src[i]
	}
}
