package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/zintix-labs/tumblab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信心水準
const confidence float64 = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 遊戲統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	Cascade *CascadeReport `json:"Cascade"`
	Tier    *WinTierReport `json:"WinTier,omitzero"`
	Fit     *FitReport     `json:"Fit,omitzero"`
	isDone  bool
}

// SummaryReport 金額欄位皆為「分」(cents)
type SummaryReport struct {
	GameName    string   `json:"GameName"`
	GameId      spec.GID `json:"GameId"`
	BetUnit     int      `json:"BetUnit"` // 單局押注
	BetMult     int      `json:"BetMult"`
	TotalBet    int      `json:"TotalBet"`
	TotalWin    int      `json:"TotalWin"`
	BaseWin     int      `json:"BaseWin"` // 乘倍前的集群派彩
	MultWin     int      `json:"MultWin"` // 倍數帶來的額外贏分
	RTP         float64  `json:"RTP"`
	RtpCI       CI       `json:"RtpCI"`
	Std         float64  `json:"Std"`
	Cv          float64  `json:"Cv"`
	MultHits    int      `json:"MultHits"` // 結算時倍數實際生效的局數
	MultHitRate float64  `json:"MultHitRate"`
	NoWinRounds int      `json:"NoWinRounds"`
	HitRate     float64  `json:"HitRate"`
	Rounds      int      `json:"Rounds"`
}

// MultReport 贏倍統計
//
// 紀錄時不紀錄，避免轉型成本。紀錄完成後由 recorder 整理填入
type MultReport struct {
	TotalWinMult      float64 `json:"TotalWinMult"`
	BaseWinMult       float64 `json:"BaseWinMult"`
	TotalWinMultSqSum float64 `json:"TotalWinMultSqSum"` // 平方和
	BaseWinMultSqSum  float64 `json:"BaseWinMultSqSum"`  // 平方和
}

// DistReport 分數區間落點統計
type DistReport struct {
	WinBucket       []string  `json:"WinBucket"`
	TotalWinCollect []int     `json:"TotalWinCollect"`
	BaseWinCollect  []int     `json:"BaseWinCollect"`
	TotalWinDist    []float64 `json:"TotalWinDist"`
	BaseWinDist     []float64 `json:"BaseWinDist"`
}

// CascadeReport 連消深度分佈；Depth[i] 為恰好 i 次連消的局數。
type CascadeReport struct {
	Depth    []int   `json:"Depth"`
	MaxDepth int     `json:"MaxDepth"`
	AvgDepth float64 `json:"AvgDepth"`
}

// WinTierReport 大獎分級次數，順序同設定檔
type WinTierReport struct {
	Names  []string `json:"Names"`
	Counts []int    `json:"Counts"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有遊戲統計過程因為性能原因只處理int的紀錄，所以統計完成後
//
// 請使用 Done 來通知統計已經完成，可以一次性計算統計結果
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()
	if s.Summary.Rounds > 0 {
		rf := float64(s.Summary.Rounds)
		s.Summary.HitRate = 1.0 - float64(s.Summary.NoWinRounds)/rf
		s.Summary.MultHitRate = float64(s.Summary.MultHits) / rf
	}
	if s.Cascade != nil {
		s.Cascade.done(s.Summary.Rounds)
	}
	s.isDone = true
}

// Rtp 回傳整體 RTP（總贏分 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return (float64(s.Summary.TotalWin) / float64(s.Summary.TotalBet))
}

// Std 回傳單局贏分的標準差（以押注為單位）
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 || s.Summary.BetUnit == 0 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	winMultPow := s.Mult.TotalWinMult * s.Mult.TotalWinMult
	variance := (s.Mult.TotalWinMultSqSum - winMultPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Cv 回傳單局贏分的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	std := s.Std()
	if rtp <= 0 {
		return 0
	}
	return (std / rtp)
}

// Ci 回傳(95% Rtp)信賴區間，z 值取自標準常態分位數
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	std := s.Std()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	return CI{
		Lo: max(rtp-z*rtpSe, 0.0),
		Hi: rtp + z*rtpSe,
	}
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 印出用時與摘要表
func (s *StatReport) StdOut(ut time.Duration) { s.Print(os.Stdout, ut) }

// Print 寫出用時、摘要、連消深度與適合度表
func (s *StatReport) Print(w io.Writer, ut time.Duration) {
	s.Done()
	fmt.Fprint(w, formatDuration(ut, s.Summary.Rounds))
	fmt.Fprintln(w, s.basicTable())
	if s.Cascade != nil {
		fmt.Fprintln(w, s.cascadeTable())
	}
	if s.Fit != nil {
		fmt.Fprintln(w, s.Fit.table())
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (c *CascadeReport) done(rounds int) {
	if rounds == 0 {
		return
	}
	sum := 0
	c.MaxDepth = 0
	for d, n := range c.Depth {
		sum += d * n
		if n > 0 {
			c.MaxDepth = d
		}
	}
	c.AvgDepth = float64(sum) / float64(rounds)
}

func formatDuration(d time.Duration, spins int) string {
	p := message.NewPrinter(lang)
	d = d.Abs()
	sec := max(d.Seconds(), 1e-9)
	sps := int(float64(spins) / sec)
	var used string
	switch {
	case d < time.Minute:
		used = p.Sprintf("%.2f seconds", sec)
	case d < time.Hour:
		used = p.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		used = p.Sprintf("%dh:%dm:%ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return p.Sprintf("used: %s\nsps : %d spins/sec\n", used, sps)
}

// cents 以分為單位的整數轉為兩位小數字串
func cents(v int) string {
	p := message.NewPrinter(lang)
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	return p.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (s *StatReport) basicTable() *table {
	p := message.NewPrinter(lang)
	sm := s.Summary
	t := newTable(sm.GameName).
		add("Game ID", fmt.Sprintf("%d", sm.GameId)).
		add("Bet", cents(sm.BetUnit)).
		add("Total Rounds", p.Sprintf("%d", sm.Rounds)).
		add("Total RTP", p.Sprintf("%.2f %%", 100*sm.RTP)).
		add("RTP 95% CI", p.Sprintf("[%.2f%%,%.2f%%]", 100*sm.RtpCI.Lo, 100*sm.RtpCI.Hi)).
		add("Total Bet", cents(sm.TotalBet)).
		add("Total Win", cents(sm.TotalWin)).
		add("Base Win", cents(sm.BaseWin)).
		add("Mult Win", cents(sm.MultWin)).
		add("Hit Rate", p.Sprintf("%.2f %%", 100*sm.HitRate)).
		add("Mult Hit Rate", p.Sprintf("%.2f %%", 100*sm.MultHitRate)).
		add("STD", p.Sprintf("%.3f", sm.Std)).
		add("CV", p.Sprintf("%.3f", sm.Cv))
	if s.Tier != nil {
		for i, name := range s.Tier.Names {
			t.add(name, p.Sprintf("%d", s.Tier.Counts[i]))
		}
	}
	return t
}

func (s *StatReport) cascadeTable() *table {
	p := message.NewPrinter(lang)
	c := s.Cascade
	t := newTable("Cascade Depth").
		add("Avg Depth", p.Sprintf("%.3f", c.AvgDepth)).
		add("Max Depth", p.Sprintf("%d", c.MaxDepth))
	rf := float64(max(1, s.Summary.Rounds))
	for d := 0; d <= c.MaxDepth && d < len(c.Depth); d++ {
		t.add(p.Sprintf("depth %d", d), p.Sprintf("%d (%.3f%%)", c.Depth[d], 100*float64(c.Depth[d])/rf))
	}
	return t
}
