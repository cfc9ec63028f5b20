package stats

import (
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

// FitReport 抽樣次數對設定權重的卡方檢定
type FitReport struct {
	Symbols *Fit `json:"Symbols,omitzero"`
	Tiers   *Fit `json:"Tiers,omitzero"`
}

// Fit 單一分佈的卡方適合度檢定結果
type Fit struct {
	Names    []string  `json:"Names"`
	Observed []int64   `json:"Observed"`
	Expected []float64 `json:"Expected"`
	ChiSq    float64   `json:"ChiSq"`
	DF       int       `json:"DF"`
	PValue   float64   `json:"PValue"`
}

// GoodnessOfFit 以 weights 為期望比例計算卡方統計量與 p 值。
//
// 權重為 0 的類別不計入自由度；若該類別有觀測值則 p 值為 0。
// 樣本數為 0 或有效類別不足 2 個時回傳 nil。
func GoodnessOfFit(names []string, observed []int64, weights []int) *Fit {
	if len(observed) != len(weights) {
		return nil
	}
	var n int64
	for _, o := range observed {
		n += o
	}
	total := 0
	k := 0
	for _, w := range weights {
		total += w
		if w > 0 {
			k++
		}
	}
	if n == 0 || total == 0 || k < 2 {
		return nil
	}
	f := &Fit{
		Names:    names,
		Observed: append([]int64(nil), observed...),
		Expected: make([]float64, len(weights)),
		DF:       k - 1,
	}
	impossible := false
	for i, w := range weights {
		e := float64(n) * float64(w) / float64(total)
		f.Expected[i] = e
		if w == 0 {
			impossible = impossible || observed[i] > 0
			continue
		}
		d := float64(observed[i]) - e
		f.ChiSq += d * d / e
	}
	if impossible {
		return f
	}
	f.PValue = 1 - distuv.ChiSquared{K: float64(f.DF)}.CDF(f.ChiSq)
	return f
}

func (f *FitReport) table() *table {
	p := message.NewPrinter(lang)
	t := newTable("Goodness of Fit")
	for _, it := range []struct {
		label string
		fit   *Fit
	}{{"Symbols", f.Symbols}, {"Tiers", f.Tiers}} {
		if it.fit == nil {
			continue
		}
		t.add(it.label+" chi2", p.Sprintf("%.3f (df=%d)", it.fit.ChiSq, it.fit.DF))
		t.add(it.label+" p-value", p.Sprintf("%.4f", it.fit.PValue))
	}
	return t
}
