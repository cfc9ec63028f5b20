package stats

import (
	"sort"
	"sync"
)

const (
	maxMult int = 10000
	lutCap  int = 1 << 20 // LUT 上限，超過改用二分搜尋
)

// WinBuckets
//
// 用來快速定位得分 ->  DistRecord 位置
//
// 請勿修改預設值
//   - win區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
type WinBuckets struct {
	mu           sync.Mutex
	winBucket    []int
	winBucketStr []string
	winBucketMap map[int]*WinBucket
}

type WinBucket struct {
	lutMaxWin        int
	winBucketByScore []int
	winBucketLUT     []int
}

var Buckets *WinBuckets = &WinBuckets{
	winBucket:    []int{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	winBucketStr: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
	winBucketMap: make(map[int]*WinBucket),
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.winBucketStr
}

// GetBucketByBetUnit 取得（必要時建立）對應押注的區間表，可併發呼叫。
func (b *WinBuckets) GetBucketByBetUnit(bu int) *WinBucket {
	b.mu.Lock()
	defer b.mu.Unlock()
	result, exist := b.winBucketMap[bu]
	if !exist {
		result = b.buildBucket(bu)
		b.winBucketMap[bu] = result
	}
	return result
}

func (b *WinBuckets) buildBucket(bu int) *WinBucket {
	bu = max(1, bu)
	// 把「倍數邊界」轉成「贏分邊界」
	winGp := make([]int, len(b.winBucket))
	for i, v := range b.winBucket {
		winGp[i] = bu * v
	}

	maxLut := min(bu*maxMult, lutCap)
	lut := make([]int, maxLut) // lut[win] = idx

	idx := 1
	last := len(winGp) - 1
	for i := 1; i < maxLut; i++ {
		for idx < last && i >= winGp[idx] {
			idx++
		}
		lut[i] = idx
	}
	return &WinBucket{
		lutMaxWin:        maxLut,
		winBucketByScore: winGp,
		winBucketLUT:     lut,
	}
}

// Index 回傳贏分所在區間
func (wb *WinBucket) Index(win int) int {
	if win <= 0 {
		return 0
	}
	if win < wb.lutMaxWin {
		return wb.winBucketLUT[win]
	}
	// winGp[0] = 0，因此結果至少為 1
	return sort.SearchInts(wb.winBucketByScore, win+1)
}
