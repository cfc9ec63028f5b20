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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
)

type LogMode uint8

const (
	ModeDev     LogMode = iota // text, stderr, debug
	ModeProd                   // JSON, stdout, info
	ModeSilence                // discard
)

// ParseMode 解析命令列的 log 模式：dev / prod / silence（不分大小寫）。
func ParseMode(s string) (LogMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence", "silent", "off":
		return ModeSilence, nil
	default:
		return ModeDev, errs.BadRequestf("unknown log mode %q", s)
	}
}

func (m LogMode) String() string {
	switch m {
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "dev"
	}
}

// NewDefaultLogger 依模式建立同步 logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewLogger 包裝呼叫者自行組裝的 Handler；nil 時退回 dev 模式。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// NewAsync 依模式建立 logger，並以 AsyncHandler 包成非阻塞。
// 回傳的 *AsyncHandler 供 shutdown 時 Close 排空。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

// Money 以固定兩位小數輸出金額。
func Money(key string, d decimal.Decimal) slog.Attr {
	return slog.String(key, d.StringFixed(2))
}

// replaceAttr 統一日誌中的金額與錯誤格式：
// decimal.Decimal 轉成兩位小數字串，*errs.E 附上等級與錯誤碼。
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	switch v := a.Value.Any().(type) {
	case decimal.Decimal:
		return Money(a.Key, v)
	case *errs.E:
		return slog.Group(a.Key,
			slog.String("msg", v.Error()),
			slog.String("level", errs.ErrLv(v.ErrLv)),
			slog.String("code", string(v.Code)),
		)
	}
	return a
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo, ReplaceAttr: replaceAttr})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug, ReplaceAttr: replaceAttr})
	}
}

// AsyncHandler 把任一 slog.Handler 變成非阻塞：Handle 只負責入列，
// 背景 goroutine 逐筆寫出；佇列滿或已關閉時直接丟棄並計數。
//
// WithAttrs / WithGroup 衍生的 handler 共用同一個佇列。
type AsyncHandler struct {
	next slog.Handler
	q    *asyncQueue
}

type asyncQueue struct {
	items   chan queued
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type queued struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &asyncQueue{
		items: make(chan queued, buf),
		stop:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return &AsyncHandler{next: next, q: q}
}

func (q *asyncQueue) run() {
	defer q.wg.Done()
	for {
		select {
		case it := <-q.items:
			_ = it.h.Handle(it.ctx, it.rec)
		case <-q.stop:
			q.drain()
			return
		}
	}
}

func (q *asyncQueue) drain() {
	for {
		select {
		case it := <-q.items:
			_ = it.h.Handle(it.ctx, it.rec)
		default:
			return
		}
	}
}

func (h *AsyncHandler) Ready() bool { return h != nil && h.q != nil }

// Dropped 回傳因佇列滿或關閉後而丟棄的筆數。
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並排空佇列，可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.stop) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.stop:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Record 跨 goroutine 必須 Clone
	select {
	case h.q.items <- queued{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}
