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

// Package app 統一管理長期運行元件的啟動與關閉。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// App 並行啟動所有 Component；收到 SIGINT/SIGTERM 或任一 Component 的 Run 返回時，
// 在 timeout 內依序 Shutdown，再以反序執行 OnStop 收尾。
type App struct {
	comps    []Component
	onStop   []func()
	log      *slog.Logger
	timeout  time.Duration
	stopOnce sync.Once
}

func New() *App { return &App{log: slog.Default(), timeout: 5 * time.Second} }

// NewWith 建立並註冊多個 Component。
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnStop 註冊收尾動作，例如關閉機台池、排空非同步日誌；後註冊者先執行。
func (a *App) OnStop(fn func()) {
	if fn != nil {
		a.onStop = append(a.onStop, fn)
	}
}

// WithLogger nil 忽略
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithTimeout 設定 Shutdown 的總期限；<= 0 忽略
func (a *App) WithTimeout(d time.Duration) *App {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// Run 阻塞直到收到終止信號（回傳 nil）或任一 Component 的 Run 返回（回傳其錯誤）。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func() { errCh <- c.Run() }()
	}

	var err error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown by signal")
	case err = <-errCh:
		if err != nil {
			a.log.Error("component stopped", slog.Any("err", err))
		}
	}
	a.Stop()
	return err
}

// Stop 只生效一次：先 Shutdown 所有 Component，再反序執行 OnStop。
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		for _, c := range a.comps {
			if err := c.Shutdown(ctx); err != nil {
				a.log.Warn("shutdown err", slog.Any("err", err))
			}
		}
		for i := len(a.onStop) - 1; i >= 0; i-- {
			a.onStop[i]()
		}
	})
}
