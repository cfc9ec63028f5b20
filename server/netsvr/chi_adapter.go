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

package netsvr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultAddr string = ":5808"

// ChiOptions 監聽位址與 http.Server 逾時設定。
//
// WriteTimeout 預設 0：/v1/sim 與 /v1/stream 可能長時間佔用連線，
// 單局的期限由 handler 內的 context 控制。
type ChiOptions struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

func (o ChiOptions) withDefaults() ChiOptions {
	if o.Addr == "" {
		o.Addr = defaultAddr
	}
	if o.ReadHeaderTimeout <= 0 {
		o.ReadHeaderTimeout = 5 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 10 * time.Second
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 120 * time.Second
	}
	return o
}

// ChiAdapter 以 chi 實作 NetSvr；handler 與 middleware 都是 net/http 介面。
type ChiAdapter struct {
	router chi.Router
	server *http.Server

	mu    sync.Mutex
	bound string // 實際監聽位址（Run 之後才有）
}

func NewChiServerWith(opts ChiOptions) *ChiAdapter {
	opts = opts.withDefaults()
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           cr,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			ReadTimeout:       opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}
}

// NewChiServer 自訂監聽位址，其餘使用預設逾時。
func NewChiServer(addr string) *ChiAdapter {
	return NewChiServerWith(ChiOptions{Addr: addr})
}

// NewChiServerDefault 監聽 :5808
func NewChiServerDefault() *ChiAdapter {
	return NewChiServerWith(ChiOptions{})
}

func (c *ChiAdapter) Ready() bool {
	return c != nil && c.router != nil && c.server != nil &&
		strings.Contains(c.server.Addr, ":") && c.server.Handler == c.router
}

// Run 先綁定位址再開始服務；Shutdown 造成的結束回傳 nil。
func (c *ChiAdapter) Run() error {
	ln, err := net.Listen("tcp", c.server.Addr)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.bound = ln.Addr().String()
	c.mu.Unlock()
	if err := c.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) { c.router.Use(mw) }

func (c *ChiAdapter) Get(path string, h http.HandlerFunc)    { c.router.Get(path, h) }
func (c *ChiAdapter) Post(path string, h http.HandlerFunc)   { c.router.Post(path, h) }
func (c *ChiAdapter) Put(path string, h http.HandlerFunc)    { c.router.Put(path, h) }
func (c *ChiAdapter) Delete(path string, h http.HandlerFunc) { c.router.Delete(path, h) }

// Group 子路由只拿得到 NetRouter，沒有啟停能力。
func (c *ChiAdapter) Group(path string, fn func(subRouter NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

// Address Run 之前回傳設定值，之後回傳實際綁定的位址（例如 ":0" 取得的埠號）。
func (c *ChiAdapter) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bound != "" {
		return c.bound
	}
	return c.server.Addr
}

// Handler 回傳根路由，供 httptest 或外部 server 掛載。
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}

// Param 取得路徑參數，例如 /session/{id}
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
