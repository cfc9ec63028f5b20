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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/server/api"
	"github.com/zintix-labs/tumblab/server/app"
	"github.com/zintix-labs/tumblab/server/logger"
	"github.com/zintix-labs/tumblab/server/netsvr"
	"github.com/zintix-labs/tumblab/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 logger）。
//  2. 建立 Runtime（每款遊戲一個機台池）與 HTTP server（netsvr）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，停止時關閉 Runtime 並排空日誌。
//
// Run 不綁定任何檔案路徑或環境變數；所有依賴都透過 SvrCfg 注入。
func Run(sCfg *svrcfg.SvrCfg) {
	RunWithSvr(sCfg, netsvr.NewChiServerDefault())
}

// RunWithSvr 與 Run 相同，但允許注入自訂的 NetSvr（自訂位址、timeout、或其他 adapter）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
// 若要把 API 掛到既有服務，直接持有 Tumblab 與 Runtime 並呼叫 api.RegisterRoutes。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if svr == nil {
		sCfg.Log.Error(errs.NewFatal("svr is required").Error())
		return
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		sCfg.Log.Error(errs.NewFatal("default server is not ready").Error())
		return
	}

	rt, err := sCfg.Tumblab.BuildRuntime(sCfg.PoolSize)
	if err != nil {
		sCfg.Log.Error("build runtime failed", slog.Any("err", err))
		return
	}
	if err := api.RegisterRoutes(svr, sCfg, rt); err != nil {
		rt.Close()
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return
	}

	a := app.NewWith(svr).WithLogger(sCfg.Log)
	if ah, ok := sCfg.Log.Handler().(*logger.AsyncHandler); ok {
		a.OnStop(ah.Close)
	}
	a.OnStop(rt.Close)

	addr := ""
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		addr = s.Address()
	}
	sCfg.Log.Info("[tumblab] listening",
		slog.String("addr", addr),
		slog.Int("games", len(rt.IDs())),
		slog.Int("pool_size", sCfg.PoolSize),
	)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
	}
}
