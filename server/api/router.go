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

package api

import (
	"log/slog"

	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/server/api/dev"
	v1 "github.com/zintix-labs/tumblab/server/api/v1"
	"github.com/zintix-labs/tumblab/server/netsvr"
	"github.com/zintix-labs/tumblab/server/netsvr/middleware"
	"github.com/zintix-labs/tumblab/server/svrcfg"
)

// RegisterRoutes 註冊 middleware、v1 api 與（可選）dev 工具路由。
//
// rt 由呼叫端建立並負責關閉。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, rt *tumblab.Runtime) error {
	h, err := v1.NewHandler(rt, sCfg)
	if err != nil {
		return err
	}
	registerMiddleware(svr, sCfg) // 1. 註冊 middleware
	registerV1API(svr, h)         // 2. 註冊 v1 api
	if sCfg.Dev {
		dev.Register(svr, sCfg.Tumblab) // 3. 開發者工具
		sCfg.Log.Info("dev routes enabled", slog.String("prefix", "/dev"))
	}
	return nil
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	svr.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: sCfg.CORSOrigins}))
	svr.Use(middleware.Compression)
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, h *v1.Handler) {
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", h.Games)
		vOne.Get("/games/{gid}", h.Game)
		vOne.Get("/metrics", h.Metrics)

		vOne.Post("/session", h.OpenSession)
		vOne.Get("/session/{id}", h.GetSession)
		vOne.Delete("/session/{id}", h.CloseSession)

		vOne.Get("/spin", h.Spin)
		vOne.Post("/spin", h.Spin)
		vOne.Get("/stream", h.Stream)

		vOne.Get("/sim", h.Sim)
		vOne.Post("/sim", h.Sim)
		vOne.Post("/simbycfg", h.SimByCfg)
	})
}
