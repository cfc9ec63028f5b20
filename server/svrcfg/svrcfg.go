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

package svrcfg

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/server/logger"
)

const (
	defaultSpinTimeout = 5 * time.Second
	maxPoolSize        = 64
)

type SvrCfg struct {
	Log         *slog.Logger
	PoolSize    int           // 每款遊戲的機台數
	SpinTimeout time.Duration // 單局（含串流）逾時
	CORSOrigins []string      // 空白代表全部允許
	Dev         bool          // 是否掛載 /dev 工具路由
	Tumblab     *tumblab.Tumblab
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeSilence)
	}

	// 1 <= PoolSize <= 64，資源管理
	sc.PoolSize = min(maxPoolSize, max(1, sc.PoolSize))
	if sc.SpinTimeout <= 0 {
		sc.SpinTimeout = defaultSpinTimeout
	}
	if sc.Tumblab == nil {
		return errs.NewFatal("tumblab is required")
	}
	return nil
}
