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

package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/configs"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/server"
	"github.com/zintix-labs/tumblab/server/logger"
	"github.com/zintix-labs/tumblab/server/netsvr"
	"github.com/zintix-labs/tumblab/server/svrcfg"
	_ "go.uber.org/automaxprocs"
)

// Lab server entrypoint. Dev routes are opt-in with -dev.
func main() {
	sCfg, addr, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	server.RunWithSvr(sCfg, netsvr.NewChiServer(addr))
}

type config struct {
	LogMode  string
	PoolSize int
	Addr     string
	Dev      bool
	Origins  string
	Timeout  time.Duration
	CfgDir   string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, string, error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "dev", "log mode: dev|prod|silence")
	flag.IntVar(&cfg.PoolSize, "pool", 3, "number of machine instances per game")
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.BoolVar(&cfg.Dev, "dev", false, "enable /dev routes")
	flag.StringVar(&cfg.Origins, "cors", "", "comma separated allowed origins (empty: allow all)")
	flag.DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "per spin timeout")
	flag.StringVar(&cfg.CfgDir, "configs", "", "config directory (default: embedded configs)")
	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, "", err
	}
	log, _ := logger.NewAsync(4096, mode)

	var src fs.FS = configs.FS
	if cfg.CfgDir != "" {
		src = os.DirFS(cfg.CfgDir)
	}
	lab, err := tumblab.NewAuto(core.Default(), tumblab.Configs(src))
	if err != nil {
		return nil, "", err
	}
	lab.WithLogger(log)

	sCfg := &svrcfg.SvrCfg{
		Log:         log,
		PoolSize:    cfg.PoolSize,
		SpinTimeout: cfg.Timeout,
		CORSOrigins: splitList(cfg.Origins),
		Dev:         cfg.Dev,
		Tumblab:     lab,
	}
	return sCfg, cfg.Addr, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
