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

// Package perf 包裝 runtime/pprof，讓模擬器入口可以用旗標切換 profiling。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/tumblab/errs"
)

// DefaultDir pprof 檔案預設寫入路徑
const DefaultDir = "build/profiling"

// Modes 支援的 profiling 模式；空字串代表不開啟。
var Modes = []string{"", "cpu", "heap", "allocs"}

// RunPProf 依 mode 執行 exe 並寫出對應 profile 到 dir。
//
// 未知的 mode 回傳錯誤且不執行 exe。
//
// Usage like:
//
//	go run ./cmd/run -game 1001 -p cpu
func RunPProf(exe func(), mode, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		exe()
		return nil
	case "cpu":
		return PProfCPU(exe, dir)
	case "heap":
		return writeAfter(exe, dir, "heap")
	case "allocs":
		return writeAfter(exe, dir, "allocs")
	default:
		return errs.BadRequestf("unknown pprof mode %q", mode)
	}
}

// PProfCPU 在 exe 執行期間開啟 CPU profiling，輸出 cpu.pprof（亦可作為 PGO 的 default.pgo）。
func PProfCPU(exe func(), dir string) error {
	f, err := create(dir, "cpu.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()

	exe()
	return nil
}

// writeAfter 執行 exe 之後寫出一次快照。
//
// heap 為 in-use 記憶體，寫出前先 GC 讓 live objects 貼近最新狀態；
// allocs 為累積配置，搭配 -alloc_space / -alloc_objects 查看。
func writeAfter(exe func(), dir, name string) error {
	exe()
	if name == "heap" {
		runtime.GC()
	}
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Fatalf("profile %s not found", name)
	}
	f, err := create(dir, name+".pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile")
	}
	return nil
}

func create(dir, file string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create profiling dir")
	}
	f, err := os.Create(filepath.Join(dir, file))
	if err != nil {
		return nil, errs.Wrap(err, "create "+file)
	}
	return f, nil
}
