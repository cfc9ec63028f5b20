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

// ops 是 Makefile 的 Go 版本：go run ./scripts <task>
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

type task struct {
	desc string
	run  func(args []string) error
}

var tasks = map[string]task{
	"test":        {"go test ./... -cover -count=1，只顯示 ok/FAIL", runTest},
	"test-all":    {"go test ./... -cover", runTestAll},
	"test-detail": {"go test ./... -v -count=1，過濾 [no test files]", runTestDetail},
	"sim":         {"跑一次模擬：sim [game] [spins] [workers]", runSim},
	"serve":       {"以 -dev 啟動 lab server", runServe},
	"pgo":         {"以 cpu profile 產生 cmd/svr/default.pgo", runPGO},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		PrintYellow(fmt.Sprintf("Unknown task: %s", os.Args[1]))
		usage()
		os.Exit(1)
	}
	if err := t.run(os.Args[2:]); err != nil {
		PrintRed(err.Error())
		os.Exit(1)
	}
}

func usage() {
	names := make([]string, 0, len(tasks))
	for n := range tasks {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("Usage: go run ./scripts [task]\n")
	for _, n := range names {
		fmt.Fprintf(&sb, "  %-12s %s\n", n, tasks[n].desc)
	}
	PrintDefault(sb.String())
}
