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
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// goCmd 執行 go 子指令，輸出直接接到終端
func goCmd(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// goFiltered 執行 go 子指令，逐行交給 keep 過濾後印出（stderr 一併導入）
func goFiltered(keep func(line string), args ...string) error {
	cmd := exec.Command("go", args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start go %s: %w", args[0], err)
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
		pw.Close()
	}()
	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		keep(sc.Text())
	}
	return <-done
}

func cleanCache() error {
	if err := goCmd("clean", "-testcache"); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	return nil
}

func runTest(_ []string) error {
	PrintGreen("running tests")
	_ = cleanCache()
	err := goFiltered(func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"):
			PrintRed(line)
		case strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			// 編譯錯誤不以 ok/FAIL 開頭，仍需顯示
			PrintRed(line)
		}
	}, "test", "./...", "-cover", "-count=1")
	if err != nil {
		return fmt.Errorf("tests finished with errors")
	}
	return nil
}

func runTestAll(_ []string) error {
	PrintGreen("running tests (all with coverage)")
	if err := cleanCache(); err != nil {
		return err
	}
	if err := goCmd("test", "./...", "-cover"); err != nil {
		return fmt.Errorf("tests (with coverage) finished with errors")
	}
	return nil
}

func runTestDetail(_ []string) error {
	PrintGreen("running tests (detail)")
	if err := cleanCache(); err != nil {
		return err
	}
	err := goFiltered(func(line string) {
		if !strings.Contains(line, "[no test files]") {
			PrintDefault(line)
		}
	}, "test", "./...", "-v", "-count=1")
	if err != nil {
		return fmt.Errorf("tests (detail) finished with errors")
	}
	return nil
}

// runSim sim [game] [spins] [workers]
func runSim(args []string) error {
	opts := []string{"-game", "1001", "-spins", "1000000", "-worker", "4"}
	for i, v := range args {
		if i*2+1 < len(opts) {
			opts[i*2+1] = v
		}
	}
	PrintGreen("running simulation " + strings.Join(opts, " "))
	return goCmd(append([]string{"run", "./cmd/run"}, opts...)...)
}

func runServe(args []string) error {
	PrintGreen("starting lab server on :5808 (dev routes on)")
	return goCmd(append([]string{"run", "./cmd/svr", "-dev"}, args...)...)
}

// runPGO 以一次長模擬的 cpu profile 當作 PGO 藍圖
func runPGO(_ []string) error {
	PrintGreen("collecting cpu profile")
	dir := "build/profiling"
	if err := goCmd("run", "./cmd/run", "-spins", "2000000", "-o", "json", "-p", "cpu", "-pdir", dir); err != nil {
		return err
	}
	raw, err := os.ReadFile(dir + "/cpu.pprof")
	if err != nil {
		return err
	}
	if err := os.WriteFile("cmd/svr/default.pgo", raw, 0o644); err != nil {
		return err
	}
	PrintGreen("wrote cmd/svr/default.pgo")
	return nil
}
