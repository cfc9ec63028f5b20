package main

import (
	"fmt"
	"os"

	"github.com/zintix-labs/tumblab/sdk/perf"
	_ "go.uber.org/automaxprocs"
)

// makefile runner
func main() {
	if err := bindVar(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := perf.RunPProf(executeSimulator, cfg.pprofmode, cfg.pprofdir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
