package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/zintix-labs/tumblab"
	"github.com/zintix-labs/tumblab/configs"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/spec"
	"github.com/zintix-labs/tumblab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	id        spec.GID
	worker    int
	spins     int
	betMult   int
	seed      int64
	cfgDir    string
	format    string
	pprofmode string
	pprofdir  string
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string {
	if f.p == nil {
		return "0"
	}
	return fmt.Sprint(uint(*f.p))
}

func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(uint(u))
	return nil
}

func bindVar() error {
	cfg.id = 1001
	flag.Var(gidFlag{&cfg.id}, "game", "target game id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.spins, "spins", 1_000_000, "spins per worker")
	flag.IntVar(&cfg.betMult, "mult", 1, "bet multiplier (x base_bet)")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.cfgDir, "configs", "", "config directory (default: embedded configs)")
	flag.StringVar(&cfg.format, "o", "table", "output: table | json | yaml")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	flag.StringVar(&cfg.pprofdir, "pdir", "", "pprof output dir")

	flag.Parse()

	// given seed illegal -> crypto seed
	if cfg.seed < 0 {
		seed, err := tumblab.RandomSeed()
		if err != nil {
			return err
		}
		cfg.seed = seed
	}
	return cfg.valid()
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	var src fs.FS = configs.FS
	if cfg.cfgDir != "" {
		src = os.DirFS(cfg.cfgDir)
	}
	lab, err := tumblab.NewAuto(core.Default(), tumblab.Configs(src))
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.id, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)

	table := cfg.format == "table"
	if table {
		green := "\033[1;32m"
		reset := "\033[0m"
		p := message.NewPrinter(language.English)
		p.Printf("%s[WORKERS:%d] [GAME:%s] [BET_MULT:%d] [SPINS:%d] [SEED:%d]%s\n",
			green, cfg.worker, ent.Name, cfg.betMult, cfg.worker*cfg.spins, cfg.seed, reset)
	}
	st, used, err := s.SimMP(cfg.betMult, cfg.spins, cfg.worker, table)
	if err != nil {
		log.Fatal(err)
	}
	if table {
		st.StdOut(used)
		return
	}
	if err := st.WriteWith(os.Stdout, stats.RenderOf(cfg.format)); err != nil {
		log.Fatal(err)
	}
}

func (cfg *config) valid() error {
	if cfg.worker < 1 {
		return errs.BadRequestf("workers must > 0")
	}
	if cfg.spins < 1 {
		return errs.BadRequestf("spins must > 0")
	}
	if cfg.betMult < 1 {
		return errs.BadRequestf("mult must > 0")
	}
	switch cfg.format {
	case "table", "json", "yaml", "yml":
	default:
		return errs.BadRequestf("unknown output %q", cfg.format)
	}
	return nil
}
