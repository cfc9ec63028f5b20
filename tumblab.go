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

// Package tumblab 提供連消集群引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Tumblab 把兩個必需的地基組裝在一起，並提供建立 Machine / Simulator / Runtime 的入口：
//  1. Catalog：遊戲目錄，定義有哪些遊戲、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory：亂數核心工廠，保證可重現與可審計。
//
// 設定檔來源一律以 fs.FS 注入；Tumblab 本身不綁定任何檔案路徑。
//
// 典型使用情境：
//   - 後端服務（HTTP）：BuildRuntime 建立機台池，Runtime 對外提供 Spin。
//   - 模擬器（sim）：NewSimulator 建立多台機台進行大量模擬。
package tumblab

import (
	"crypto/rand"
	"io/fs"
	"log/slog"
	"math"
	"math/big"

	"github.com/zintix-labs/tumblab/catalog"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/sdk/core"
	"github.com/zintix-labs/tumblab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 可以用 go:embed 把 configs 編進 binary，也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Tumblab 組裝入口
type Tumblab struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory
	log *slog.Logger
	sum []catalog.Summary
}

// New 建立 Tumblab，尚未註冊任何遊戲。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Tumblab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Tumblab{cat: cata, cf: cf, log: slog.Default()}, nil
}

// NewAuto 建立後自動註冊所有設定檔並凍結目錄。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Tumblab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

// WithLogger 設定引擎使用的 logger（nil 忽略）
func (t *Tumblab) WithLogger(log *slog.Logger) *Tumblab {
	if log != nil {
		t.log = log
	}
	return t
}

// Logger 回傳目前使用的 logger
func (t *Tumblab) Logger() *slog.Logger { return t.log }

func (t *Tumblab) Register(ents ...catalog.Entry) error {
	return t.cat.Register(ents...)
}

func (t *Tumblab) RegisterAll() error {
	return t.cat.RegisterAll()
}

func (t *Tumblab) Freeze() {
	t.cat.Freeze()
}

func (t *Tumblab) EntryById(id spec.GID) (catalog.Entry, bool) {
	return t.cat.GetByID(id)
}

func (t *Tumblab) EntryByName(name string) (catalog.Entry, bool) {
	return t.cat.GetByName(name)
}

func (t *Tumblab) IDs() []spec.GID {
	return t.cat.IDs()
}

// GameSetting 取得一份新的、已初始化的設定（每次呼叫都是獨立實體）
func (t *Tumblab) GameSetting(id spec.GID) (*spec.GameSetting, error) {
	if !t.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return t.cat.GameSettingById(id)
}

// Summary 列出所有遊戲摘要（結果快取）
func (t *Tumblab) Summary() ([]catalog.Summary, error) {
	if !t.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if t.sum != nil {
		return t.sum, nil
	}
	ids := t.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := t.cat.GameSettingById(id)
		if err != nil {
			return nil, errs.Wrap(err, "parse game setting failed")
		}
		cs = append(cs, catalog.NewSummary(gs))
	}
	t.sum = cs
	return t.sum, nil
}

// NewMachine 以隨機 seed 建立機台
func (t *Tumblab) NewMachine(id spec.GID) (*Machine, error) {
	gs, err := t.GameSetting(id)
	if err != nil {
		return nil, err
	}
	return newMachine(gs, t.cf, t.log)
}

// NewMachineWithSeed 以指定 seed 建立機台（可重現）
func (t *Tumblab) NewMachineWithSeed(id spec.GID, seed int64) (*Machine, error) {
	gs, err := t.GameSetting(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, t.cf, seed, false, t.log)
}

// NewMachineByJSON 以外部調整過的設定建立機台；gid 與名稱必須對應已註冊的遊戲。
func (t *Tumblab) NewMachineByJSON(raw []byte, seed int64) (*Machine, error) {
	gs, err := t.settingFrom(raw, spec.GetGameSettingByJSON)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, t.cf, seed, false, t.log)
}

// NewMachineByYAML 同 NewMachineByJSON
func (t *Tumblab) NewMachineByYAML(raw []byte, seed int64) (*Machine, error) {
	gs, err := t.settingFrom(raw, spec.GetGameSettingByYAML)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, t.cf, seed, false, t.log)
}

// NewSimulator 以隨機 seed 建立模擬器
func (t *Tumblab) NewSimulator(id spec.GID) (*Simulator, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, err
	}
	return t.NewSimulatorWithSeed(id, seed)
}

// NewSimulatorWithSeed 以指定 seed 建立模擬器
func (t *Tumblab) NewSimulatorWithSeed(id spec.GID, seed int64) (*Simulator, error) {
	gs, err := t.GameSetting(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, t.cf, seed, t.log)
}

// NewSimulatorByYAML 以外部調整過的設定建立模擬器（調參用）
func (t *Tumblab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	gs, err := t.settingFrom(raw, spec.GetGameSettingByYAML)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, t.cf, seed, t.log)
}

// BuildRuntime 凍結目錄並替每款遊戲建立機台池
func (t *Tumblab) BuildRuntime(poolSize int) (*Runtime, error) {
	t.Freeze()

	ids := t.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}

	rt := &Runtime{
		lab:      t,
		pools:    make(map[spec.GID]*MachinePool, len(ids)),
		ids:      ids,
		wallets:  newWallets(),
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	for _, id := range ids {
		gs, err := t.cat.GameSettingById(id)
		if err != nil {
			return nil, err
		}
		seed, err := cryptoSeed()
		if err != nil {
			return nil, err
		}
		mp, err := newMachinePool(rt.poolSize, gs, t.cf, seed, t.log)
		if err != nil {
			return nil, err
		}
		rt.pools[id] = mp
	}
	return rt, nil
}

// NewDevSimulator 建立可審計的開發用模擬器：機台與模擬器從同一個 seed 出發。
func (t *Tumblab) NewDevSimulator(id spec.GID, seed int64) (*DevSimulator, error) {
	sim, err := t.NewSimulatorWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	m, err := t.NewMachineWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	return newDevSimulator(sim, m), nil
}

func (t *Tumblab) settingFrom(raw []byte, load func([]byte) (*spec.GameSetting, error)) (*spec.GameSetting, error) {
	if !t.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := load(raw)
	if err != nil {
		return nil, err
	}
	ent, ok := t.cat.GetByID(gs.GameID)
	if !ok {
		return nil, errs.Warnf("gid %d not exist", gs.GameID).WithCode(errs.CodeNotFound)
	}
	ent2, ok := t.cat.GetByName(gs.GameName)
	if !ok {
		return nil, errs.Warnf("game name %q not exist", gs.GameName).WithCode(errs.CodeNotFound)
	}
	if ent.GID != ent2.GID {
		return nil, errs.BadRequestf("game id %d is not matched game name %q", gs.GameID, gs.GameName)
	}
	return gs, nil
}

// cryptoSeed 對外服務情境避免可預測的起點；完整重現請用 Snapshot/Restore。
func cryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}

// RandomSeed 以 crypto/rand 產生非負 seed，供呼叫端未指定 seed 時使用。
func RandomSeed() (int64, error) {
	return cryptoSeed()
}
