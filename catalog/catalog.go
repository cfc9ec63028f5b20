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

// Package catalog 是遊戲目錄：哪些遊戲存在、各自對應哪個設定檔。
//
// 設定檔來源一律以 fs.FS 注入，且必須是扁平目錄（不允許子目錄）。
package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate game id")
	ErrDupName = errs.NewFatal("duplicate game name")
)

// Entry 目錄中的一筆遊戲
type Entry struct {
	GID        spec.GID
	Name       string
	ConfigName string
}

// Summary 對外列舉用的遊戲摘要
type Summary struct {
	GID        spec.GID        `json:"gid"`
	Name       string          `json:"name"`
	Rows       int             `json:"rows"`
	Cols       int             `json:"cols"`
	MinCluster int             `json:"min_cluster"`
	BaseBet    decimal.Decimal `json:"base_bet"`
	MaxBetMult int             `json:"max_bet_mult"`
	Symbols    []string        `json:"symbols"`
	Tiers      []string        `json:"multiplier_tiers"`
}

// NewSummary 由已初始化的設定產生摘要
func NewSummary(gs *spec.GameSetting) Summary {
	s := Summary{
		GID:        gs.GameID,
		Name:       gs.GameName,
		Rows:       gs.BoardSetting.Rows,
		Cols:       gs.BoardSetting.Cols,
		MinCluster: gs.ClusterSetting.MinSize,
		BaseBet:    gs.BetSetting.Base,
		MaxBetMult: gs.BetSetting.MaxBetMult,
		Symbols:    make([]string, 0, gs.SymbolSetting.Count()),
		Tiers:      make([]string, 0, len(gs.MultSetting.Tiers)),
	}
	for _, sym := range gs.SymbolSetting.Symbols {
		s.Symbols = append(s.Symbols, sym.Name)
	}
	for _, t := range gs.MultSetting.Tiers {
		s.Tiers = append(s.Tiers, t.Name)
	}
	return s
}

// Catalog 遊戲目錄；Freeze 之後只讀。
type Catalog struct {
	byID   map[spec.GID]Entry
	byName map[string]Entry
	ids    []spec.GID // 用來穩定排序
	src    []fs.FS
	index  map[string]int // 檔名 -> src 索引
	frozen bool
}

// New 建立目錄並立即索引所有設定檔（檔名跨來源需唯一）。
func New(cfg ...fs.FS) (*Catalog, error) {
	c := &Catalog{
		byID:   map[spec.GID]Entry{},
		byName: map[string]Entry{},
		ids:    make([]spec.GID, 0, 16),
		index:  make(map[string]int, 16),
	}
	if len(cfg) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range cfg {
		if s == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
		err := fs.WalkDir(s, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", p)
			}
			if !isConfigName(p) {
				return nil
			}
			if prev, ok := c.index[p]; ok {
				return errs.Fatalf("duplicate config %q in fs[%d] and fs[%d]", p, prev, i)
			}
			c.index[p] = i
			return nil
		})
		if err != nil {
			return nil, errs.Wrap(err, "can not create catalog")
		}
	}
	c.src = cfg
	return c, nil
}

// RegisterAll 解析所有已索引的設定檔並一次性註冊。
//
// fail-fast 且具原子性：任一檔案失敗就回傳錯誤，不會留下註冊一半的目錄。
// 依檔名排序處理，行為可重現。
func (c *Catalog) RegisterAll() error {
	names := make([]string, 0, len(c.index))
	for name := range c.index {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		gs, err := c.parse(name)
		if err != nil {
			return errs.Wrap(err, "parse gamesetting failed: "+name)
		}
		entries = append(entries, Entry{GID: gs.GameID, Name: gs.GameName, ConfigName: name})
	}
	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return c.Register(entries...)
}

// Register 註冊遊戲；ID、名稱（不分大小寫）、檔名都必須唯一。
func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenID := map[spec.GID]struct{}{}
	seenName := map[string]struct{}{}
	for i := range metas {
		meta := &metas[i]
		meta.Name = normName(meta.Name)
		if meta.Name == "" {
			return errs.NewFatal("game name required")
		}
		if !isConfigName(meta.ConfigName) || strings.ContainsAny(meta.ConfigName, `/\:`) {
			return errs.Fatalf("invalid config filename: %q", meta.ConfigName)
		}
		if _, ok := c.index[meta.ConfigName]; !ok {
			return errs.Fatalf("config file not found: %s", meta.ConfigName)
		}
		if _, ok := c.byID[meta.GID]; ok {
			return ErrDupID
		}
		if _, ok := seenID[meta.GID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName
		}
		seenID[meta.GID] = struct{}{}
		seenName[meta.Name] = struct{}{}
	}
	for _, meta := range metas {
		c.byID[meta.GID] = meta
		c.byName[meta.Name] = meta
		c.ids = append(c.ids, meta.GID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

func (c *Catalog) GetByID(id spec.GID) (Entry, bool) {
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	m, ok := c.byName[normName(name)]
	return m, ok
}

func (c *Catalog) IDs() []spec.GID {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]spec.GID(nil), c.ids...)
}

func (c *Catalog) Freeze() { c.frozen = true }

func (c *Catalog) IsFrozen() bool { return c.frozen }

// GameSettingById 每次呼叫都重新解析，回傳的設定由呼叫端獨佔。
func (c *Catalog) GameSettingById(id spec.GID) (*spec.GameSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.Warnf("game id %d does not exist in catalog", id).WithCode(errs.CodeNotFound)
	}
	return c.parse(e.ConfigName)
}

// GameSettingByName 與 GameSettingById 相同，但以名稱查找
func (c *Catalog) GameSettingByName(name string) (*spec.GameSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Warnf("game %q does not exist in catalog", name).WithCode(errs.CodeNotFound)
	}
	return c.parse(e.ConfigName)
}

func (c *Catalog) parse(name string) (*spec.GameSetting, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, errs.Warnf("file %s does not exist in catalog", name).WithCode(errs.CodeNotFound)
	}
	raw, err := fs.ReadFile(c.src[i], name)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return spec.GetGameSettingByJSON(raw)
	default:
		return spec.GetGameSettingByYAML(raw)
	}
}

func isConfigName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func normName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// String 方便日誌輸出
func (e Entry) String() string {
	return fmt.Sprintf("%d:%s(%s)", e.GID, e.Name, e.ConfigName)
}
