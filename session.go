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

package tumblab

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/tumblab/errs"
	"github.com/zintix-labs/tumblab/spec"
)

// Session 記憶體錢包（不持久化）
type Session struct {
	ID      string          `json:"id"`
	GameId  spec.GID        `json:"gid"`
	Balance decimal.Decimal `json:"balance"`
	Spins   int             `json:"spins"`
	mu      sync.Mutex
}

// SessionView 對外輸出的快照
type SessionView struct {
	ID      string          `json:"id"`
	GameId  spec.GID        `json:"gid"`
	Balance decimal.Decimal `json:"balance"`
	Spins   int             `json:"spins"`
}

func (s *Session) view() SessionView {
	return SessionView{ID: s.ID, GameId: s.GameId, Balance: s.Balance, Spins: s.Spins}
}

// Debit 扣款；餘額不足時回傳 CodeInsufficientFunds 且餘額不變。
func (s *Session) Debit(bet decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bet.IsNegative() {
		return errs.BadRequestf("bet must not be negative: %s", bet)
	}
	if s.Balance.LessThan(bet) {
		return errs.Warnf("balance %s is less than bet %s", s.Balance, bet).WithCode(errs.CodeInsufficientFunds)
	}
	s.Balance = s.Balance.Sub(bet)
	return nil
}

// Credit 入帳並回傳入帳後餘額
func (s *Session) Credit(win decimal.Decimal, spin bool) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Balance = s.Balance.Add(win)
	if spin {
		s.Spins++
	}
	return s.Balance
}

// View 取得快照
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

type wallets struct {
	mu   sync.RWMutex
	byID map[string]*Session
}

func newWallets() *wallets {
	return &wallets{byID: make(map[string]*Session, 64)}
}

func (w *wallets) open(gid spec.GID, balance decimal.Decimal) (*Session, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, errs.Wrap(err, "session id")
	}
	s := &Session{ID: hex.EncodeToString(raw[:]), GameId: gid, Balance: balance}
	w.mu.Lock()
	w.byID[s.ID] = s
	w.mu.Unlock()
	return s, nil
}

func (w *wallets) get(id string) (*Session, error) {
	w.mu.RLock()
	s, ok := w.byID[id]
	w.mu.RUnlock()
	if !ok {
		return nil, errs.Warnf("session %q not found", id).WithCode(errs.CodeNotFound)
	}
	return s, nil
}

func (w *wallets) close(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.byID[id]
	delete(w.byID, id)
	return ok
}
