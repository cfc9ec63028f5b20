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

// Package errs 定義整個引擎共用的分級錯誤型別。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Code 為錯誤分類碼，讓呼叫端不必比對字串就能分辨錯誤來源。
type Code string

const (
	CodeNone              Code = ""
	CodeConfig            Code = "config"             // 設定檔不合法
	CodeOutOfBounds       Code = "out_of_bounds"      // 盤面座標越界
	CodeNotConverged      Code = "not_converged"      // 連消超過安全上限仍未收斂
	CodeBadRequest        Code = "bad_request"        // 請求參數錯誤
	CodeInsufficientFunds Code = "insufficient_funds" // 餘額不足以下注
	CodeCanceled          Code = "canceled"           // ctx 在回合之間被取消
	CodeNotFound          Code = "not_found"          // 查無遊戲或 session
)

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文；Cause 串接下層錯誤；
// ErrLv 決定嚴重度；Code 提供穩定的分類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Code    Code
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Code != CodeNone {
		base = fmt.Sprintf("errlv=%s code=%s %s", ErrLv(e.ErrLv), e.Code, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// WithCode 設定分類碼並回傳自身，方便串接。
func (e *E) WithCode(c Code) *E {
	e.Code = c
	return e
}

// WithLevel 改寫錯誤等級並回傳自身
func (e *E) WithLevel(lv ErrLevel) *E {
	e.ErrLv = lv
	return e
}

// Canceled 包裝 ctx 錯誤：Warn 等級，保留 errors.Is(context.Canceled/DeadlineExceeded)
func Canceled(cause error, msg string) *E {
	return Wrap(cause, msg).WithCode(CodeCanceled).WithLevel(Warn)
}

// New 依等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Configf 建立設定檔錯誤（Fatal）。
func Configf(format string, a ...any) *E {
	return Fatalf(format, a...).WithCode(CodeConfig)
}

// BadRequestf 建立請求參數錯誤（Warn）。
func BadRequestf(format string, a ...any) *E {
	return Warnf(format, a...).WithCode(CodeBadRequest)
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 包裝底層錯誤。
//
// ErrLevel 與 Code 規則：
//   - 若 cause 已經是 *E，沿用其 ErrLv 與 Code。
//   - 否則（標準庫或三方錯誤）一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	errLv := Fatal
	code := CodeNone
	if e, ok := AsErr(cause); ok {
		errLv = e.ErrLv
		code = e.Code
	}
	r := New(errLv, msg)
	r.Code = code
	r.Cause = cause
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// Is 回報錯誤鏈上是否有任一 *E 帶有指定的 Code。
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*E); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsFatal 回報錯誤鏈最外層的 *E 是否為 Fatal。
func IsFatal(err error) bool {
	if e, ok := AsErr(err); ok {
		return e.ErrLv == Fatal
	}
	return false
}
