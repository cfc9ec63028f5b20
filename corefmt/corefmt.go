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

// Package corefmt 負責 PRNG 快照的文字編碼（對外一律使用 Base64URL）。
package corefmt

import (
	"encoding/base64"

	"github.com/zintix-labs/tumblab/errs"
)

// EncodeBase64URL 快照 -> URL-safe base64（無 padding）
func EncodeBase64URL(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeBase64URL 解碼失敗視為請求錯誤
func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.BadRequestf("decode base64url failed: %v", err)
	}
	return b, nil
}
