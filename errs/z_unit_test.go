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

package errs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapKeepsLevelAndCode(t *testing.T) {
	inner := Warnf("cell %d,%d", 9, 9).WithCode(CodeOutOfBounds)
	outer := Wrap(inner, "board read")
	if outer.ErrLv != Warn {
		t.Fatalf("expected warn level, got %s", ErrLv(outer.ErrLv))
	}
	if !Is(outer, CodeOutOfBounds) {
		t.Fatalf("expected code to survive wrap")
	}
	if !errors.Is(outer, inner) {
		t.Fatalf("expected errors.Is to reach inner")
	}
}

func TestWrapForeignIsFatal(t *testing.T) {
	e := Wrap(fmt.Errorf("disk"), "load")
	if e.ErrLv != Fatal || !IsFatal(e) {
		t.Fatalf("foreign cause should be fatal")
	}
	if e.Code != CodeNone {
		t.Fatalf("unexpected code %q", e.Code)
	}
}

func TestIsThroughStdWrap(t *testing.T) {
	base := Configf("rows=%d", 0)
	err := fmt.Errorf("outer: %w", base)
	if !Is(err, CodeConfig) {
		t.Fatalf("expected config code through fmt wrap")
	}
	if Is(err, CodeNotConverged) {
		t.Fatalf("unexpected code match")
	}
	if !strings.Contains(base.Error(), "code=config") {
		t.Fatalf("code missing from message: %s", base.Error())
	}
}

func TestCanceledKeepsContextError(t *testing.T) {
	e := Canceled(context.DeadlineExceeded, "spin")
	if e.ErrLv != Warn || IsFatal(e) || !Is(e, CodeCanceled) {
		t.Fatalf("expected warn canceled, got %v", e)
	}
	if !errors.Is(e, context.DeadlineExceeded) {
		t.Fatalf("expected deadline to survive")
	}
}
