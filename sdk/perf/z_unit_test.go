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

package perf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/tumblab/errs"
)

func TestRunPProfWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		ran := false
		if err := RunPProf(func() { ran = true }, mode, dir); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !ran {
			t.Fatalf("%s: exe must run", mode)
		}
		if st, err := os.Stat(filepath.Join(dir, mode+".pprof")); err != nil || st.Size() == 0 {
			t.Fatalf("%s: profile not written: %v", mode, err)
		}
	}
}

func TestRunPProfRejectsUnknownMode(t *testing.T) {
	ran := false
	err := RunPProf(func() { ran = true }, "trace", t.TempDir())
	if !errs.Is(err, errs.CodeBadRequest) || ran {
		t.Fatalf("expected bad request without running, got %v ran=%v", err, ran)
	}
}
