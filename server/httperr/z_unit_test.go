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

package httperr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/tumblab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.Canceled(context.DeadlineExceeded, "spin"), http.StatusGatewayTimeout},
		{errs.Canceled(context.Canceled, "spin"), http.StatusRequestTimeout},
		{errs.Warnf("x").WithCode(errs.CodeNotFound), http.StatusNotFound},
		{errs.Warnf("x").WithCode(errs.CodeInsufficientFunds), http.StatusPaymentRequired},
		{errs.Configf("bad cfg"), http.StatusInternalServerError},
		{errs.BadRequestf("bad"), http.StatusBadRequest},
		{errs.NewFatal("boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for i, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("case %d: got %d want %d (%v)", i, got, c.want, c.err)
		}
	}
}

func TestErrsWritesStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	Errs(rec, errs.BadRequestf("bet_mult out of range"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	Errs(rec, nil)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("nil error must not write")
	}
}
