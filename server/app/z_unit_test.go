package app

import (
	"context"
	"errors"
	"testing"
)

type fakeComp struct {
	runErr   error
	shutdown int
}

func (f *fakeComp) Run() error                         { return f.runErr }
func (f *fakeComp) Shutdown(ctx context.Context) error { f.shutdown++; return nil }

func TestRunStopsOnComponentError(t *testing.T) {
	boom := errors.New("listen failed")
	c := &fakeComp{runErr: boom}
	a := NewWith(c)
	var order []string
	a.OnStop(func() { order = append(order, "runtime") })
	a.OnStop(func() { order = append(order, "log") })

	if err := a.Run(); !errors.Is(err, boom) {
		t.Fatalf("expected component error, got %v", err)
	}
	if c.shutdown != 1 {
		t.Fatalf("component must be shut down once, got %d", c.shutdown)
	}
	if len(order) != 2 || order[0] != "log" || order[1] != "runtime" {
		t.Fatalf("stop hooks must run in reverse order: %v", order)
	}
}

func TestStopOnlyOnce(t *testing.T) {
	c := &fakeComp{}
	a := NewWith(c).WithTimeout(0)
	hooks := 0
	a.OnStop(func() { hooks++ })
	a.Stop()
	a.Stop()
	if c.shutdown != 1 || hooks != 1 {
		t.Fatalf("stop must be idempotent: shutdown=%d hooks=%d", c.shutdown, hooks)
	}
	if a.timeout <= 0 {
		t.Fatalf("non-positive timeout must be ignored")
	}
}
