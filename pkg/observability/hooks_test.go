package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	s := NoopSortingHooks{}
	s.OnReconcile("stage", 3, 1, time.Millisecond)
	s.OnAssign("stage", 10, 10, time.Millisecond, nil)

	w := NoopWatchHooks{}
	w.OnReload(context.Background(), "scene.yaml", time.Millisecond, errors.New("boom"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Sorting().(NoopSortingHooks); !ok {
		t.Error("Sorting() should return NoopSortingHooks by default")
	}
	if _, ok := Watch().(NoopWatchHooks); !ok {
		t.Error("Watch() should return NoopWatchHooks by default")
	}

	// Set custom hooks
	customSorting := &testSortingHooks{}
	SetSortingHooks(customSorting)
	if Sorting() != customSorting {
		t.Error("SetSortingHooks should set custom hooks")
	}

	customWatch := &testWatchHooks{}
	SetWatchHooks(customWatch)
	if Watch() != customWatch {
		t.Error("SetWatchHooks should set custom hooks")
	}

	// Setting nil should not change hooks
	SetSortingHooks(nil)
	if Sorting() != customSorting {
		t.Error("SetSortingHooks(nil) should not change hooks")
	}

	// Reset should restore defaults
	Reset()
	if _, ok := Sorting().(NoopSortingHooks); !ok {
		t.Error("Reset() should restore NoopSortingHooks")
	}
	if _, ok := Watch().(NoopWatchHooks); !ok {
		t.Error("Reset() should restore NoopWatchHooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testSortingHooks{}
	SetSortingHooks(h)

	Sorting().OnReconcile("stage", 2, 0, time.Millisecond)
	Sorting().OnAssign("stage", 4, 4, time.Millisecond, nil)

	if h.reconciles != 1 || h.assigns != 1 {
		t.Errorf("got reconciles=%d assigns=%d, want 1 and 1", h.reconciles, h.assigns)
	}
	if h.lastTotal != 4 {
		t.Errorf("lastTotal = %d, want 4", h.lastTotal)
	}
}

type testSortingHooks struct {
	reconciles, assigns int
	lastTotal           int
}

func (h *testSortingHooks) OnReconcile(string, int, int, time.Duration) { h.reconciles++ }
func (h *testSortingHooks) OnAssign(_ string, total, _ int, _ time.Duration, _ error) {
	h.assigns++
	h.lastTotal = total
}

type testWatchHooks struct{}

func (testWatchHooks) OnReload(context.Context, string, time.Duration, error) {}
