package layout

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CollapsesBurst(t *testing.T) {
	t.Parallel()
	d := NewDebouncer(DefaultDebounce)
	var runs atomic.Int32

	for range 5 {
		d.Trigger(func() { runs.Add(1) })
		time.Sleep(10 * time.Millisecond)
	}
	if !d.Pending() {
		t.Fatal("no call pending after burst")
	}

	time.Sleep(DefaultDebounce + 300*time.Millisecond)
	if got := runs.Load(); got != 1 {
		t.Errorf("burst of 5 triggers ran %d times, want 1", got)
	}
	if d.Pending() {
		t.Error("call still pending after it ran")
	}
}

func TestDebouncer_RunsLatest(t *testing.T) {
	t.Parallel()
	d := NewDebouncer(20 * time.Millisecond)
	got := make(chan int, 3)
	for i := range 3 {
		d.Trigger(func() { got <- i })
	}
	select {
	case v := <-got:
		if v != 2 {
			t.Errorf("ran trigger %d, want the last one", v)
		}
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()
	d := NewDebouncer(20 * time.Millisecond)
	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })
	if !d.Cancel() {
		t.Fatal("Cancel found nothing pending")
	}
	if d.Cancel() {
		t.Error("second Cancel reported a pending call")
	}
	time.Sleep(80 * time.Millisecond)
	if runs.Load() != 0 {
		t.Error("cancelled call ran")
	}
}
