package gameclock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGameClockSetTime(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	gc := New(start, time.Second, time.Hour, RealTime)

	restored := start.Add(42 * time.Second)
	gc.SetTime(restored)

	if got := gc.Now(); !got.Equal(restored) {
		t.Fatalf("Now() = %v, want %v", got, restored)
	}
}

func TestGameClockAcceleratedStep(t *testing.T) {
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	gc := New(start, 5*time.Millisecond, 24*time.Hour, Accelerated)

	var ticks atomic.Int64
	gc.AddListener(func(time.Time) { ticks.Add(1) })

	stop := make(chan struct{})
	done := gc.Start(stop)

	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	n := ticks.Load()
	if n == 0 {
		t.Fatal("expected at least one tick")
	}
	expected := start.Add(time.Duration(n) * 24 * time.Hour)
	if got := gc.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v after %d ticks", got, expected, n)
	}
}
