package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/vi-sprite/frame"
)

// fakeTicker is fired manually by tests
type fakeTicker struct {
	c        chan time.Time
	interval time.Duration
	mu       sync.Mutex
	stopped  bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *fakeTicker) fire() { f.c <- time.Now() }

// fakeClock records every ticker a controller creates
type fakeClock struct {
	tickers []*fakeTicker
}

func (fc *fakeClock) newTicker(d time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time), interval: d}
	fc.tickers = append(fc.tickers, t)
	return t
}

func (fc *fakeClock) last() *fakeTicker { return fc.tickers[len(fc.tickers)-1] }

func receive(t *testing.T, c *Controller) Tick {
	t.Helper()
	select {
	case tk := <-c.Ticks():
		return tk
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
	}
	return Tick{}
}

func newController(store *frame.Store, opts ...Option) (*Controller, *fakeClock) {
	fc := &fakeClock{}
	opts = append([]Option{WithTickerFunc(fc.newTicker)}, opts...)
	return New(store, opts...), fc
}

func TestIntervalFor(t *testing.T) {
	tests := []struct {
		speed int
		want  time.Duration
	}{
		{100, 450 * time.Millisecond},
		{500, 50 * time.Millisecond},
		{50, 500 * time.Millisecond},
		{10, 500 * time.Millisecond},
		{900, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := IntervalFor(tt.speed); got != tt.want {
			t.Errorf("IntervalFor(%d) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestStartTickAdvances(t *testing.T) {
	store := frame.New(4, 4)
	store.AddFrame()
	store.AddFrame()

	var seen []int
	c, fc := newController(store, WithOnTick(func(i int) { seen = append(seen, i) }))
	c.Start()
	if !c.Running() {
		t.Fatal("Start should enter running state")
	}
	if fc.last().interval != 450*time.Millisecond {
		t.Errorf("default interval = %v", fc.last().interval)
	}

	for range 3 {
		fc.last().fire()
		if !c.Handle(receive(t, c)) {
			t.Fatal("tick should be applied")
		}
	}
	want := []int{0, 1, 2}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("tick %d advanced to %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestStopDropsInFlightTick(t *testing.T) {
	store := frame.New(4, 4)
	store.AddFrame()
	store.SetCurrent(0)

	c, fc := newController(store)
	c.Start()
	fc.last().fire()
	tk := receive(t, c)

	c.Stop()
	if c.Handle(tk) {
		t.Error("tick delivered before Stop must not advance after it")
	}
	if store.CurrentIndex() != 0 {
		t.Errorf("current = %d, want 0", store.CurrentIndex())
	}
	if !fc.last().isStopped() {
		t.Error("Stop should stop the ticker")
	}
}

func TestRestartIgnoresLeftoverTick(t *testing.T) {
	store := frame.New(4, 4)
	store.AddFrame()
	store.SetCurrent(0)
	c, fc := newController(store)

	c.Start()
	old := c.Ticks()
	fc.last().fire()
	deadline := time.Now().Add(time.Second)
	for len(old) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for queued tick")
		}
		time.Sleep(time.Millisecond)
	}

	// leftover tick stays queued while the timer is replaced
	c.Stop()
	c.Start()
	if c.Ticks() == old {
		t.Fatal("restart should open a new tick channel")
	}

	fc.last().fire()
	tk := receive(t, c)
	if tk.Gen != c.Generation() {
		t.Errorf("received gen %d, want %d", tk.Gen, c.Generation())
	}
	if !c.Handle(tk) || store.CurrentIndex() != 1 {
		t.Errorf("first tick after restart should advance, current = %d", store.CurrentIndex())
	}
	c.Stop()
}

func TestStopIdempotent(t *testing.T) {
	c, fc := newController(frame.New(4, 4))
	c.Stop()
	c.Stop()
	c.Start()
	c.Stop()
	c.Stop()
	if c.Running() {
		t.Error("controller should be stopped")
	}
	if len(fc.tickers) != 1 {
		t.Errorf("created %d tickers, want 1", len(fc.tickers))
	}
}

func TestStartTwiceKeepsOneTimer(t *testing.T) {
	c, fc := newController(frame.New(4, 4))
	c.Start()
	c.Start()
	if len(fc.tickers) != 1 {
		t.Errorf("created %d tickers, want 1", len(fc.tickers))
	}
	c.Stop()
}

func TestToggle(t *testing.T) {
	c, _ := newController(frame.New(4, 4))
	if !c.Toggle() || !c.Running() {
		t.Error("first toggle should start")
	}
	if c.Toggle() || c.Running() {
		t.Error("second toggle should stop")
	}
}

func TestSetSpeedRestartsRunningTimer(t *testing.T) {
	store := frame.New(4, 4)
	store.AddFrame()
	c, fc := newController(store)

	c.SetSpeed(500)
	if len(fc.tickers) != 0 {
		t.Error("SetSpeed while stopped should not create a timer")
	}
	if c.Interval() != 50*time.Millisecond {
		t.Errorf("interval = %v", c.Interval())
	}

	c.Start()
	first := fc.last()
	fc.last().fire()
	stale := receive(t, c)

	c.SetSpeed(100)
	if len(fc.tickers) != 2 {
		t.Fatalf("created %d tickers, want 2", len(fc.tickers))
	}
	if !first.isStopped() {
		t.Error("old timer should be stopped on speed change")
	}
	if fc.last().interval != 450*time.Millisecond {
		t.Errorf("new interval = %v", fc.last().interval)
	}
	if c.Handle(stale) {
		t.Error("tick from the replaced timer must be dropped")
	}

	fc.last().fire()
	if !c.Handle(receive(t, c)) {
		t.Error("tick from the new timer should apply")
	}
	c.Stop()
}

func TestSingleFrameStillTicks(t *testing.T) {
	store := frame.New(4, 4)
	c, fc := newController(store)
	c.Start()
	fc.last().fire()
	if !c.Handle(receive(t, c)) {
		t.Error("single-frame tick should still be handled")
	}
	if store.CurrentIndex() != 0 {
		t.Errorf("current = %d", store.CurrentIndex())
	}
	c.Stop()
}

func TestRealTickerDelivers(t *testing.T) {
	store := frame.New(4, 4)
	store.AddFrame()
	c := New(store, WithSpeed(MaxSpeed))
	c.Start()
	defer c.Stop()

	if !c.Handle(receive(t, c)) {
		t.Error("real ticker tick should apply")
	}
}
