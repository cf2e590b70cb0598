// Package playback cycles the active frame on a timed cadence for preview
package playback

import (
	"time"

	"github.com/lixenwraith/vi-sprite/frame"
)

// Speed input range accepted by SetSpeed
const (
	MinSpeed     = 50
	MaxSpeed     = 500
	DefaultSpeed = 100

	// intervalBase minus speed gives the tick interval in milliseconds
	intervalBase = 550
)

// Tick is one timer firing stamped with the generation that produced it
type Tick struct {
	Gen uint64
	At  time.Time
}

// Ticker is the recurring timer used by a controller
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// IntervalFor converts a speed input into a tick interval
func IntervalFor(speed int) time.Duration {
	return time.Duration(intervalBase-ClampSpeed(speed)) * time.Millisecond
}

// ClampSpeed limits speed to [MinSpeed, MaxSpeed]
func ClampSpeed(speed int) int {
	return min(max(speed, MinSpeed), MaxSpeed)
}

// Controller owns the single preview timer of a session
// State changes happen on the owner goroutine; only tick delivery is asynchronous
type Controller struct {
	store     *frame.Store
	onTick    func(index int)
	newTicker TickerFunc

	speed   int
	running bool
	gen     uint64

	ticker Ticker
	done   chan struct{}
	ticks  chan Tick
}

// Option configures a Controller
type Option func(*Controller)

// WithTickerFunc replaces the timer source, used by tests
func WithTickerFunc(f TickerFunc) Option {
	return func(c *Controller) { c.newTicker = f }
}

// WithOnTick registers the observer called after each applied tick
func WithOnTick(f func(index int)) Option {
	return func(c *Controller) { c.onTick = f }
}

// WithSpeed sets the initial speed input
func WithSpeed(speed int) Option {
	return func(c *Controller) { c.speed = ClampSpeed(speed) }
}

// New creates a stopped controller advancing store
func New(store *frame.Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		onTick:    func(int) {},
		newTicker: NewTimeTicker,
		speed:     DefaultSpeed,
		ticks:     make(chan Tick, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetStore retargets the controller after the session replaced its store
func (c *Controller) SetStore(store *frame.Store) { c.store = store }

// Ticks delivers timer firings; the owner passes each to Handle
// At most one undelivered tick is buffered, later ones are coalesced
// Every Start or speed change opens a new channel, so owners read it afresh
// on each wait and a tick left over from a cancelled timer never fills it
func (c *Controller) Ticks() <-chan Tick { return c.ticks }

// Running reports whether preview is active
func (c *Controller) Running() bool { return c.running }

// Speed returns the clamped speed input
func (c *Controller) Speed() int { return c.speed }

// Interval returns the current tick interval
func (c *Controller) Interval() time.Duration { return IntervalFor(c.speed) }

// Generation returns the token ticks must carry to be applied
func (c *Controller) Generation() uint64 { return c.gen }

// Start begins ticking; no-op when already running
func (c *Controller) Start() {
	if c.running {
		return
	}
	c.running = true
	c.arm()
}

// Stop cancels the timer; ticks already queued become stale
func (c *Controller) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.disarm()
}

// Toggle flips between running and stopped, returning the new state
func (c *Controller) Toggle() bool {
	if c.running {
		c.Stop()
	} else {
		c.Start()
	}
	return c.running
}

// SetSpeed updates the interval, restarting the timer at once when running
func (c *Controller) SetSpeed(speed int) {
	c.speed = ClampSpeed(speed)
	if c.running {
		c.disarm()
		c.arm()
	}
}

// Handle applies a delivered tick, advancing the store by one frame
// Ticks from a previous generation or after Stop are dropped
func (c *Controller) Handle(t Tick) bool {
	if !c.running || t.Gen != c.gen {
		return false
	}
	idx := c.store.Advance()
	c.onTick(idx)
	return true
}

func (c *Controller) arm() {
	c.gen++
	c.ticker = c.newTicker(c.Interval())
	c.done = make(chan struct{})
	c.ticks = make(chan Tick, 1)
	go forward(c.gen, c.ticker, c.done, c.ticks)
}

func (c *Controller) disarm() {
	c.gen++
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
	// The cancelled forwarder may still send once; it owns the old channel
	c.ticks = make(chan Tick, 1)
}

// forward relays timer firings as generation-stamped ticks until done closes
func forward(gen uint64, t Ticker, done <-chan struct{}, out chan<- Tick) {
	for {
		select {
		case <-done:
			return
		case now := <-t.C():
			select {
			case out <- Tick{Gen: gen, At: now}:
			default:
			}
		}
	}
}
