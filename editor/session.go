// Package editor is the synchronous facade UI adapters drive
// It ties the frame store, brush engine, playback controller and project files together
package editor

import (
	"context"
	"image/color"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/vi-sprite/brush"
	"github.com/lixenwraith/vi-sprite/export"
	"github.com/lixenwraith/vi-sprite/frame"
	"github.com/lixenwraith/vi-sprite/logger"
	"github.com/lixenwraith/vi-sprite/playback"
	"github.com/lixenwraith/vi-sprite/project"
	"github.com/lixenwraith/vi-sprite/raster"
	"github.com/lixenwraith/vi-sprite/scale"
)

// Sprite size bounds accepted by SetSpriteSize
const (
	MinSpriteSize = 8
	MaxSpriteSize = 512

	DefaultSpriteSize = 32
)

// ErrSizeRange is returned for sprite sizes outside [MinSpriteSize, MaxSpriteSize]
var ErrSizeRange = errors.New("sprite size out of range")

// Cues receives audible feedback events
type Cues interface {
	PlayTick(frame int)
	PlayReject()
}

type silentCues struct{}

func (silentCues) PlayTick(int) {}
func (silentCues) PlayReject()  {}

// Options configures a new session; zero fields take defaults
type Options struct {
	Width  int
	Height int
	Extent int
	Speed  int
	Brush  *brush.State

	// OnRedraw runs after any change that alters what the canvas shows
	OnRedraw func()
	Cues     Cues

	TickerFunc playback.TickerFunc
}

// Session is one editing session over a single frame store
// All methods must be called from the owning goroutine
type Session struct {
	log    *zap.Logger
	extent int

	store  *frame.Store
	engine *brush.Engine
	player *playback.Controller

	onRedraw func()
	cues     Cues

	dirty    bool
	dragging bool
	lastX    int
	lastY    int
}

// New creates a session with one transparent frame
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Width == 0 {
		opts.Width = DefaultSpriteSize
	}
	if opts.Height == 0 {
		opts.Height = DefaultSpriteSize
	}
	if opts.Extent == 0 {
		opts.Extent = scale.DefaultExtent
	}
	if opts.Speed == 0 {
		opts.Speed = playback.DefaultSpeed
	}
	if err := checkSize(opts.Width, opts.Height); err != nil {
		return nil, err
	}
	m, err := scale.New(opts.Width, opts.Height, opts.Extent)
	if err != nil {
		return nil, err
	}

	s := &Session{
		log:      logger.L(ctx).Named("editor"),
		extent:   opts.Extent,
		onRedraw: opts.OnRedraw,
		cues:     opts.Cues,
	}
	if s.onRedraw == nil {
		s.onRedraw = func() {}
	}
	if s.cues == nil {
		s.cues = silentCues{}
	}

	rw, rh := m.RasterSize()
	s.store = frame.New(rw, rh)
	s.engine = brush.NewEngine(s.store, m, s.edited)
	if opts.Brush != nil {
		s.engine.State = *opts.Brush
	}

	popts := []playback.Option{
		playback.WithSpeed(opts.Speed),
		playback.WithOnTick(s.ticked),
	}
	if opts.TickerFunc != nil {
		popts = append(popts, playback.WithTickerFunc(opts.TickerFunc))
	}
	s.player = playback.New(s.store, popts...)

	s.log.Debug("session created", zap.Stringer("mapper", m))
	return s, nil
}

func checkSize(w, h int) error {
	if w < MinSpriteSize || w > MaxSpriteSize || h < MinSpriteSize || h > MaxSpriteSize {
		return errors.Wrapf(ErrSizeRange, "%dx%d not in [%d,%d]", w, h, MinSpriteSize, MaxSpriteSize)
	}
	return nil
}

func (s *Session) edited() {
	s.dirty = true
	s.onRedraw()
}

func (s *Session) ticked(index int) {
	s.cues.PlayTick(index)
	s.onRedraw()
}

// Store exposes the frame store for rendering
func (s *Session) Store() *frame.Store { return s.store }

// Mapper returns the active scale mapper
func (s *Session) Mapper() scale.Mapper { return s.engine.Mapper() }

// Dirty reports unsaved edits since the last save, load or new project
func (s *Session) Dirty() bool { return s.dirty }

// CurrentBuffer returns the frame shown on the canvas
func (s *Session) CurrentBuffer() *raster.Buffer { return s.store.Current() }

// Brush state

// State returns the brush state
func (s *Session) State() brush.State { return s.engine.State }

// SetColor sets the paint color
func (s *Session) SetColor(c color.NRGBA) { s.engine.State.Color = c }

// SetErase switches erase mode
func (s *Session) SetErase(on bool) { s.engine.State.Erase = on }

// SetMirror switches 4-way mirror mode
func (s *Session) SetMirror(on bool) { s.engine.State.Mirror = on }

// ToggleErase flips erase mode and returns the new value
func (s *Session) ToggleErase() bool {
	s.engine.State.Erase = !s.engine.State.Erase
	return s.engine.State.Erase
}

// ToggleMirror flips mirror mode and returns the new value
func (s *Session) ToggleMirror() bool {
	s.engine.State.Mirror = !s.engine.State.Mirror
	return s.engine.State.Mirror
}

// Geometry

// SpriteSize returns the logical sprite size
func (s *Session) SpriteSize() (int, int) { return s.engine.Mapper().LogicalSize() }

// SetSpriteSize resizes every frame to a new logical size, discarding pixels
// Invalid sizes are rejected before any buffer is touched
func (s *Session) SetSpriteSize(w, h int) error {
	if err := checkSize(w, h); err != nil {
		return err
	}
	m, err := scale.New(w, h, s.extent)
	if err != nil {
		return err
	}
	s.store.Resize(m.RasterSize())
	s.engine.SetMapper(m)
	s.PointerUp()
	s.dirty = true
	s.log.Debug("sprite resized", zap.Stringer("mapper", m), zap.Int("frames", s.store.Len()))
	s.onRedraw()
	return nil
}

// Rotate turns every frame 90° clockwise; non-square sprites swap width and height
func (s *Session) Rotate() {
	s.store.RotateAll90()
	s.engine.SetMapper(s.engine.Mapper().Rotated())
	s.PointerUp()
	s.dirty = true
	s.log.Debug("frames rotated", zap.Stringer("mapper", s.engine.Mapper()))
	s.onRedraw()
}

// Frames

// FrameCount returns the number of frames
func (s *Session) FrameCount() int { return s.store.Len() }

// CurrentFrame returns the active frame index
func (s *Session) CurrentFrame() int { return s.store.CurrentIndex() }

// AddFrame appends a transparent frame and selects it
func (s *Session) AddFrame() {
	s.store.AddFrame()
	s.dirty = true
	s.log.Debug("frame added", zap.Int("frames", s.store.Len()))
	s.onRedraw()
}

// DeleteFrame removes the last frame, resetting a sole frame instead
func (s *Session) DeleteFrame() {
	s.store.DeleteFrame()
	s.dirty = true
	s.log.Debug("frame deleted", zap.Int("frames", s.store.Len()), zap.Int("current", s.store.CurrentIndex()))
	s.onRedraw()
}

// CopyPrevious duplicates the previous frame into the current one
func (s *Session) CopyPrevious() bool {
	if !s.store.CopyPrevious() {
		return false
	}
	s.dirty = true
	s.onRedraw()
	return true
}

// SelectFrame activates frame i; invalid indices are ignored
func (s *Session) SelectFrame(i int) bool {
	if !s.store.SetCurrent(i) {
		return false
	}
	s.onRedraw()
	return true
}

// NextFrame selects the following frame without wrapping
func (s *Session) NextFrame() bool { return s.SelectFrame(s.store.CurrentIndex() + 1) }

// PrevFrame selects the preceding frame without wrapping
func (s *Session) PrevFrame() bool { return s.SelectFrame(s.store.CurrentIndex() - 1) }

// Playback

// Previewing reports whether playback is running
func (s *Session) Previewing() bool { return s.player.Running() }

// Speed returns the playback speed input
func (s *Session) Speed() int { return s.player.Speed() }

// Player exposes the playback controller
func (s *Session) Player() *playback.Controller { return s.player }

// StartPreview begins cycling frames
func (s *Session) StartPreview() {
	s.player.Start()
	s.log.Debug("preview started", zap.Duration("interval", s.player.Interval()))
}

// StopPreview stops cycling frames
func (s *Session) StopPreview() {
	s.player.Stop()
	s.log.Debug("preview stopped")
}

// TogglePreview flips playback and returns the new state
func (s *Session) TogglePreview() bool {
	running := s.player.Toggle()
	s.log.Debug("preview toggled", zap.Bool("running", running))
	return running
}

// SetSpeed sets the playback speed input, clamped to the accepted range
func (s *Session) SetSpeed(v int) {
	s.player.SetSpeed(v)
	s.log.Debug("speed changed", zap.Int("speed", s.player.Speed()), zap.Duration("interval", s.player.Interval()))
}

// Ticks delivers playback timer events for the owner loop
func (s *Session) Ticks() <-chan playback.Tick { return s.player.Ticks() }

// HandleTick applies one playback tick
func (s *Session) HandleTick(t playback.Tick) bool { return s.player.Handle(t) }

// Pointer input

// PointerDown paints the cell under raw raster coordinates (x, y)
func (s *Session) PointerDown(x, y int) bool {
	qx, qy := s.engine.Mapper().Quantize(x, y)
	s.dragging = true
	s.lastX, s.lastY = qx, qy
	if !s.engine.Paint(qx, qy) {
		s.cues.PlayReject()
		return false
	}
	return true
}

// PointerDrag continues a stroke from the previous sample to (x, y)
// Without a preceding PointerDown it behaves like a press
func (s *Session) PointerDrag(x, y int) bool {
	qx, qy := s.engine.Mapper().Quantize(x, y)
	if !s.dragging {
		s.dragging = true
		s.lastX, s.lastY = qx, qy
		return s.engine.Paint(qx, qy)
	}
	changed := s.engine.Stroke(s.lastX, s.lastY, qx, qy)
	s.lastX, s.lastY = qx, qy
	return changed
}

// PointerUp ends the current stroke
// Geometry changes end it too, so a later drag starts a fresh stroke
func (s *Session) PointerUp() { s.dragging = false }

// Pick sets the brush color from the pixel under raw raster coordinates
func (s *Session) Pick(x, y int) bool { return s.engine.Pick(x, y) }

// Persistence

// Save writes all frames to path
func (s *Session) Save(path string) error {
	if err := project.Save(path, s.store.Frames()); err != nil {
		s.log.Warn("save failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.dirty = false
	s.log.Info("project saved", zap.String("path", path), zap.Int("frames", s.store.Len()))
	return nil
}

// Load replaces every frame with the content of path
// Open failures leave the session untouched; undecodable entries are skipped
// A document without usable frames leaves one transparent frame
func (s *Session) Load(path string) (project.Result, error) {
	res, err := project.Load(path)
	if err != nil && !errors.Is(err, project.ErrMalformed) {
		s.log.Warn("load failed", zap.String("path", path), zap.Error(err))
		return res, err
	}

	m := s.engine.Mapper()
	if len(res.Frames) > 0 {
		rw, rh := res.Frames[0].Width(), res.Frames[0].Height()
		if m, err = scale.FromRaster(rw, rh, s.detectFactor(res.Frames)); err != nil {
			return res, err
		}
	}
	if err := s.store.Replace(res.Frames); err != nil {
		return res, err
	}
	s.engine.SetMapper(m)
	s.PointerUp()
	s.dirty = false

	s.log.Info("project loaded",
		zap.String("path", path),
		zap.Int("frames", len(res.Frames)),
		zap.Int("skipped", res.Skipped),
		zap.Bool("malformed", res.Malformed),
		zap.Stringer("mapper", m))
	s.onRedraw()
	return res, nil
}

// detectFactor recovers the cell size of loaded frames, which carry no scale
// Factors this session's extent would produce for a valid sprite size are tried
// first, largest uniform one winning; other rasters fall back to any uniform factor
func (s *Session) detectFactor(frames []*raster.Buffer) int {
	rw, rh := frames[0].Width(), frames[0].Height()
	fits := func(f int) bool {
		return scale.Matches(rw, rh, f, s.extent) && checkSize(rw/f, rh/f) == nil
	}
	if f := export.DetectFactorWhere(frames, MinSpriteSize, fits); f > 1 || fits(1) {
		return f
	}
	return export.DetectFactor(frames, MinSpriteSize)
}

// NewProject clears the session back to one transparent frame
// When savePath is set the current project is saved first and a failed save aborts
func (s *Session) NewProject(savePath string) error {
	if savePath != "" {
		if err := s.Save(savePath); err != nil {
			return err
		}
	}
	s.store.Reset()
	s.dirty = false
	s.log.Debug("new project")
	s.onRedraw()
	return nil
}
