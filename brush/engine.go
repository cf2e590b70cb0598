// Package brush applies cell-sized paint and erase edits to the active frame
package brush

import (
	"image"
	"image/color"

	"github.com/lixenwraith/vi-sprite/frame"
	"github.com/lixenwraith/vi-sprite/raster"
	"github.com/lixenwraith/vi-sprite/scale"
)

// DefaultColor is the brush color of a fresh session
var DefaultColor = color.NRGBA{A: 255}

// State is the editing mode shared by all frames of a session
type State struct {
	Color  color.NRGBA
	Erase  bool
	Mirror bool
}

// DefaultState returns opaque black with erase and mirror off
func DefaultState() State {
	return State{Color: DefaultColor}
}

// Engine edits the store's current frame through a scale mapper
// Not safe for concurrent use
type Engine struct {
	State State

	store    *frame.Store
	mapper   scale.Mapper
	onChange func()
	cells    [4]image.Rectangle
}

// NewEngine binds an engine to a store; onChange runs after every applied edit
func NewEngine(store *frame.Store, mapper scale.Mapper, onChange func()) *Engine {
	if onChange == nil {
		onChange = func() {}
	}
	return &Engine{
		State:    DefaultState(),
		store:    store,
		mapper:   mapper,
		onChange: onChange,
	}
}

// Mapper returns the active scale mapper
func (e *Engine) Mapper() scale.Mapper { return e.mapper }

// SetMapper installs the mapper after a resize, rotation or load
func (e *Engine) SetMapper(m scale.Mapper) { e.mapper = m }

// Paint fills the cell at raster (x, y) with the current color
// In erase mode it clears instead; out-of-bounds cells are ignored
func (e *Engine) Paint(x, y int) bool {
	if e.State.Erase {
		return e.Erase(x, y)
	}
	return e.apply(x, y, e.State.Color)
}

// Erase clears the cell at raster (x, y) to transparent
// Mirror mode applies to erasing the same way it applies to painting
func (e *Engine) Erase(x, y int) bool {
	return e.apply(x, y, raster.Transparent)
}

// Stroke paints every cell on the line between two raw input samples
// Intermediate cells are visited in logical space so fast drags leave no gaps
func (e *Engine) Stroke(x0, y0, x1, y1 int) bool {
	lx0, ly0 := e.mapper.ToLogical(x0, y0)
	lx1, ly1 := e.mapper.ToLogical(x1, y1)

	changed := false
	line(lx0, ly0, lx1, ly1, func(lx, ly int) {
		rx, ry := e.mapper.ToRaster(lx, ly)
		if e.Paint(rx, ry) {
			changed = true
		}
	})
	return changed
}

// Pick copies the pixel color at raster (x, y) into the brush
func (e *Engine) Pick(x, y int) bool {
	buf := e.store.Current()
	if !image.Pt(x, y).In(buf.Bounds()) {
		return false
	}
	e.State.Color = buf.At(x, y)
	return true
}

// InBounds reports whether the whole cell at (x, y) lies inside the raster
func (e *Engine) InBounds(x, y int) bool {
	w, h := e.store.Size()
	s := e.mapper.Factor()
	return s > 0 && x >= 0 && y >= 0 && x+s <= w && y+s <= h
}

func (e *Engine) apply(x, y int, c color.NRGBA) bool {
	if !e.InBounds(x, y) {
		return false
	}

	buf := e.store.Current()
	cells := e.targets(x, y)
	for _, r := range cells {
		// Mirror cells are clipped rather than trusted
		buf.FillRect(r, c)
	}
	e.onChange()
	return true
}

// targets returns the primary cell plus its mirrors when mirror mode is on
func (e *Engine) targets(x, y int) []image.Rectangle {
	s := e.mapper.Factor()
	e.cells[0] = e.mapper.Cell(x, y)
	if !e.State.Mirror {
		return e.cells[:1]
	}
	w, h := e.store.Size()
	mx, my := w-x-s, h-y-s
	e.cells[1] = e.mapper.Cell(mx, y)
	e.cells[2] = e.mapper.Cell(x, my)
	e.cells[3] = e.mapper.Cell(mx, my)
	return e.cells[:]
}

// line walks the integer points from (x0, y0) to (x1, y1) inclusive
func line(x0, y0, x1, y1 int, visit func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		visit(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
