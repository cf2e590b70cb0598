package main

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/lixenwraith/vi-sprite/brush"
	"github.com/lixenwraith/vi-sprite/config"
	"github.com/lixenwraith/vi-sprite/editor"
	"github.com/lixenwraith/vi-sprite/logger"
	"github.com/lixenwraith/vi-sprite/playback"
)

const speedStep = 25

// Status levels
const (
	levelInfo = iota
	levelOK
	levelError
)

// App is the terminal front end around one editing session
type App struct {
	log     *zap.Logger
	screen  tcell.Screen
	session *editor.Session
	palette []color.NRGBA
	alpha   uint8

	path string

	// Cursor and viewport, in logical pixels
	cursorX, cursorY int
	viewX, viewY     int

	mouseDown bool

	prompt     promptKind
	input      []rune
	newPending bool

	status      string
	statusLevel int
	showHelp    bool
	quitArmed   bool

	running bool
	redraw  bool
}

func newApp(ctx context.Context, screen tcell.Screen, cfg *config.Config, cues editor.Cues) (*App, error) {
	a := &App{
		log:     logger.L(ctx).Named("tui"),
		screen:  screen,
		palette: defaultPalette(),
		alpha:   uint8(cfg.Brush.Alpha),
		running: true,
		redraw:  true,
	}

	state := brush.State{Color: cfg.BrushColor(), Mirror: cfg.Brush.Mirror}
	s, err := editor.New(ctx, editor.Options{
		Width:    cfg.Canvas.Width,
		Height:   cfg.Canvas.Height,
		Extent:   cfg.Canvas.Extent,
		Speed:    cfg.Playback.Speed,
		Brush:    &state,
		OnRedraw: func() { a.redraw = true },
		Cues:     cues,
	})
	if err != nil {
		return nil, err
	}
	a.session = s

	screen.EnableMouse()
	screen.SetStyle(tcell.StyleDefault)
	a.setStatus("? for help", levelInfo)
	return a, nil
}

// defaultPalette is black, white, gray and seven evenly spaced hues
func defaultPalette() []color.NRGBA {
	p := []color.NRGBA{
		{A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 128, G: 128, B: 128, A: 255},
	}
	for i := 0; i < 7; i++ {
		r, g, b := colorful.Hsv(float64(i)*360/7, 0.85, 0.95).Clamped().RGB255()
		p = append(p, color.NRGBA{R: r, G: g, B: b, A: 255})
	}
	return p
}

func (a *App) run() {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()
	defer a.session.StopPreview()

	a.draw()
	for a.running {
		select {
		case ev := <-events:
			a.handleEvent(ev)
		case tk := <-a.session.Ticks():
			a.session.HandleTick(tk)
		}
		if a.redraw {
			a.draw()
		}
	}
}

func (a *App) setStatus(msg string, level int) {
	a.status = msg
	a.statusLevel = level
	a.redraw = true
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.scrollToCursor()
		a.redraw = true
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyCtrlC {
		a.running = false
		return
	}
	if a.prompt != promptNone {
		a.handlePromptKey(ev)
		return
	}
	a.redraw = true

	if a.showHelp {
		a.showHelp = false
		return
	}

	quit := ev.Key() == tcell.KeyRune && ev.Rune() == 'q'
	if !quit {
		a.quitArmed = false
	}

	switch ev.Key() {
	case tcell.KeyUp:
		a.moveCursor(0, -1)
	case tcell.KeyDown:
		a.moveCursor(0, 1)
	case tcell.KeyLeft:
		a.moveCursor(-1, 0)
	case tcell.KeyRight:
		a.moveCursor(1, 0)
	case tcell.KeyEnter:
		a.paintAtCursor()
	case tcell.KeyEscape:
		a.setStatus("", levelInfo)
	case tcell.KeyRune:
		a.handleRune(ev.Rune())
	}
}

func (a *App) handleRune(r rune) {
	switch r {
	// Navigation
	case 'h':
		a.moveCursor(-1, 0)
	case 'j':
		a.moveCursor(0, 1)
	case 'k':
		a.moveCursor(0, -1)
	case 'l':
		a.moveCursor(1, 0)
	case 'H':
		a.moveCursor(-4, 0)
	case 'J':
		a.moveCursor(0, 4)
	case 'K':
		a.moveCursor(0, -4)
	case 'L':
		a.moveCursor(4, 0)

	// Drawing
	case ' ':
		a.paintAtCursor()
	case 'i':
		rx, ry := a.cellCenter(a.cursorX, a.cursorY)
		if a.session.Pick(rx, ry) {
			a.setStatus("Picked "+config.FormatColor(a.session.State().Color), levelOK)
		}
	case 'e':
		a.setStatus(onOff("Erase", a.session.ToggleErase()), levelOK)
	case 'm':
		a.setStatus(onOff("Mirror", a.session.ToggleMirror()), levelOK)
	case 'c':
		a.beginPrompt(promptColor, config.FormatColor(a.session.State().Color))
	case '1', '2', '3', '4', '5', '6', '7', '8', '9', '0':
		a.selectPalette(r)

	// Frames
	case 'a':
		a.session.AddFrame()
		a.setStatus(fmt.Sprintf("Added frame %d", a.session.CurrentFrame()+1), levelOK)
	case 'd':
		a.session.DeleteFrame()
		a.setStatus("Deleted last frame", levelOK)
	case 'y':
		if a.session.CopyPrevious() {
			a.setStatus("Copied previous frame", levelOK)
		} else {
			a.setStatus("No previous frame", levelError)
		}
	case ']':
		a.session.NextFrame()
	case '[':
		a.session.PrevFrame()
	case 'r':
		a.session.Rotate()
		a.clampCursor()
		a.setStatus("Rotated", levelOK)

	// Preview
	case 'p':
		a.session.TogglePreview()
	case '+', '=':
		a.session.SetSpeed(a.session.Speed() + speedStep)
		a.setStatus(a.speedText(), levelInfo)
	case '-':
		a.session.SetSpeed(a.session.Speed() - speedStep)
		a.setStatus(a.speedText(), levelInfo)

	// Files
	case 's':
		if a.path == "" {
			a.beginPrompt(promptSave, "sprite.json")
		} else {
			a.save(a.path)
		}
	case 'S':
		a.beginPrompt(promptSave, a.path)
	case 'o':
		a.beginPrompt(promptOpen, a.path)
	case 'n':
		if a.session.Dirty() {
			a.beginPrompt(promptNew, "")
		} else {
			a.newProject()
		}
	case 'z':
		w, h := a.session.SpriteSize()
		a.beginPrompt(promptSize, fmt.Sprintf("%dx%d", w, h))

	case '?':
		a.showHelp = true
	case 'q':
		if a.session.Dirty() && !a.quitArmed {
			a.quitArmed = true
			a.setStatus("Unsaved changes, press q again to quit", levelError)
			return
		}
		a.running = false
	}
}

func onOff(name string, on bool) string {
	if on {
		return name + " on"
	}
	return name + " off"
}

func (a *App) speedText() string {
	return fmt.Sprintf("Speed %d (%dms/frame)", a.session.Speed(), playback.IntervalFor(a.session.Speed()).Milliseconds())
}

func (a *App) selectPalette(r rune) {
	i := int(r - '1')
	if r == '0' {
		i = 9
	}
	if i < 0 || i >= len(a.palette) {
		return
	}
	c := a.palette[i]
	c.A = a.alpha
	a.session.SetColor(c)
	a.session.SetErase(false)
	a.setStatus("Color "+config.FormatColor(c), levelOK)
}

// cellCenter returns the raster point at the middle of logical cell (lx, ly)
func (a *App) cellCenter(lx, ly int) (int, int) {
	m := a.session.Mapper()
	rx, ry := m.ToRaster(lx, ly)
	half := m.Factor() / 2
	return rx + half, ry + half
}

func (a *App) paintAtCursor() {
	rx, ry := a.cellCenter(a.cursorX, a.cursorY)
	a.session.PointerDown(rx, ry)
	a.session.PointerUp()
}

func (a *App) moveCursor(dx, dy int) {
	a.cursorX += dx
	a.cursorY += dy
	a.clampCursor()
}

func (a *App) clampCursor() {
	w, h := a.session.SpriteSize()
	a.cursorX = min(max(a.cursorX, 0), w-1)
	a.cursorY = min(max(a.cursorY, 0), h-1)
	a.scrollToCursor()
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	lx, ly, inside := a.screenToLogical(x, y)
	btn := ev.Buttons()

	switch {
	case btn&tcell.ButtonPrimary != 0:
		if !inside && !a.mouseDown {
			return
		}
		rx, ry := a.cellCenter(lx, ly)
		if a.mouseDown {
			a.session.PointerDrag(rx, ry)
		} else {
			a.mouseDown = true
			a.session.PointerDown(rx, ry)
		}
		a.cursorX, a.cursorY = lx, ly
		a.clampCursor()
		a.redraw = true
	case btn&tcell.ButtonSecondary != 0:
		if !inside {
			return
		}
		rx, ry := a.cellCenter(lx, ly)
		if a.session.Pick(rx, ry) {
			a.setStatus("Picked "+config.FormatColor(a.session.State().Color), levelOK)
		}
	default:
		if a.mouseDown {
			a.mouseDown = false
			a.session.PointerUp()
		}
	}
}

func (a *App) save(path string) bool {
	if err := a.session.Save(path); err != nil {
		a.setStatus("Save failed: "+err.Error(), levelError)
		return false
	}
	a.path = path
	a.setStatus("Saved "+filepath.Base(path), levelOK)
	return true
}

func (a *App) open(path string) {
	res, err := a.session.Load(path)
	if err != nil {
		a.setStatus("Open failed: "+err.Error(), levelError)
		return
	}
	a.path = path
	a.clampCursor()

	msg := fmt.Sprintf("Loaded %d frame(s) from %s", len(res.Frames), filepath.Base(path))
	switch {
	case res.Malformed:
		a.setStatus(msg+", document was malformed", levelError)
	case res.Skipped > 0:
		a.setStatus(fmt.Sprintf("%s, skipped %d", msg, res.Skipped), levelError)
	default:
		a.setStatus(msg, levelOK)
	}
	a.log.Debug("opened", zap.String("path", path), zap.Int("entries", res.Entries))
}

func (a *App) newProject() {
	if err := a.session.NewProject(""); err != nil {
		a.setStatus(err.Error(), levelError)
		return
	}
	a.path = ""
	a.clampCursor()
	a.setStatus("New project", levelOK)
}
