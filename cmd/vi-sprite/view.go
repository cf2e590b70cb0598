package main

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/vi-sprite/config"
)

// Screen layout: a one-cell border around the canvas, two status rows below
// Each logical pixel is two columns wide so it reads roughly square
const (
	canvasLeft = 1
	canvasTop  = 1
	cellW      = 2
	statusRows = 2
)

var (
	checkerLight = colorful.Color{R: 0.80, G: 0.80, B: 0.80}
	checkerDark  = colorful.Color{R: 0.60, G: 0.60, B: 0.60}

	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleOK     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleFlag   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	stylePrompt = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

var helpLines = []string{
	"hjkl/arrows  move (HJKL x4)",
	"space/enter  paint    i  pick color",
	"e  erase mode         m  mirror mode",
	"1-0  palette          c  color prompt",
	"a  add frame          d  delete last frame",
	"y  copy previous      [ ]  prev/next frame",
	"r  rotate 90°         z  resize sprite",
	"p  play/stop          + -  speed",
	"s  save   S  save as  o  open   n  new",
	"mouse: left paints, right picks",
	"q  quit",
}

// checker returns the transparency backdrop for logical cell (lx, ly)
func checker(lx, ly int) colorful.Color {
	if (lx+ly)%2 == 0 {
		return checkerLight
	}
	return checkerDark
}

// composite blends c over the backdrop by its alpha
func composite(c color.NRGBA, bg colorful.Color) colorful.Color {
	if c.A == 255 {
		return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	}
	fg := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return bg.BlendRgb(fg, float64(c.A)/255)
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// contrast picks black or white text over c
func contrast(c colorful.Color) tcell.Color {
	l, _, _ := c.Lab()
	if l > 0.6 {
		return tcell.ColorBlack
	}
	return tcell.ColorWhite
}

// viewport returns the visible canvas size in logical pixels
func (a *App) viewport() (int, int) {
	sw, sh := a.screen.Size()
	w, h := a.session.SpriteSize()
	cols := min(w, (sw-2*canvasLeft)/cellW)
	rows := min(h, sh-2*canvasTop-statusRows)
	return max(cols, 0), max(rows, 0)
}

// screenToLogical maps a terminal cell to logical pixel coordinates
// inside reports whether the cell lies on the visible canvas
func (a *App) screenToLogical(x, y int) (lx, ly int, inside bool) {
	cols, rows := a.viewport()
	dx, dy := x-canvasLeft, y-canvasTop
	lx = a.viewX + floorDiv(dx, cellW)
	ly = a.viewY + dy
	inside = dx >= 0 && dy >= 0 && dx < cols*cellW && dy < rows
	return lx, ly, inside
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// scrollToCursor keeps the cursor cell inside the viewport
func (a *App) scrollToCursor() {
	cols, rows := a.viewport()
	w, h := a.session.SpriteSize()
	if cols > 0 {
		if a.cursorX < a.viewX {
			a.viewX = a.cursorX
		} else if a.cursorX >= a.viewX+cols {
			a.viewX = a.cursorX - cols + 1
		}
	}
	if rows > 0 {
		if a.cursorY < a.viewY {
			a.viewY = a.cursorY
		} else if a.cursorY >= a.viewY+rows {
			a.viewY = a.cursorY - rows + 1
		}
	}
	a.viewX = min(max(a.viewX, 0), max(w-cols, 0))
	a.viewY = min(max(a.viewY, 0), max(h-rows, 0))
}

func (a *App) draw() {
	a.redraw = false
	s := a.screen
	s.Clear()

	cols, rows := a.viewport()
	drawBox(s, 0, 0, cols*cellW+2*canvasLeft-1, rows+2*canvasTop-1, styleBorder)
	a.drawCanvas(cols, rows)
	a.drawStatus(rows + 2*canvasTop)
	if a.showHelp {
		a.drawHelp()
	}
	s.Show()
}

func (a *App) drawCanvas(cols, rows int) {
	buf := a.session.CurrentBuffer()
	m := a.session.Mapper()
	showCursor := !a.session.Previewing()

	for vy := 0; vy < rows; vy++ {
		for vx := 0; vx < cols; vx++ {
			lx, ly := a.viewX+vx, a.viewY+vy
			rx, ry := m.ToRaster(lx, ly)
			c := composite(buf.At(rx, ry), checker(lx, ly))
			style := tcell.StyleDefault.Background(toTcell(c))

			left, right := ' ', ' '
			if showCursor && lx == a.cursorX && ly == a.cursorY {
				left, right = '[', ']'
				style = style.Foreground(contrast(c))
			}
			sx, sy := canvasLeft+vx*cellW, canvasTop+vy
			a.screen.SetContent(sx, sy, left, nil, style)
			a.screen.SetContent(sx+1, sy, right, nil, style)
		}
	}
}

func (a *App) drawStatus(y int) {
	s := a.screen
	st := a.session.State()
	w, h := a.session.SpriteSize()

	name := "untitled"
	if a.path != "" {
		name = filepath.Base(a.path)
	}
	if a.session.Dirty() {
		name += "*"
	}

	x := drawText(s, 0, y, styleText, fmt.Sprintf(" %s  frame %d/%d  %dx%d @%d  speed %d ",
		name, a.session.CurrentFrame()+1, a.session.FrameCount(), w, h, a.session.Mapper().Factor(), a.session.Speed()))
	if st.Mirror {
		x = drawText(s, x, y, styleFlag, "MIRROR") + 1
	}
	if st.Erase {
		x = drawText(s, x, y, styleFlag, "ERASE") + 1
	}
	if a.session.Previewing() {
		x = drawText(s, x, y, styleFlag, "PLAY") + 1
	}

	swatch := composite(st.Color, checkerLight)
	sw := tcell.StyleDefault.Background(toTcell(swatch))
	s.SetContent(x, y, ' ', nil, sw)
	s.SetContent(x+1, y, ' ', nil, sw)
	drawText(s, x+3, y, styleDim, fmt.Sprintf("%s a=%d", config.FormatColor(st.Color), st.Color.A))

	y++
	if a.prompt != promptNone {
		x = drawText(s, 0, y, stylePrompt, " "+promptLabels[a.prompt]+": ")
		x = drawText(s, x, y, styleText, string(a.input))
		s.SetContent(x, y, ' ', nil, styleText.Reverse(true))
		return
	}

	style := styleDim
	switch a.statusLevel {
	case levelOK:
		style = styleOK
	case levelError:
		style = styleError
	}
	drawText(s, 0, y, style, " "+a.status)
}

func (a *App) drawHelp() {
	sw, sh := a.screen.Size()
	width := 0
	for _, line := range helpLines {
		width = max(width, runewidth.StringWidth(line))
	}
	bw, bh := width+4, len(helpLines)+2
	x0, y0 := max((sw-bw)/2, 0), max((sh-bh)/2, 0)

	for y := y0; y < y0+bh; y++ {
		for x := x0; x < x0+bw; x++ {
			a.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
	drawBox(a.screen, x0, y0, x0+bw-1, y0+bh-1, styleText)
	for i, line := range helpLines {
		drawText(a.screen, x0+2, y0+1+i, styleText, line)
	}
}

// drawText writes s at (x, y) and returns the column after it
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += max(runewidth.RuneWidth(r), 1)
	}
	return x
}

func drawBox(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style) {
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1 + 1; x < x2; x++ {
		s.SetContent(x, y1, '─', nil, style)
		s.SetContent(x, y2, '─', nil, style)
	}
	for y := y1 + 1; y < y2; y++ {
		s.SetContent(x1, y, '│', nil, style)
		s.SetContent(x2, y, '│', nil, style)
	}
	s.SetContent(x1, y1, '┌', nil, style)
	s.SetContent(x2, y1, '┐', nil, style)
	s.SetContent(x1, y2, '└', nil, style)
	s.SetContent(x2, y2, '┘', nil, style)
}
