package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-sprite/config"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSave
	promptOpen
	promptSize
	promptColor
	promptNew
)

var promptLabels = map[promptKind]string{
	promptSave:  "Save as",
	promptOpen:  "Open",
	promptSize:  "Size (WxH)",
	promptColor: "Color (#rrggbb[/alpha])",
	promptNew:   "Save changes first? (y/n)",
}

func (a *App) beginPrompt(kind promptKind, initial string) {
	a.prompt = kind
	a.input = []rune(initial)
	a.redraw = true
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	a.redraw = true

	if a.prompt == promptNew {
		a.handleNewConfirm(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		a.prompt = promptNone
		a.newPending = false
		a.setStatus("Cancelled", levelInfo)
	case tcell.KeyEnter:
		a.submitPrompt()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.input) > 0 {
			a.input = a.input[:len(a.input)-1]
		}
	case tcell.KeyCtrlU:
		a.input = a.input[:0]
	case tcell.KeyRune:
		a.input = append(a.input, ev.Rune())
	}
}

func (a *App) handleNewConfirm(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape {
		a.prompt = promptNone
		a.setStatus("Cancelled", levelInfo)
		return
	}
	if ev.Key() != tcell.KeyRune {
		return
	}
	switch ev.Rune() {
	case 'y', 'Y':
		a.prompt = promptNone
		if a.path == "" {
			a.newPending = true
			a.beginPrompt(promptSave, "sprite.json")
			return
		}
		if a.save(a.path) {
			a.newProject()
		}
	case 'n', 'N':
		a.prompt = promptNone
		a.newProject()
	}
}

func (a *App) submitPrompt() {
	text := strings.TrimSpace(string(a.input))
	kind := a.prompt
	a.prompt = promptNone
	a.input = a.input[:0]

	switch kind {
	case promptSave:
		pending := a.newPending
		a.newPending = false
		if text == "" {
			a.setStatus("No file name", levelError)
			return
		}
		if a.save(text) && pending {
			a.newProject()
		}
	case promptOpen:
		if text == "" {
			a.setStatus("No file name", levelError)
			return
		}
		a.open(text)
	case promptSize:
		w, h, err := parseSize(text)
		if err != nil {
			a.setStatus(err.Error(), levelError)
			return
		}
		if err := a.session.SetSpriteSize(w, h); err != nil {
			a.setStatus(err.Error(), levelError)
			return
		}
		a.clampCursor()
		a.setStatus(fmt.Sprintf("Sprite is now %dx%d", w, h), levelOK)
	case promptColor:
		c, err := parseColorInput(text, int(a.alpha))
		if err != nil {
			a.setStatus(err.Error(), levelError)
			return
		}
		a.alpha = c.A
		a.session.SetColor(c)
		a.session.SetErase(false)
		a.setStatus("Color "+config.FormatColor(c), levelOK)
	}
}

// parseSize accepts "W", "WxH" or "W H"
func parseSize(s string) (int, int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	ws, hs, found := strings.Cut(s, "x")
	if !found {
		ws, hs, found = strings.Cut(s, " ")
	}
	w, err := strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("bad width %q", ws)
	}
	if !found {
		return w, w, nil
	}
	h, err := strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("bad height %q", hs)
	}
	return w, h, nil
}

// parseColorInput accepts "#rrggbb" or "rrggbb" with an optional "/alpha" suffix
func parseColorInput(s string, alpha int) (c color.NRGBA, err error) {
	hex, as, found := strings.Cut(strings.TrimSpace(s), "/")
	if found {
		alpha, err = strconv.Atoi(strings.TrimSpace(as))
		if err != nil || alpha < 0 || alpha > 255 {
			return c, fmt.Errorf("bad alpha %q", as)
		}
	}
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return config.ParseColor(hex, alpha)
}
