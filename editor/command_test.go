package editor

import (
	"errors"
	"image/color"
	"path/filepath"
	"testing"
)

func TestExecuteDispatch(t *testing.T) {
	h := newHarness(t, Options{})
	s := h.s
	path := filepath.Join(t.TempDir(), "cmd.json")

	steps := []struct {
		cmd   Command
		check func() bool
	}{
		{Command{Op: OpSetColor, Color: red}, func() bool { return s.State().Color == red }},
		{Command{Op: OpSetMirror, On: true}, func() bool { return s.State().Mirror }},
		{Command{Op: OpToggleMirror}, func() bool { return !s.State().Mirror }},
		{Command{Op: OpPointerDown, X: 3, Y: 3}, func() bool { return s.CurrentBuffer().At(0, 0) == red }},
		{Command{Op: OpPointerDrag, X: 40, Y: 3}, func() bool { return s.CurrentBuffer().At(32, 0) == red }},
		{Command{Op: OpPointerUp}, func() bool { return !s.dragging }},
		{Command{Op: OpSetColor, Color: color.NRGBA{}}, func() bool { return s.State().Color == color.NRGBA{} }},
		{Command{Op: OpPick, X: 1, Y: 1}, func() bool { return s.State().Color == red }},
		{Command{Op: OpAddFrame}, func() bool { return s.FrameCount() == 2 && s.CurrentFrame() == 1 }},
		{Command{Op: OpCopyPrevious}, func() bool { return s.CurrentBuffer().At(0, 0) == red }},
		{Command{Op: OpSetErase, On: true}, func() bool { return s.State().Erase }},
		{Command{Op: OpPointerDown, X: 0, Y: 0}, func() bool { return s.CurrentBuffer().At(0, 0).A == 0 }},
		{Command{Op: OpToggleErase}, func() bool { return !s.State().Erase }},
		{Command{Op: OpSelectFrame, Index: 0}, func() bool { return s.CurrentFrame() == 0 }},
		{Command{Op: OpSelectFrame, Index: 9}, func() bool { return s.CurrentFrame() == 0 }},
		{Command{Op: OpNextFrame}, func() bool { return s.CurrentFrame() == 1 }},
		{Command{Op: OpPrevFrame}, func() bool { return s.CurrentFrame() == 0 }},
		{Command{Op: OpSetSpeed, Index: 500}, func() bool { return s.Speed() == 500 }},
		{Command{Op: OpStartPreview}, func() bool { return s.Previewing() }},
		{Command{Op: OpTogglePreview}, func() bool { return !s.Previewing() }},
		{Command{Op: OpStopPreview}, func() bool { return !s.Previewing() }},
		{Command{Op: OpSave, Path: path}, func() bool { return !s.Dirty() }},
		{Command{Op: OpDeleteFrame}, func() bool { return s.FrameCount() == 1 }},
		{Command{Op: OpLoad, Path: path}, func() bool { return s.FrameCount() == 2 }},
		{Command{Op: OpSetSize, X: 16, Y: 8}, func() bool {
			w, h := s.SpriteSize()
			return w == 16 && h == 8
		}},
		{Command{Op: OpRotate}, func() bool {
			w, h := s.SpriteSize()
			return w == 8 && h == 16
		}},
		{Command{Op: OpNewProject}, func() bool { return s.FrameCount() == 1 }},
		{Command{Op: OpNone}, func() bool { return true }},
	}

	for i, step := range steps {
		if err := s.Execute(step.cmd); err != nil {
			t.Fatalf("step %d (%v): %v", i, step.cmd.Op, err)
		}
		if !step.check() {
			t.Errorf("step %d (%v): check failed", i, step.cmd.Op)
		}
	}
}

func TestExecuteErrors(t *testing.T) {
	h := newHarness(t, Options{})

	if err := h.s.Execute(Command{Op: Op(999)}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
	if err := h.s.Execute(Command{Op: OpSetSize, X: 2, Y: 2}); !errors.Is(err, ErrSizeRange) {
		t.Errorf("err = %v, want ErrSizeRange", err)
	}
	if err := h.s.Execute(Command{Op: OpLoad, Path: filepath.Join(t.TempDir(), "x")}); err == nil {
		t.Error("load of a missing file should fail")
	}
}

func TestOpString(t *testing.T) {
	if OpRotate.String() != "rotate" {
		t.Errorf("OpRotate = %q", OpRotate.String())
	}
	if Op(999).String() != "op(999)" {
		t.Errorf("unknown op = %q", Op(999).String())
	}
	for op := OpNone; op <= OpPick; op++ {
		if _, ok := opNames[op]; !ok {
			t.Errorf("op %d has no name", int(op))
		}
	}
}
