package editor

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
)

// ErrUnknownCommand is returned by Execute for an unrecognized Op
var ErrUnknownCommand = errors.New("unknown command")

// Op identifies one collaborator-facing operation
type Op int

const (
	OpNone Op = iota
	OpSetColor
	OpSetErase
	OpSetMirror
	OpToggleErase
	OpToggleMirror
	OpSetSize
	OpAddFrame
	OpDeleteFrame
	OpCopyPrevious
	OpSelectFrame
	OpNextFrame
	OpPrevFrame
	OpRotate
	OpStartPreview
	OpStopPreview
	OpTogglePreview
	OpSetSpeed
	OpSave
	OpLoad
	OpNewProject
	OpPointerDown
	OpPointerDrag
	OpPointerUp
	OpPick
)

var opNames = map[Op]string{
	OpNone:          "none",
	OpSetColor:      "set-color",
	OpSetErase:      "set-erase",
	OpSetMirror:     "set-mirror",
	OpToggleErase:   "toggle-erase",
	OpToggleMirror:  "toggle-mirror",
	OpSetSize:       "set-size",
	OpAddFrame:      "add-frame",
	OpDeleteFrame:   "delete-frame",
	OpCopyPrevious:  "copy-previous",
	OpSelectFrame:   "select-frame",
	OpNextFrame:     "next-frame",
	OpPrevFrame:     "prev-frame",
	OpRotate:        "rotate",
	OpStartPreview:  "start-preview",
	OpStopPreview:   "stop-preview",
	OpTogglePreview: "toggle-preview",
	OpSetSpeed:      "set-speed",
	OpSave:          "save",
	OpLoad:          "load",
	OpNewProject:    "new-project",
	OpPointerDown:   "pointer-down",
	OpPointerDrag:   "pointer-drag",
	OpPointerUp:     "pointer-up",
	OpPick:          "pick",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one operation plus the arguments it uses
// Unused fields are ignored
type Command struct {
	Op    Op
	Color color.NRGBA
	On    bool
	X, Y  int // pointer position, or width and height for OpSetSize
	Index int // frame index, or speed for OpSetSpeed
	Path  string
}

// Execute dispatches a command to the matching session method
// Operations that are defined no-ops for bad input return nil
func (s *Session) Execute(cmd Command) error {
	switch cmd.Op {
	case OpNone:
	case OpSetColor:
		s.SetColor(cmd.Color)
	case OpSetErase:
		s.SetErase(cmd.On)
	case OpSetMirror:
		s.SetMirror(cmd.On)
	case OpToggleErase:
		s.ToggleErase()
	case OpToggleMirror:
		s.ToggleMirror()
	case OpSetSize:
		return s.SetSpriteSize(cmd.X, cmd.Y)
	case OpAddFrame:
		s.AddFrame()
	case OpDeleteFrame:
		s.DeleteFrame()
	case OpCopyPrevious:
		s.CopyPrevious()
	case OpSelectFrame:
		s.SelectFrame(cmd.Index)
	case OpNextFrame:
		s.NextFrame()
	case OpPrevFrame:
		s.PrevFrame()
	case OpRotate:
		s.Rotate()
	case OpStartPreview:
		s.StartPreview()
	case OpStopPreview:
		s.StopPreview()
	case OpTogglePreview:
		s.TogglePreview()
	case OpSetSpeed:
		s.SetSpeed(cmd.Index)
	case OpSave:
		return s.Save(cmd.Path)
	case OpLoad:
		_, err := s.Load(cmd.Path)
		return err
	case OpNewProject:
		return s.NewProject(cmd.Path)
	case OpPointerDown:
		s.PointerDown(cmd.X, cmd.Y)
	case OpPointerDrag:
		s.PointerDrag(cmd.X, cmd.Y)
	case OpPointerUp:
		s.PointerUp()
	case OpPick:
		s.Pick(cmd.X, cmd.Y)
	default:
		return errors.Wrapf(ErrUnknownCommand, "%v", cmd.Op)
	}
	return nil
}
