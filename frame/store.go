// Package frame owns the ordered animation frames and the active-frame pointer
package frame

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/vi-sprite/raster"
)

// ErrSizeMismatch is returned when replacement frames do not share one size
var ErrSizeMismatch = errors.New("frame size mismatch")

// Store is the ordered frame sequence of one sprite
// It always holds at least one frame and current stays in [0, Len())
// Not safe for concurrent use; owned by the control goroutine
type Store struct {
	frames  []*raster.Buffer
	current int
	width   int
	height  int
}

// New creates a store with one transparent frame of the given raster size
func New(width, height int) *Store {
	s := &Store{width: width, height: height}
	s.frames = []*raster.Buffer{raster.New(width, height)}
	return s
}

// Len returns the number of frames
func (s *Store) Len() int { return len(s.frames) }

// CurrentIndex returns the active frame index
func (s *Store) CurrentIndex() int { return s.current }

// Current returns the active frame buffer
func (s *Store) Current() *raster.Buffer { return s.frames[s.current] }

// Frame returns the buffer at index i, nil when out of range
func (s *Store) Frame(i int) *raster.Buffer {
	if i < 0 || i >= len(s.frames) {
		return nil
	}
	return s.frames[i]
}

// Frames returns the frame buffers in order
// The slice is a copy; the buffers are shared
func (s *Store) Frames() []*raster.Buffer {
	out := make([]*raster.Buffer, len(s.frames))
	copy(out, s.frames)
	return out
}

// Size returns the raster size shared by every frame
func (s *Store) Size() (int, int) { return s.width, s.height }

// AddFrame appends a transparent frame and makes it current
func (s *Store) AddFrame() {
	s.frames = append(s.frames, raster.New(s.width, s.height))
	s.current = len(s.frames) - 1
}

// DeleteFrame removes the last frame
// Deleting the sole frame resets the store to one fresh transparent frame
func (s *Store) DeleteFrame() {
	if len(s.frames) <= 1 {
		s.Reset()
		return
	}
	last := len(s.frames) - 1
	s.frames[last] = nil
	s.frames = s.frames[:last]
	if s.current > last-1 {
		s.current = last - 1
	}
}

// Reset drops every frame and installs one transparent frame
func (s *Store) Reset() {
	clear(s.frames)
	s.frames = append(s.frames[:0], raster.New(s.width, s.height))
	s.current = 0
}

// SetCurrent selects frame i; out-of-range indices are ignored
func (s *Store) SetCurrent(i int) bool {
	if i < 0 || i >= len(s.frames) {
		return false
	}
	s.current = i
	return true
}

// Next selects the following frame without wrapping
func (s *Store) Next() bool { return s.SetCurrent(s.current + 1) }

// Prev selects the preceding frame without wrapping
func (s *Store) Prev() bool { return s.SetCurrent(s.current - 1) }

// Advance moves to the next frame, wrapping to 0 after the last
func (s *Store) Advance() int {
	s.current = (s.current + 1) % len(s.frames)
	return s.current
}

// CopyPrevious overwrites the current frame with a copy of the one before it
// No-op on frame 0
func (s *Store) CopyPrevious() bool {
	if s.current == 0 {
		return false
	}
	s.frames[s.current] = s.frames[s.current-1].Clone()
	return true
}

// Resize replaces every frame with a transparent buffer of the new size
// Pixel content is discarded, frame count and current index are kept
func (s *Store) Resize(width, height int) {
	s.width, s.height = width, height
	for i := range s.frames {
		s.frames[i] = raster.New(width, height)
	}
}

// RotateAll90 turns every frame 90° clockwise and swaps the stored size
func (s *Store) RotateAll90() {
	for i, f := range s.frames {
		s.frames[i] = f.Rotate90()
	}
	s.width, s.height = s.height, s.width
}

// Replace installs a new frame sequence, adopting its size
// An empty sequence leaves one transparent frame of the current size
// Buffers of differing sizes are rejected without touching the store
func (s *Store) Replace(frames []*raster.Buffer) error {
	if len(frames) == 0 {
		s.Reset()
		return nil
	}
	for i, f := range frames {
		if f == nil {
			return fmt.Errorf("%w: frame %d is nil", ErrSizeMismatch, i)
		}
	}
	w, h := frames[0].Width(), frames[0].Height()
	for i, f := range frames {
		if f.Width() != w || f.Height() != h {
			return fmt.Errorf("%w: frame %d is %dx%d, want %dx%d", ErrSizeMismatch, i, f.Width(), f.Height(), w, h)
		}
	}
	s.frames = make([]*raster.Buffer, len(frames))
	copy(s.frames, frames)
	s.width, s.height = w, h
	s.current = 0
	return nil
}
