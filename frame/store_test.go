package frame

import (
	"errors"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/lixenwraith/vi-sprite/raster"
)

func checkInvariants(t *testing.T, s *Store) {
	t.Helper()
	if s.Len() < 1 {
		t.Fatalf("Len() = %d, store must never be empty", s.Len())
	}
	if s.CurrentIndex() < 0 || s.CurrentIndex() >= s.Len() {
		t.Fatalf("CurrentIndex() = %d out of [0,%d)", s.CurrentIndex(), s.Len())
	}
	w, h := s.Size()
	for i, f := range s.Frames() {
		if f.Width() != w || f.Height() != h {
			t.Fatalf("frame %d is %dx%d, store size %dx%d", i, f.Width(), f.Height(), w, h)
		}
	}
}

func TestNewStore(t *testing.T) {
	s := New(512, 512)
	checkInvariants(t, s)
	if s.Len() != 1 || s.CurrentIndex() != 0 {
		t.Errorf("new store: len=%d current=%d", s.Len(), s.CurrentIndex())
	}
	if !s.Current().IsTransparent() {
		t.Error("initial frame should be transparent")
	}
}

func TestAddFrameSelectsNew(t *testing.T) {
	s := New(8, 8)
	s.AddFrame()
	s.AddFrame()
	if s.Len() != 3 || s.CurrentIndex() != 2 {
		t.Errorf("len=%d current=%d, want 3/2", s.Len(), s.CurrentIndex())
	}
	checkInvariants(t, s)
}

func TestDeleteFrameClampsCurrent(t *testing.T) {
	s := New(8, 8)
	s.AddFrame()
	s.AddFrame()

	s.DeleteFrame()
	if s.Len() != 2 || s.CurrentIndex() != 1 {
		t.Errorf("len=%d current=%d, want 2/1", s.Len(), s.CurrentIndex())
	}

	s.SetCurrent(0)
	s.DeleteFrame()
	if s.Len() != 1 || s.CurrentIndex() != 0 {
		t.Errorf("len=%d current=%d, want 1/0", s.Len(), s.CurrentIndex())
	}
}

func TestDeleteSoleFrameResets(t *testing.T) {
	s := New(8, 8)
	s.Current().Set(1, 1, color.NRGBA{R: 255, A: 255})

	s.DeleteFrame()
	checkInvariants(t, s)
	if s.Len() != 1 || s.CurrentIndex() != 0 {
		t.Errorf("len=%d current=%d", s.Len(), s.CurrentIndex())
	}
	if !s.Current().IsTransparent() {
		t.Error("sole frame should be reset to transparent")
	}

	for range 5 {
		s.DeleteFrame()
	}
	checkInvariants(t, s)
}

func TestSetCurrentGuarded(t *testing.T) {
	s := New(8, 8)
	s.AddFrame()
	s.AddFrame()

	for _, i := range []int{-1, 3, 100} {
		if s.SetCurrent(i) {
			t.Errorf("SetCurrent(%d) should be rejected", i)
		}
		if s.CurrentIndex() != 2 {
			t.Errorf("rejected SetCurrent(%d) moved current to %d", i, s.CurrentIndex())
		}
	}
	if !s.SetCurrent(1) || s.CurrentIndex() != 1 {
		t.Error("SetCurrent(1) should succeed")
	}
}

func TestNextPrevDoNotWrap(t *testing.T) {
	s := New(8, 8)
	s.AddFrame()
	s.SetCurrent(0)

	if s.Prev() {
		t.Error("Prev at 0 should be a no-op")
	}
	if !s.Next() || s.CurrentIndex() != 1 {
		t.Error("Next should move to 1")
	}
	if s.Next() {
		t.Error("Next at last frame should be a no-op")
	}
}

func TestAdvanceWraps(t *testing.T) {
	s := New(8, 8)
	s.AddFrame()
	s.AddFrame()

	got := []int{s.Advance(), s.Advance(), s.Advance()}
	want := []int{0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Advance #%d = %d, want %d", i, got[i], want[i])
		}
	}

	single := New(8, 8)
	if single.Advance() != 0 {
		t.Error("single-frame advance should stay at 0")
	}
}

func TestCopyPrevious(t *testing.T) {
	s := New(8, 8)
	red := color.NRGBA{R: 255, A: 255}
	s.Current().Set(2, 3, red)

	if s.CopyPrevious() {
		t.Error("CopyPrevious on frame 0 should be a no-op")
	}

	s.AddFrame()
	if !s.CopyPrevious() {
		t.Fatal("CopyPrevious on frame 1 should copy")
	}
	if got := s.Current().At(2, 3); got != red {
		t.Errorf("copied pixel = %v", got)
	}

	// Copy must be deep
	s.Current().Set(2, 3, raster.Transparent)
	if got := s.Frame(0).At(2, 3); got != red {
		t.Error("editing the copy changed the previous frame")
	}
}

func TestResizeDiscardsContent(t *testing.T) {
	s := New(8, 8)
	s.Current().Set(0, 0, color.NRGBA{A: 255})
	s.AddFrame()
	s.AddFrame()
	s.SetCurrent(1)

	s.Resize(16, 4)
	checkInvariants(t, s)
	if w, h := s.Size(); w != 16 || h != 4 {
		t.Errorf("Size = %dx%d", w, h)
	}
	if s.Len() != 3 || s.CurrentIndex() != 1 {
		t.Errorf("len=%d current=%d, want 3/1", s.Len(), s.CurrentIndex())
	}
	for i, f := range s.Frames() {
		if !f.IsTransparent() {
			t.Errorf("frame %d kept content after resize", i)
		}
	}
}

func TestRotateAllSwapsSize(t *testing.T) {
	s := New(4, 2)
	s.Current().Set(3, 0, color.NRGBA{G: 255, A: 255})
	s.AddFrame()

	s.RotateAll90()
	checkInvariants(t, s)
	if w, h := s.Size(); w != 2 || h != 4 {
		t.Errorf("Size after rotate = %dx%d, want 2x4", w, h)
	}
	// (3,0) clockwise in a 4x2 buffer lands at (h-1-0, 3) = (1,3)
	if got := s.Frame(0).At(1, 3); got.G != 255 {
		t.Errorf("rotated pixel missing, got %v", got)
	}

	s.RotateAll90()
	s.RotateAll90()
	s.RotateAll90()
	if w, h := s.Size(); w != 4 || h != 2 {
		t.Errorf("Size after full turn = %dx%d", w, h)
	}
	if got := s.Frame(0).At(3, 0); got.G != 255 {
		t.Error("full turn should restore the pixel")
	}
}

func TestReplace(t *testing.T) {
	s := New(8, 8)
	s.AddFrame()

	a, b := raster.New(4, 4), raster.New(4, 4)
	if err := s.Replace([]*raster.Buffer{a, b}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if s.Len() != 2 || s.CurrentIndex() != 0 {
		t.Errorf("len=%d current=%d", s.Len(), s.CurrentIndex())
	}
	if w, h := s.Size(); w != 4 || h != 4 {
		t.Errorf("size = %dx%d", w, h)
	}

	err := s.Replace([]*raster.Buffer{raster.New(4, 4), raster.New(5, 4)})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("err = %v, want ErrSizeMismatch", err)
	}
	if s.Len() != 2 {
		t.Error("rejected Replace must not modify the store")
	}

	for _, frames := range [][]*raster.Buffer{{nil}, {raster.New(4, 4), nil}} {
		if err := s.Replace(frames); !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("nil frame: err = %v, want ErrSizeMismatch", err)
		}
	}
	if w, h := s.Size(); s.Len() != 2 || w != 4 || h != 4 {
		t.Error("nil frame must not modify the store")
	}

	if err := s.Replace(nil); err != nil {
		t.Fatalf("Replace(nil): %v", err)
	}
	checkInvariants(t, s)
	if s.Len() != 1 {
		t.Errorf("empty replace should leave one frame, got %d", s.Len())
	}
}

// TestRandomOperationsKeepInvariants drives a long random operation sequence
func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	s := New(8, 4)

	for i := 0; i < 5000; i++ {
		switch rng.IntN(8) {
		case 0, 1:
			s.AddFrame()
		case 2, 3:
			s.DeleteFrame()
		case 4:
			s.SetCurrent(rng.IntN(s.Len()+4) - 2)
		case 5:
			s.CopyPrevious()
		case 6:
			s.Advance()
		case 7:
			if rng.IntN(10) == 0 {
				s.RotateAll90()
			}
		}
		checkInvariants(t, s)
	}
}
