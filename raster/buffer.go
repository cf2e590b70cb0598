// Package raster holds the pixel grid backing one animation frame
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// Transparent is the zero pixel every new buffer is filled with
var Transparent = color.NRGBA{}

// Buffer is a fixed-size grid of non-premultiplied 8-bit RGBA pixels
type Buffer struct {
	img *image.NRGBA
}

// New creates a transparent buffer of the given size
// Non-positive dimensions produce an empty buffer
func New(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// FromImage converts any image into a buffer anchored at the origin
func FromImage(src image.Image) *Buffer {
	b := src.Bounds()
	buf := New(b.Dx(), b.Dy())
	if n, ok := src.(*image.NRGBA); ok && n.Rect == buf.img.Rect && n.Stride == buf.img.Stride {
		copy(buf.img.Pix, n.Pix)
		return buf
	}
	draw.Draw(buf.img, buf.img.Rect, src, b.Min, draw.Src)
	return buf
}

// Width returns the buffer width in pixels
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the buffer height in pixels
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Bounds returns the pixel rectangle of the buffer
func (b *Buffer) Bounds() image.Rectangle { return b.img.Rect }

// Image exposes the backing image for read access by codecs and renderers
func (b *Buffer) Image() *image.NRGBA { return b.img }

// At returns the pixel at (x, y), transparent outside the buffer
func (b *Buffer) At(x, y int) color.NRGBA {
	return b.img.NRGBAAt(x, y)
}

// Set writes a pixel, ignoring coordinates outside the buffer
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	b.img.SetNRGBA(x, y, c)
}

// FillRect overwrites every pixel of r with c, clipped to the buffer
// Returns false when nothing was written
func (b *Buffer) FillRect(r image.Rectangle, c color.NRGBA) bool {
	r = r.Intersect(b.img.Rect)
	if r.Empty() {
		return false
	}
	px := [4]uint8{c.R, c.G, c.B, c.A}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.img.Pix[b.img.PixOffset(r.Min.X, y):b.img.PixOffset(r.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			copy(row[i:i+4], px[:])
		}
	}
	return true
}

// ClearRect resets r to fully transparent
func (b *Buffer) ClearRect(r image.Rectangle) bool {
	return b.FillRect(r, Transparent)
}

// Clear resets the whole buffer to transparent
func (b *Buffer) Clear() {
	clear(b.img.Pix)
}

// Clone returns a deep copy
func (b *Buffer) Clone() *Buffer {
	c := New(b.Width(), b.Height())
	copy(c.img.Pix, b.img.Pix)
	return c
}

// CopyFrom overwrites this buffer with the content of src
// Buffers of different size are rejected
func (b *Buffer) CopyFrom(src *Buffer) bool {
	if src == nil || src.Bounds() != b.Bounds() {
		return false
	}
	copy(b.img.Pix, src.img.Pix)
	return true
}

// Rotate90 returns a new buffer holding this one turned 90° clockwise
// Width and height of the result are swapped
func (b *Buffer) Rotate90() *Buffer {
	w, h := b.Width(), b.Height()
	dst := New(h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.img.SetNRGBA(h-1-y, x, b.img.NRGBAAt(x, y))
		}
	}
	return dst
}

// Equal reports whether both buffers have the same size and pixels
func (b *Buffer) Equal(o *Buffer) bool {
	if o == nil || b.Bounds() != o.Bounds() {
		return false
	}
	for i := range b.img.Pix {
		if b.img.Pix[i] != o.img.Pix[i] {
			return false
		}
	}
	return true
}

// IsTransparent reports whether every pixel has zero alpha
func (b *Buffer) IsTransparent() bool {
	for i := 3; i < len(b.img.Pix); i += 4 {
		if b.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}
