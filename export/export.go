// Package export renders frames at their logical resolution for use outside the editor
package export

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"time"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"

	"github.com/lixenwraith/vi-sprite/raster"
)

// ErrNoFrames is returned when there is nothing to export
var ErrNoFrames = errors.New("no frames to export")

// maxPaletteColors leaves index 0 for transparency
const maxPaletteColors = 255

// Logical reduces a magnified buffer to one pixel per cell
// Nearest-neighbour sampling hits the middle of each cell, so the result is exact
func Logical(buf *raster.Buffer, factor int) *image.NRGBA {
	if factor <= 1 {
		return buf.Clone().Image()
	}
	b := buf.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()/factor, b.Dy()/factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), buf.Image(), b, xdraw.Src, nil)
	return dst
}

// Upscale magnifies img by an integer factor without smoothing
func Upscale(img image.Image, factor int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// Sheet lays frames out left to right at logical resolution, magnified by zoom
func Sheet(frames []*raster.Buffer, factor, zoom int) (*image.NRGBA, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	first := Logical(frames[0], factor)
	fw, fh := first.Bounds().Dx(), first.Bounds().Dy()
	sheet := image.NewNRGBA(image.Rect(0, 0, fw*len(frames), fh))

	for i, f := range frames {
		img := first
		if i > 0 {
			img = Logical(f, factor)
		}
		r := image.Rect(i*fw, 0, (i+1)*fw, fh)
		xdraw.Copy(sheet, r.Min, img, img.Bounds(), xdraw.Src, nil)
	}
	if zoom > 1 {
		return Upscale(sheet, zoom), nil
	}
	return sheet, nil
}

// WritePNG encodes one frame at logical resolution magnified by zoom
func WritePNG(w io.Writer, buf *raster.Buffer, factor, zoom int) error {
	img := Logical(buf, factor)
	if zoom > 1 {
		img = Upscale(img, zoom)
	}
	return errors.Wrap(png.Encode(w, img), "encode png")
}

// WriteSheet encodes the sprite sheet of frames as PNG
func WriteSheet(w io.Writer, frames []*raster.Buffer, factor, zoom int) error {
	sheet, err := Sheet(frames, factor, zoom)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, sheet), "encode sheet")
}

// WriteGIF encodes frames as a looping animation with the given frame delay
func WriteGIF(w io.Writer, frames []*raster.Buffer, factor, zoom int, delay time.Duration) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	images := make([]*image.NRGBA, len(frames))
	for i, f := range frames {
		img := Logical(f, factor)
		if zoom > 1 {
			img = Upscale(img, zoom)
		}
		images[i] = img
	}

	pal := buildPalette(images)
	centis := max(int(delay/(10*time.Millisecond)), 1)

	anim := &gif.GIF{LoopCount: 0}
	for _, img := range images {
		anim.Image = append(anim.Image, toPaletted(img, pal))
		anim.Delay = append(anim.Delay, centis)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return errors.Wrap(gif.EncodeAll(w, anim), "encode gif")
}

// buildPalette collects the opaque colors of all frames behind a transparent entry
// Sprites with more colors than GIF allows fall back to the web-safe palette
func buildPalette(images []*image.NRGBA) color.Palette {
	pal := color.Palette{color.NRGBA{}}
	seen := make(map[color.NRGBA]struct{})
	for _, img := range images {
		for i := 0; i < len(img.Pix); i += 4 {
			if img.Pix[i+3] < 128 {
				continue
			}
			c := color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: 255}
			if _, ok := seen[c]; ok {
				continue
			}
			if len(seen) == maxPaletteColors {
				return append(color.Palette{color.NRGBA{}}, palette.WebSafe...)
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal
}

func toPaletted(img *image.NRGBA, pal color.Palette) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(b, pal)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c.A < 128 {
				dst.SetColorIndex(x, y, 0)
				continue
			}
			c.A = 255
			// Index 0 is reserved for transparency
			dst.SetColorIndex(x, y, uint8(1+pal[1:].Index(c)))
		}
	}
	return dst
}

// DetectFactor guesses the cell size of frames saved without scale information
// It returns the largest s that divides both dimensions, keeps at least minLogical
// cells per axis, and for which every s×s cell of every frame is one color
func DetectFactor(frames []*raster.Buffer, minLogical int) int {
	return DetectFactorWhere(frames, minLogical, nil)
}

// DetectFactorWhere is DetectFactor limited to factors accepted by keep
// A nil keep accepts every factor
func DetectFactorWhere(frames []*raster.Buffer, minLogical int, keep func(s int) bool) int {
	if len(frames) == 0 {
		return 1
	}
	w, h := frames[0].Width(), frames[0].Height()
	minLogical = max(minLogical, 1)
	for s := min(w, h) / minLogical; s > 1; s-- {
		if w%s != 0 || h%s != 0 {
			continue
		}
		if keep != nil && !keep(s) {
			continue
		}
		if uniformCells(frames, s) {
			return s
		}
	}
	return 1
}

func uniformCells(frames []*raster.Buffer, s int) bool {
	for _, f := range frames {
		for y := 0; y < f.Height(); y++ {
			for x := 0; x < f.Width(); x++ {
				if f.At(x, y) != f.At(x-x%s, y-y%s) {
					return false
				}
			}
		}
	}
	return true
}
