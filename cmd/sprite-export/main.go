// sprite-export converts vi-sprite project files into standalone images
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lixenwraith/vi-sprite/editor"
	"github.com/lixenwraith/vi-sprite/export"
	"github.com/lixenwraith/vi-sprite/playback"
	"github.com/lixenwraith/vi-sprite/project"
	"github.com/lixenwraith/vi-sprite/scale"
)

const usage = `Usage: sprite-export [flags] <command> <project.json>

Commands:
  info    print frame count and geometry
  png     write one frame as PNG
  frames  write every frame as name-NN.png
  sheet   write all frames side by side as one PNG
  gif     write an animated GIF

Flags:
`

// options holds the parsed command line
type options struct {
	command string
	input   string
	output  string
	factor  int
	zoom    int
	frame   int
	speed   int
}

func main() {
	fs := flag.NewFlagSet("sprite-export", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	opts, err := parseArgs(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(2)
	}

	var l *zap.Logger
	if *verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	zap.ReplaceGlobals(l)
	defer l.Sync() //nolint:errcheck

	if err := run(l, opts, os.Stdout); err != nil {
		l.Error("export failed", zap.String("command", opts.command), zap.String("input", opts.input), zap.Error(err))
		os.Exit(1)
	}
}

func parseArgs(fs *flag.FlagSet, args []string) (options, error) {
	var o options
	fs.StringVar(&o.output, "o", "", "output path (default derived from input)")
	fs.IntVar(&o.factor, "scale", 0, "raster pixels per sprite pixel (0 detects it)")
	fs.IntVar(&o.zoom, "zoom", 1, "magnify exported images by this integer factor")
	fs.IntVar(&o.frame, "frame", 0, "frame index for png")
	fs.IntVar(&o.speed, "speed", playback.DefaultSpeed, "preview speed for gif timing")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 2 {
		return o, errors.New("expected a command and a project file")
	}
	o.command, o.input = fs.Arg(0), fs.Arg(1)
	if o.zoom < 1 {
		return o, errors.Errorf("zoom %d must be at least 1", o.zoom)
	}
	if o.factor < 0 {
		return o, errors.Errorf("scale %d must not be negative", o.factor)
	}
	return o, nil
}

func run(l *zap.Logger, o options, stdout io.Writer) error {
	res, err := project.Load(o.input)
	if err != nil && !errors.Is(err, project.ErrMalformed) {
		return err
	}
	if len(res.Frames) == 0 {
		return errors.Wrapf(export.ErrNoFrames, "%s", o.input)
	}
	if res.Skipped > 0 {
		l.Warn("skipped undecodable frames", zap.Int("skipped", res.Skipped), zap.Int("entries", res.Entries))
	}

	w, h := res.Frames[0].Width(), res.Frames[0].Height()
	factor := o.factor
	if factor == 0 {
		factor = export.DetectFactor(res.Frames, editor.MinSpriteSize)
	}
	m, err := scale.FromRaster(w, h, factor)
	if err != nil {
		return err
	}
	if o.factor > 0 && m.Factor() != o.factor {
		return errors.Errorf("scale %d does not divide raster %dx%d", o.factor, w, h)
	}
	l.Debug("project loaded", zap.String("input", o.input), zap.Int("frames", len(res.Frames)), zap.Stringer("mapper", m))

	base := strings.TrimSuffix(o.input, filepath.Ext(o.input))
	switch o.command {
	case "info":
		lw, lh := m.LogicalSize()
		fmt.Fprintf(stdout, "frames:  %d\n", len(res.Frames))
		fmt.Fprintf(stdout, "raster:  %dx%d\n", w, h)
		fmt.Fprintf(stdout, "scale:   %d\n", m.Factor())
		fmt.Fprintf(stdout, "sprite:  %dx%d\n", lw, lh)
		if res.Skipped > 0 {
			fmt.Fprintf(stdout, "skipped: %d\n", res.Skipped)
		}
		return nil

	case "png":
		if o.frame < 0 || o.frame >= len(res.Frames) {
			return errors.Errorf("frame %d out of range [0,%d)", o.frame, len(res.Frames))
		}
		out := outputPath(o.output, base+".png")
		return writeFile(l, out, func(f io.Writer) error {
			return export.WritePNG(f, res.Frames[o.frame], m.Factor(), o.zoom)
		})

	case "frames":
		prefix := outputPath(o.output, base)
		for i, buf := range res.Frames {
			out := fmt.Sprintf("%s-%02d.png", prefix, i)
			if err := writeFile(l, out, func(f io.Writer) error {
				return export.WritePNG(f, buf, m.Factor(), o.zoom)
			}); err != nil {
				return err
			}
		}
		return nil

	case "sheet":
		out := outputPath(o.output, base+"-sheet.png")
		return writeFile(l, out, func(f io.Writer) error {
			return export.WriteSheet(f, res.Frames, m.Factor(), o.zoom)
		})

	case "gif":
		out := outputPath(o.output, base+".gif")
		delay := playback.IntervalFor(playback.ClampSpeed(o.speed))
		return writeFile(l, out, func(f io.Writer) error {
			return export.WriteGIF(f, res.Frames, m.Factor(), o.zoom, delay)
		})
	}
	return errors.Errorf("unknown command %q", o.command)
}

func outputPath(flagValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	return fallback
}

// writeFile creates path and hands it to encode, removing the file on failure
func writeFile(l *zap.Logger, path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	l.Info("wrote", zap.String("path", path))
	return nil
}
