// Package config loads editor settings from a TOML file
package config

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Sprite size bounds offered to the user
const (
	MinSpriteSize = 8
	MaxSpriteSize = 512

	// MaxExtent caps the raster side the larger sprite axis is stretched to
	MaxExtent = 2048

	MinSpeed = 50
	MaxSpeed = 500
)

// ErrInvalid marks a configuration value outside its allowed range
var ErrInvalid = errors.New("invalid configuration")

// Config is the full settings file
type Config struct {
	Canvas   Canvas   `toml:"canvas"`
	Brush    Brush    `toml:"brush"`
	Playback Playback `toml:"playback"`
	Audio    Audio    `toml:"audio"`
	UI       UI       `toml:"ui"`
}

// Canvas holds the initial sprite geometry
type Canvas struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Extent int `toml:"extent"`
}

// Brush holds the initial drawing state
type Brush struct {
	Color  string `toml:"color"`
	Alpha  int    `toml:"alpha"`
	Mirror bool   `toml:"mirror"`
}

// Playback holds preview settings
type Playback struct {
	Speed int `toml:"speed"`
}

// Audio toggles the preview cues
type Audio struct {
	Enabled bool `toml:"enabled"`
}

// UI holds terminal front-end settings
type UI struct {
	ColorMode string `toml:"color_mode"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Canvas:   Canvas{Width: 32, Height: 32, Extent: 512},
		Brush:    Brush{Color: "#000000", Alpha: 255},
		Playback: Playback{Speed: 100},
		Audio:    Audio{Enabled: false},
		UI:       UI{ColorMode: "auto"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/vi-sprite/config.toml or its platform equivalent
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "vi-sprite.toml"
	}
	return filepath.Join(dir, "vi-sprite", "config.toml")
}

// Load reads path over the defaults
// A missing file is not an error and yields the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg and validates the result
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Wrapf(ErrInvalid, "unknown key %s", undecoded[0].String())
	}
	return cfg.Validate()
}

// Save writes cfg to path as TOML, creating parent directories
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create config")
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return nil
}

// Validate checks every value range
func (c *Config) Validate() error {
	if c.Canvas.Width < MinSpriteSize || c.Canvas.Width > MaxSpriteSize ||
		c.Canvas.Height < MinSpriteSize || c.Canvas.Height > MaxSpriteSize {
		return errors.Wrapf(ErrInvalid, "canvas size %dx%d outside [%d,%d]",
			c.Canvas.Width, c.Canvas.Height, MinSpriteSize, MaxSpriteSize)
	}
	if c.Canvas.Extent < max(c.Canvas.Width, c.Canvas.Height) {
		return errors.Wrapf(ErrInvalid, "extent %d smaller than sprite", c.Canvas.Extent)
	}
	if c.Canvas.Extent > MaxExtent {
		return errors.Wrapf(ErrInvalid, "extent %d above %d", c.Canvas.Extent, MaxExtent)
	}
	if c.Playback.Speed < MinSpeed || c.Playback.Speed > MaxSpeed {
		return errors.Wrapf(ErrInvalid, "speed %d outside [%d,%d]", c.Playback.Speed, MinSpeed, MaxSpeed)
	}
	if c.Brush.Alpha < 0 || c.Brush.Alpha > 255 {
		return errors.Wrapf(ErrInvalid, "brush alpha %d outside [0,255]", c.Brush.Alpha)
	}
	if _, err := ParseColor(c.Brush.Color, 255); err != nil {
		return err
	}
	switch c.UI.ColorMode {
	case "auto", "truecolor", "256":
	default:
		return errors.Wrapf(ErrInvalid, "color mode %q", c.UI.ColorMode)
	}
	return nil
}

// BrushColor returns the configured brush color with its alpha
func (c *Config) BrushColor() color.NRGBA {
	col, err := ParseColor(c.Brush.Color, c.Brush.Alpha)
	if err != nil {
		return color.NRGBA{A: 255}
	}
	return col
}

// ParseColor converts "#rrggbb" into an NRGBA color with the given alpha
func ParseColor(hex string, alpha int) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(ErrInvalid, "color %q", hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(min(max(alpha, 0), 255))}, nil
}

// FormatColor renders the RGB part of c as "#rrggbb"
func FormatColor(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}
