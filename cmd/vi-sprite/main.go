package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/vi-sprite/audio"
	"github.com/lixenwraith/vi-sprite/config"
	"github.com/lixenwraith/vi-sprite/editor"
	"github.com/lixenwraith/vi-sprite/logger"
)

const (
	logDir  = "logs"
	logName = "vi-sprite.log"
)

var (
	configFlag = flag.String("config", "", "Path to config file (default: user config dir)")
	colorFlag  = flag.String("color", "", "Color mode: auto, truecolor, 256 (overrides config)")
	debugFlag  = flag.Bool("debug", false, "Write debug log to "+logDir+"/"+logName)
	audioFlag  = flag.Bool("audio", false, "Enable audio cues (overrides config)")
	widthFlag  = flag.Int("width", 0, "Sprite width in pixels (overrides config)")
	heightFlag = flag.Int("height", 0, "Sprite height in pixels (overrides config)")
)

func main() {
	var screen tcell.Screen

	// Panic Recovery: restore the terminal before printing the trace
	defer func() {
		if r := recover(); r != nil {
			if screen != nil {
				screen.Fini()
			}
			fmt.Fprintf(os.Stderr, "\n\x1b[31mVI-SPRITE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vi-sprite [flags] [project.json]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfgPath := *configFlag
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.Setup(*debugFlag, logDir, logName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	ctx := logger.NewContext(context.Background(), log)

	setColorMode(cfg.UI.ColorMode)
	screen, err = tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	var cues editor.Cues
	if cfg.Audio.Enabled {
		player := audio.NewCuePlayer()
		if err := player.Initialize(); err != nil {
			log.Warn("audio unavailable", zap.Error(err))
		} else {
			defer player.Cleanup()
			cues = player
		}
	}

	app, err := newApp(ctx, screen, cfg, cues)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to start editor: %v\n", err)
		os.Exit(1)
	}

	if path := flag.Arg(0); path != "" {
		app.open(path)
	}

	log.Info("editor started", zap.String("config", cfgPath))
	app.run()
	log.Info("editor stopped")
}

// applyFlags overlays explicitly set flags onto the loaded config
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "color":
			cfg.UI.ColorMode = *colorFlag
		case "audio":
			cfg.Audio.Enabled = *audioFlag
		case "width":
			cfg.Canvas.Width = *widthFlag
		case "height":
			cfg.Canvas.Height = *heightFlag
		}
	})
}

// setColorMode steers tcell's color detection before the screen is created
func setColorMode(mode string) {
	switch mode {
	case "256":
		os.Setenv("TCELL_TRUECOLOR", "disable")
	case "truecolor", "true", "24bit":
		if os.Getenv("COLORTERM") == "" {
			os.Setenv("COLORTERM", "truecolor")
		}
	}
}
