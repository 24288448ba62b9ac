package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/erparts/go-aveplay"
	"github.com/erparts/go-aveplay/ffmpeg"
	"github.com/erparts/go-aveplay/internal/config"
)

// app holds what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	cfg        *config.Config
	logger     zerolog.Logger

	// flag overrides, applied on top of the config file
	logLevel  string
	loopMode  string
	direction string
	speed     float64
	preload   string
}

func newRootCmd() *cobra.Command {
	root, _ := buildRootCmd()
	return root
}

func buildRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "aveplay",
		Short:         "Inspect and play media files",
		Long:          "aveplay opens media files with FFmpeg and drives the aveplay player: print stream information, play a file headless or export a frame.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/aveplay/config.toml, then ./aveplay.toml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&a.loopMode, "loop", "", "loop mode (none, loop, bidirectional)")
	flags.StringVar(&a.direction, "direction", "", "playback direction (forward, backward)")
	flags.Float64Var(&a.speed, "speed", 0, "playback speed multiplier")
	flags.StringVar(&a.preload, "preload", "", "decode the whole video into memory when it fits in this size (e.g. 512MB)")

	root.AddCommand(newInfoCmd(a), newPlayCmd(a), newSnapshotCmd(a))
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		if _, statErr := os.Stat(a.configPath); statErr != nil {
			return fmt.Errorf("config file: %w", statErr)
		}
		cfg, err = config.LoadFiles(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("loop") {
		cfg.LoopMode = a.loopMode
	}
	if flags.Changed("direction") {
		cfg.Direction = a.direction
	}
	if flags.Changed("speed") {
		cfg.Speed = a.speed
	}
	if flags.Changed("preload") {
		cfg.Preload = a.preload
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.GetLogLevel()
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
	aveplay.SetLogger(a.logger)
	return nil
}

// openPlayer opens path with the FFmpeg backend and applies the configured
// loop mode, direction and speed.
func (a *app) openPlayer(path string) (*aveplay.Player, error) {
	mode, _ := a.cfg.GetLoopMode()
	dir, _ := a.cfg.GetDirection()
	preload, _ := a.cfg.GetPreloadLimit()

	player, err := aveplay.NewPlayer(
		ffmpeg.Backend{Logger: &a.logger},
		aveplay.WithLoopMode(mode),
		aveplay.WithPreload(preload),
	)
	if err != nil {
		return nil, err
	}
	if err := player.Open(path); err != nil {
		return nil, err
	}
	player.SetDirection(dir)
	player.SetSpeed(a.cfg.Speed)
	return player, nil
}
