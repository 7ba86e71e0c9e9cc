package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full set of knobs for a capture or preview run. Values come
// from Default, then an optional TOML file, then command-line flags.
type Config struct {
	Prompt         string `toml:"prompt"`
	StoryboardPath string `toml:"storyboard"`
	OutputVideo    string `toml:"output"`
	OutputDir      string `toml:"output_dir"`

	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Preset string `toml:"preset"`

	FPS          int           `toml:"fps"`
	Bitrate      int           `toml:"bitrate"`
	Quality      int           `toml:"quality"`
	Containers   []string      `toml:"containers"`
	VideoEncoder string        `toml:"video_encoder"`
	FFmpeg       string        `toml:"ffmpeg"`
	TailMs       int           `toml:"tail_ms"`
	FlushTimeout time.Duration `toml:"flush_timeout"`
	Pacing       string        `toml:"pacing"`
	Workers      int           `toml:"workers"`

	PreviewHz    int     `toml:"preview_hz"`
	PreviewScale float64 `toml:"preview_scale"`

	ShowStats    bool   `toml:"show_stats"`
	BuildVersion string `toml:"-"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		OutputDir:    "output",
		Width:        960,
		Height:       540,
		FPS:          30,
		Bitrate:      4_000_000,
		Containers:   []string{"webm"},
		FFmpeg:       "ffmpeg",
		TailMs:       400,
		FlushTimeout: 10 * time.Second,
		Pacing:       "synthetic",
		Workers:      runtime.NumCPU(),
		PreviewHz:    30,
		PreviewScale: 0.125,
	}
}

// Load reads a TOML file over the defaults. Unknown keys are an error so
// typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// presets map aspect names to frame sizes
var presets = map[string][2]int{
	"16:9": {1280, 720},
	"9:16": {720, 1280}, // Shorts/TikTok
	"4:5":  {1080, 1350}, // Instagram
}

// ApplyPreset overrides Width and Height when Preset is set
func (c *Config) ApplyPreset() error {
	if c.Preset == "" {
		return nil
	}
	size, ok := presets[c.Preset]
	if !ok {
		return fmt.Errorf("unknown preset %q (use 16:9, 9:16 or 4:5)", c.Preset)
	}
	c.Width, c.Height = size[0], size[1]
	return nil
}

// Validate checks ranges and enumerations
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size %dx%d must be positive", c.Width, c.Height))
	}
	if c.FPS <= 0 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d out of range 1..240", c.FPS))
	}
	if c.Bitrate <= 0 {
		errs = append(errs, fmt.Errorf("bitrate %d must be positive", c.Bitrate))
	}
	if c.Quality < 0 {
		errs = append(errs, fmt.Errorf("quality %d must not be negative", c.Quality))
	}
	if c.TailMs < 0 {
		errs = append(errs, fmt.Errorf("tail %dms must not be negative", c.TailMs))
	}
	if c.FlushTimeout <= 0 {
		errs = append(errs, fmt.Errorf("flush timeout %s must be positive", c.FlushTimeout))
	}
	if len(c.Containers) == 0 {
		errs = append(errs, errors.New("at least one container is required"))
	}
	seen := map[string]bool{}
	for _, ct := range c.Containers {
		if ct != "webm" && ct != "mp4" {
			errs = append(errs, fmt.Errorf("unsupported container %q (use webm or mp4)", ct))
		}
		if seen[ct] {
			errs = append(errs, fmt.Errorf("container %q listed twice", ct))
		}
		seen[ct] = true
	}
	if c.Pacing != "" && c.Pacing != "synthetic" && c.Pacing != "realtime" {
		errs = append(errs, fmt.Errorf("unknown pacing %q (use synthetic or realtime)", c.Pacing))
	}
	if c.PreviewScale <= 0 || c.PreviewScale > 1 {
		errs = append(errs, fmt.Errorf("preview scale %g out of range (0, 1]", c.PreviewScale))
	}
	return errors.Join(errs...)
}
