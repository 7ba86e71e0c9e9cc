package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ivlev/sketchstory/internal/config"
	"github.com/ivlev/sketchstory/internal/story"
)

// flags собирает значения командной строки; в конфиг попадают только
// явно заданные
type flags struct {
	configPath string

	storyboard string
	output     string
	width      int
	height     int
	preset     string

	fps        int
	bitrate    int
	quality    int
	containers []string
	encoder    string
	ffmpeg     string
	tail       int
	flush      time.Duration
	pacing     string
	workers    int
	stats      bool

	hz    int
	scale float64
}

func newRootCmd() *cobra.Command {
	var verbose bool
	f := &flags{}

	root := &cobra.Command{
		Use:           "sketchstory",
		Short:         "Whiteboard-style storyboard animation and video capture",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("sketchstory %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "TOML config file")

	root.AddCommand(newRenderCmd(f))
	root.AddCommand(newPreviewCmd(f))
	root.AddCommand(newStoryboardCmd(f))
	return root
}

// addCanvasFlags регистрирует флаги источника и размера холста
func addCanvasFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVarP(&f.storyboard, "storyboard", "s", "", "storyboard YAML (default: generate from the prompt)")
	cmd.Flags().IntVar(&f.width, "width", 0, "canvas width")
	cmd.Flags().IntVar(&f.height, "height", 0, "canvas height")
	cmd.Flags().StringVar(&f.preset, "preset", "", "aspect preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
}

// loadConfig строит конфиг: значения по умолчанию, файл, затем флаги
func loadConfig(cmd *cobra.Command, f *flags, args []string) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if len(args) > 0 {
		cfg.Prompt = strings.Join(args, " ")
	}
	if changed("storyboard") {
		cfg.StoryboardPath = f.storyboard
	}
	if changed("output") {
		cfg.OutputVideo = f.output
	}
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("preset") {
		cfg.Preset = f.preset
	}
	if changed("fps") {
		cfg.FPS = f.fps
	}
	if changed("bitrate") {
		cfg.Bitrate = f.bitrate
	}
	if changed("quality") {
		cfg.Quality = f.quality
	}
	if changed("container") {
		cfg.Containers = f.containers
	}
	if changed("encoder") {
		cfg.VideoEncoder = f.encoder
	}
	if changed("ffmpeg") {
		cfg.FFmpeg = f.ffmpeg
	}
	if changed("tail") {
		cfg.TailMs = f.tail
	}
	if changed("flush-timeout") {
		cfg.FlushTimeout = f.flush
	}
	if changed("pacing") {
		cfg.Pacing = f.pacing
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("stats") {
		cfg.ShowStats = f.stats
	}
	if changed("hz") {
		cfg.PreviewHz = f.hz
	}
	if changed("scale") {
		cfg.PreviewScale = f.scale
	}
	cfg.BuildVersion = version

	if err := cfg.ApplyPreset(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveStoryboard берет самую свежую раскадровку, если не задан ни файл,
// ни промпт
func resolveStoryboard(cmd *cobra.Command, cfg *config.Config) {
	if cfg.StoryboardPath != "" || cfg.Prompt != "" {
		return
	}
	latest, err := story.FindLatestStoryboard(story.StoryboardsDir)
	if err != nil {
		loggerFromContext(cmd.Context()).Debug("no saved storyboard, using the default template", "err", err)
		return
	}
	cfg.StoryboardPath = latest
	fmt.Fprintf(cmd.OutOrStdout(), "[*] Выбран файл: %s\n", latest)
}
