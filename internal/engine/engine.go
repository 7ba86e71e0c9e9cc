package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sketchstory/internal/capture"
	"github.com/ivlev/sketchstory/internal/config"
	"github.com/ivlev/sketchstory/internal/renderer"
	"github.com/ivlev/sketchstory/internal/story"
	"github.com/ivlev/sketchstory/internal/system"
	"github.com/ivlev/sketchstory/internal/video"
)

// EncoderFactory создает энкодер для одного контейнера
type EncoderFactory func(container string) capture.Encoder

// Project связывает раскадровку, захват и запись результата на диск
type Project struct {
	Config   *config.Config
	Encoders EncoderFactory
	Surfaces capture.SurfaceFactory
	Logger   *log.Logger
	Out      io.Writer // строки прогресса, по умолчанию os.Stdout

	// BenchmarkLog - файл, куда дописывается строка отчета при ShowStats
	BenchmarkLog string
}

// Result описывает один записанный файл
type Result struct {
	Container  string
	Path       string
	Frames     int
	DurationMs int
	Bytes      int
	Elapsed    time.Duration
}

func NewProject(cfg *config.Config, logger *log.Logger) *Project {
	if logger == nil {
		logger = log.Default()
	}
	p := &Project{
		Config:       cfg,
		Surfaces:     RasterSurfaces,
		Logger:       logger,
		Out:          os.Stdout,
		BenchmarkLog: "benchmark.log",
	}
	p.Encoders = func(container string) capture.Encoder {
		return &video.FFmpegEncoder{
			Binary:       cfg.FFmpeg,
			Container:    container,
			VideoEncoder: cfg.VideoEncoder,
			Quality:      cfg.Quality,
			Logger:       logger.With("container", container),
		}
	}
	return p
}

// RasterSurfaces выделяет offscreen-битмап для захвата
func RasterSurfaces(width, height int) (capture.Offscreen, error) {
	r, err := renderer.NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Storyboard загружает раскадровку из файла или строит ее по промпту.
// Второе значение - имя источника для логов и имени выходного файла.
func (p *Project) Storyboard() (*story.Storyboard, string, error) {
	cfg := p.Config
	if cfg.StoryboardPath == "" {
		return story.FromPrompt(cfg.Prompt, cfg.Width, cfg.Height), "", nil
	}

	sb, err := story.ReadStoryboard(cfg.StoryboardPath)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка чтения раскадровки: %w", err)
	}
	// Размер холста раскадровки задает размер кадра
	if sb.Width <= 0 || sb.Height <= 0 {
		sb.Width, sb.Height = cfg.Width, cfg.Height
	}
	return sb, cfg.StoryboardPath, nil
}

// Run захватывает раскадровку во все контейнеры из конфига и пишет файлы
func (p *Project) Run(ctx context.Context) ([]Result, error) {
	startTime := time.Now()
	cfg := p.Config

	pacing, ok := capture.ParsePacing(cfg.Pacing)
	if !ok {
		return nil, fmt.Errorf("unknown pacing %q", cfg.Pacing)
	}

	sb, source, err := p.Storyboard()
	if err != nil {
		return nil, err
	}
	if source != "" {
		p.printf("[*] Используется раскадровка: %s\n", source)
	}

	p.printf("--- [SKETCHSTORY: CAPTURE ENGINE] ---\n")
	p.printf("[*] Шагов: %d | Длительность: %dms + хвост %dms\n", len(sb.Steps), sb.TotalDurationMs(), cfg.TailMs)
	p.printf("[*] Разрешение: %dx%d @ %d FPS | Контейнеры: %s | Pacing: %s\n",
		sb.Width, sb.Height, cfg.FPS, strings.Join(cfg.Containers, ", "), pacing)
	p.printf("-------------------------------------\n")

	tail := cfg.TailMs
	if tail == 0 {
		tail = -1 // 0 в конфиге означает "без хвоста"
	}
	base := p.outputBase(source)

	var frames atomic.Int64
	logEvery := max(1, cfg.FPS)
	results := make([]Result, len(cfg.Containers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i, container := range cfg.Containers {
		i, container := i, container
		g.Go(func() error {
			encStart := time.Now()
			logger := p.Logger.With("container", container)
			drv := capture.NewDriver(p.Encoders(container), p.Surfaces, logger)

			out, err := drv.Start(gctx, sb.Steps, capture.Options{
				Width:        sb.Width,
				Height:       sb.Height,
				FPS:          cfg.FPS,
				Bitrate:      cfg.Bitrate,
				TailMs:       tail,
				FlushTimeout: cfg.FlushTimeout,
				Pacing:       pacing,
				OnFrame: func(frame int, elapsedMs float64) {
					frames.Add(1)
					if frame%logEvery == 0 {
						logger.Debug("frame", "n", frame, "elapsedMs", elapsedMs)
					}
				},
			})
			if err != nil {
				return fmt.Errorf("%s: %w", container, err)
			}

			path := base + "." + out.Extension
			if err := writeOutput(path, out.Data); err != nil {
				return fmt.Errorf("%s: %w", container, err)
			}

			results[i] = Result{
				Container:  container,
				Path:       path,
				Frames:     out.Frames,
				DurationMs: out.DurationMs,
				Bytes:      len(out.Data),
				Elapsed:    time.Since(encStart),
			}
			p.printf("[>] Готово: %s (%d кадров, %s)\n", path, out.Frames, out.MIME)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.ShowStats {
		p.report(sb, results, int(frames.Load()), time.Since(startTime))
	}
	return results, nil
}

// GenerateStoryboard пишет раскадровку по промпту в YAML и возвращает путь
func (p *Project) GenerateStoryboard(path string) (string, error) {
	p.printf("[*] Режим генерации раскадровки...\n")

	sb := story.FromPrompt(p.Config.Prompt, p.Config.Width, p.Config.Height)
	if err := story.Validate(sb.Steps); err != nil {
		return "", err
	}

	if path == "" {
		path = story.GenerateStoryboardPath()
	}
	if err := system.EnsureDirs(filepath.Dir(path)); err != nil {
		return "", err
	}
	if err := story.WriteStoryboard(sb, path); err != nil {
		return "", err
	}

	p.printf("[+++] Успех! Раскадровка сохранена: %s\n", path)
	return path, nil
}

// outputBase возвращает путь результата без расширения
func (p *Project) outputBase(source string) string {
	if out := p.Config.OutputVideo; out != "" {
		ext := filepath.Ext(out)
		if video.SupportedContainer(strings.TrimPrefix(strings.ToLower(ext), ".")) {
			return strings.TrimSuffix(out, ext)
		}
		return out
	}

	nameOnly := "sketchstory"
	if source != "" {
		baseName := filepath.Base(source)
		nameOnly = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	}
	cleanName := strings.ReplaceAll(nameOnly, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(p.Config.OutputDir, fmt.Sprintf("%s_%s", cleanName, timestamp))
}

func writeOutput(path string, data []byte) error {
	if len(data) == 0 {
		return errors.New("empty output")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := system.EnsureDirs(dir); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (p *Project) printf(format string, args ...any) {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

func (p *Project) report(sb *story.Storyboard, results []Result, frames int, totalTime time.Duration) {
	usage, err := system.Snapshot()
	if err != nil {
		p.Logger.Debug("process stats unavailable", "err", err)
	}
	pool := system.GlobalPoolStats()
	fps := float64(frames) / totalTime.Seconds()

	var b strings.Builder
	fmt.Fprintf(&b, "--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", p.Config.BuildVersion)
	fmt.Fprintf(&b, "Total Time: %.2fs\n", totalTime.Seconds())
	for _, r := range results {
		fmt.Fprintf(&b, "Capture %s: %.2fs | %d frames | %d bytes\n", r.Container, r.Elapsed.Seconds(), r.Frames, r.Bytes)
	}
	fmt.Fprintf(&b, "Effective FPS: %.2f\n", fps)
	fmt.Fprintf(&b, "RSS: %.1f MiB | CPU: %.1f%% | Threads: %d | Goroutines: %d\n",
		usage.RSSMiB(), usage.CPUPercent, usage.Threads, usage.Goroutines)
	fmt.Fprintf(&b, "System memory: %.1f%% used\n", usage.SystemUsedPct)
	fmt.Fprintf(&b, "Image pool: %d gets, %d allocs\n", pool.Gets, pool.Allocs)
	fmt.Fprintf(&b, "----------------------------\n")
	p.printf("%s", b.String())

	if p.BenchmarkLog == "" {
		return
	}

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Steps: %d | Containers: %s | Frames: %d | Total: %.2fs | FPS: %.2f | RSS: %.1fMiB\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		len(sb.Steps),
		strings.Join(p.Config.Containers, ","),
		frames,
		totalTime.Seconds(),
		fps,
		usage.RSSMiB(),
	)

	f, err := os.OpenFile(p.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		p.printf("[!] Не удалось записать %s: %v\n", p.BenchmarkLog, err)
	}
}
