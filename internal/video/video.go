package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sketchstory/internal/capture"
	"github.com/ivlev/sketchstory/internal/system"
)

const (
	ContainerWebM = "webm"
	ContainerMP4  = "mp4"
)

// Containers - поддерживаемые выходные контейнеры
var Containers = []string{ContainerWebM, ContainerMP4}

// SupportedContainer сообщает, входит ли c в Containers
func SupportedContainer(c string) bool {
	return c == ContainerWebM || c == ContainerMP4
}

// FFmpegEncoder кодирует кадры через внешний ffmpeg: raw RGBA на stdin,
// готовый контейнер на stdout.
type FFmpegEncoder struct {
	Binary       string // по умолчанию "ffmpeg"
	Container    string // webm или mp4
	VideoEncoder string // только для mp4; пусто - автовыбор
	Quality      int    // 0 - битрейт из Params
	Logger       *log.Logger
}

var _ capture.Encoder = (*FFmpegEncoder)(nil)

func (e *FFmpegEncoder) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "ffmpeg"
}

func (e *FFmpegEncoder) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

// Probe проверяет, что ffmpeg доступен и контейнер поддерживается
func (e *FFmpegEncoder) Probe() error {
	if !SupportedContainer(e.Container) {
		return fmt.Errorf("unsupported container %q", e.Container)
	}
	if _, err := exec.LookPath(e.binary()); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// Open запускает процесс ffmpeg для одного прогона захвата
func (e *FFmpegEncoder) Open(ctx context.Context, p capture.Params) (capture.Stream, error) {
	encoderName := e.VideoEncoder
	if e.Container == ContainerMP4 && encoderName == "" {
		encoderName = system.GetBestH264Encoder(e.binary())
	}
	args := e.buildFFmpegArgs(p, encoderName)

	ctx, cancel := context.WithCancel(ctx)
	s, err := startStream(exec.CommandContext(ctx, e.binary(), args...), cancel)
	if err != nil {
		return nil, err
	}
	e.logger().Debug("ffmpeg started", "container", e.Container, "encoder", encoderName, "size", fmt.Sprintf("%dx%d", p.Width, p.Height))
	return s, nil
}

// startStream запускает cmd с pipe на stdin/stdout/stderr. cancel
// освобождает контекст cmd и вызывается при любой ошибке.
func startStream(cmd *exec.Cmd, cancel context.CancelFunc) (*ffmpegStream, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stderr pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	s := &ffmpegStream{
		cmd:    cmd,
		stdin:  stdin,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.start(stdout, stderr)
	return s, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(p capture.Params, encoderName string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
		// yuv420p требует четных размеров
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
	}

	switch e.Container {
	case ContainerWebM:
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-b:v", fmt.Sprintf("%d", p.Bitrate),
			"-deadline", "realtime",
			"-cpu-used", "8",
			"-row-mt", "1",
			"-f", "webm",
		)
	default:
		args = append(args, "-c:v", encoderName)
		args = append(args, qualityArgs(encoderName, e.Quality, p.Bitrate)...)
		// фрагментированный mp4 можно писать в pipe без seek
		args = append(args,
			"-movflags", "frag_keyframe+empty_moov+default_base_moof",
			"-brand", "mp42",
			"-f", "mp4",
		)
	}

	return append(args, "-")
}

// qualityArgs подбирает параметры качества в зависимости от энкодера
func qualityArgs(encoderName string, quality, bitrate int) []string {
	if quality <= 0 {
		return []string{"-b:v", fmt.Sprintf("%d", bitrate)}
	}
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// DefaultQuality возвращает разумное качество для энкодера
func DefaultQuality(encoderName string) int {
	switch encoderName {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

// stderrLimit - сколько последних байт stderr хранить для сообщений об ошибках
const stderrLimit = 4096

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	cancel context.CancelFunc
	g      errgroup.Group

	mu     sync.Mutex
	chunks [][]byte
	stderr []byte

	closeOnce sync.Once
	waitOnce  sync.Once
	waitErr   error

	// done закрывается в Abort: Finish перестает отправлять чанки
	done      chan struct{}
	abortOnce sync.Once
}

// start читает stdout и stderr, пока процесс не завершится
func (s *ffmpegStream) start(stdout, stderr io.Reader) {
	s.g.Go(func() error {
		buf := make([]byte, 64<<10)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				s.mu.Lock()
				s.chunks = append(s.chunks, chunk)
				s.mu.Unlock()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read ffmpeg output: %w", err)
			}
		}
	})
	s.g.Go(func() error {
		buf := make([]byte, 1024)
		for {
			n, err := stderr.Read(buf)
			if n > 0 {
				s.mu.Lock()
				s.stderr = append(s.stderr, buf[:n]...)
				if over := len(s.stderr) - stderrLimit; over > 0 {
					s.stderr = s.stderr[over:]
				}
				s.mu.Unlock()
			}
			if err != nil {
				// stderr используется только для диагностики
				return nil
			}
		}
	})
}

func (s *ffmpegStream) SubmitFrame(img *image.RGBA, _ float64) error {
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w%s", err, s.stderrSuffix())
	}
	return nil
}

func (s *ffmpegStream) closeStdin() {
	s.closeOnce.Do(func() { s.stdin.Close() })
}

// wait дожидается чтения pipe и завершения процесса, затем освобождает контекст
func (s *ffmpegStream) wait() error {
	s.waitOnce.Do(func() {
		readErr := s.g.Wait()
		err := s.cmd.Wait()
		s.cancel()
		if err != nil {
			s.waitErr = fmt.Errorf("ffmpeg wait error: %w%s", err, s.stderrSuffix())
		} else {
			s.waitErr = readErr
		}
	})
	return s.waitErr
}

func (s *ffmpegStream) Finish() <-chan capture.Chunk {
	out := make(chan capture.Chunk)
	go func() {
		defer close(out)
		s.closeStdin()
		if err := s.wait(); err != nil {
			s.send(out, capture.Chunk{Err: err})
			return
		}
		s.mu.Lock()
		chunks := s.chunks
		s.chunks = nil
		s.mu.Unlock()
		for _, c := range chunks {
			if !s.send(out, capture.Chunk{Data: c}) {
				return
			}
		}
	}()
	return out
}

// send отдает чанк читателю; false, если поток уже прерван
func (s *ffmpegStream) send(out chan<- capture.Chunk, c capture.Chunk) bool {
	select {
	case out <- c:
		return true
	case <-s.done:
		return false
	}
}

func (s *ffmpegStream) Abort() {
	s.abortOnce.Do(func() { close(s.done) })
	s.cancel()
	s.closeStdin()
	go s.wait()
}

func (s *ffmpegStream) stderrSuffix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := bytes.TrimSpace(s.stderr)
	if len(msg) == 0 {
		return ""
	}
	return ", output: " + string(msg)
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	// Проверяем, является ли изображение уже RGBA и имеет ли стандартный шаг (stride)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
