// Package preview plays a storyboard live in the terminal using bubbletea.
package preview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ivlev/sketchstory/internal/playback"
	"github.com/ivlev/sketchstory/internal/scene"
	"github.com/ivlev/sketchstory/internal/story"
)

var (
	colorCyan = lipgloss.Color("36")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")
	colorRed  = lipgloss.Color("167")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	statusStyle = lipgloss.NewStyle().Foreground(colorGray)
	helpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

type startMsg struct{}

// Model is the bubbletea model of the preview. It is also the frame sink of
// its playback driver.
type Model struct {
	Title string

	steps  []story.Step
	sched  playback.Scheduler
	driver *playback.Driver
	canvas *Canvas
	run    *playback.Run
	frame  scene.Frame
	board  string
	err    error
}

var _ playback.FrameSink = (*Model)(nil)

// New builds a model that plays steps on canvas, paced by sched
func New(steps []story.Step, sched playback.Scheduler, canvas *Canvas, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Default()
	}
	m := &Model{Title: "sketchstory", steps: steps, sched: sched, canvas: canvas}
	m.driver = playback.NewDriver(sched, m, logger)
	m.board = canvas.String()
	return m
}

// Present draws a frame onto the canvas
func (m *Model) Present(f scene.Frame) {
	f.Draw(m.canvas)
	m.frame = f
	m.board = m.canvas.String()
}

// Done reports whether the current run has played to the end or was stopped
func (m *Model) Done() bool {
	if m.run == nil {
		return false
	}
	select {
	case <-m.run.Done():
		return true
	default:
		return false
	}
}

// Err is the error of the last start or replay, if any
func (m *Model) Err() error { return m.err }

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.run, m.err = m.driver.Start(m.steps)
	case frameMsg:
		msg.fire(m.sched.Now())
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.driver.Stop()
			return m, tea.Quit
		case "r":
			run, err := m.driver.Replay()
			if err != nil {
				m.err = err
				break
			}
			m.run, m.err = run, nil
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(boardStyle.Render(m.board))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
	} else {
		b.WriteString(statusStyle.Render(m.status()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r replay  q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) status() string {
	if m.run == nil {
		return "starting..."
	}
	s := fmt.Sprintf("%5.0f / %d ms  frame %d", m.frame.ElapsedMs, m.run.TotalMs(), m.run.Frames())
	switch {
	case m.run.Cancelled():
		s += "  stopped"
	case m.Done():
		s += "  done"
	default:
		sch := m.run.Schedule()
		if i := sch.Current(m.frame.ElapsedMs); i >= 0 {
			e := sch.At(i)
			verb := "drawing"
			if e.Kind == story.KindText {
				verb = "writing"
			}
			s += fmt.Sprintf("  %s %s %3.0f%%", verb, e.ID, e.Progress(m.frame.ElapsedMs)*100)
		}
	}
	return s
}

// Options configures Run
type Options struct {
	Hz     int     // frame rate, 0 for 60
	Scale  float64 // terminal pixels per board unit
	Title  string
	Logger *log.Logger
}

// Run shows the live preview until the user quits or ctx is done
func Run(ctx context.Context, sb *story.Storyboard, opts Options) error {
	if err := story.Validate(sb.Steps); err != nil {
		return err
	}
	canvas, err := NewCanvas(sb.Width, sb.Height, opts.Scale)
	if err != nil {
		return err
	}
	defer canvas.Release()

	sched := NewScheduler(opts.Hz)
	m := New(sb.Steps, sched, canvas, opts.Logger)
	if opts.Title != "" {
		m.Title = opts.Title
	}

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	sched.Attach(p.Send)
	defer m.driver.Stop()

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
