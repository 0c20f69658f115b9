package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FrameMsg reports render progress to a ProgressModel.
type FrameMsg struct {
	Done, Total int
}

// DoneMsg ends a ProgressModel; Err is the render outcome.
type DoneMsg struct {
	Err error
}

type tickMsg time.Time

// ProgressModel is a small Bubble Tea program that follows frame rendering.
// Feed it with Program.Send from the render callback.
type ProgressModel struct {
	title string
	done  int
	total int
	tick  int
	start time.Time
	err   error
	quit  bool
	ended bool
}

func NewProgressModel(title string, total int) ProgressModel {
	return ProgressModel{title: title, total: total, start: time.Now()}
}

// Interrupted reports whether the user quit before DoneMsg arrived.
func (m ProgressModel) Interrupted() bool { return m.quit && !m.ended }

func (m ProgressModel) Init() tea.Cmd { return tickCmd() }

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		m.done, m.total = msg.Done, msg.Total
	case DoneMsg:
		m.err = msg.Err
		m.quit, m.ended = true, true
		return m, tea.Quit
	case tickMsg:
		if m.quit {
			return m, nil
		}
		m.tick++
		return m, tickCmd()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.quit = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ProgressModel) View() string {
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}
	status := AnimatedSpinner(m.tick)
	if m.quit {
		status = StatusDone.Render("✓")
		if m.err != nil {
			status = StatusFailed.Render("✗")
		}
	}
	elapsed := time.Since(m.start).Truncate(100 * time.Millisecond)
	return fmt.Sprintf("%s %s %s %s\n", status, Title.Render(m.title),
		ProgressBar(frac, 40),
		Subtle.Render(fmt.Sprintf("%d/%d frames  %s", m.done, m.total, elapsed)))
}
