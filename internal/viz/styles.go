package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ccff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	StatusDone = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusFailed = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	barFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("#DAA520"))
	barEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("#333344"))
)

// Metric is one labeled row of a summary panel.
type Metric struct {
	Label string
	Value string
}

// Summary renders metrics as an aligned two-column panel under a title.
func Summary(title string, rows []Metric) string {
	w := 0
	for _, r := range rows {
		w = max(w, len(r.Label))
	}
	var b strings.Builder
	b.WriteString(Title.Render(title))
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-*s", w, r.Label)))
		b.WriteString("  ")
		b.WriteString(MetricValue.Render(r.Value))
	}
	return Panel.Render(b.String())
}

// ProgressBar renders a fixed-width bar for a fraction in [0, 1].
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	return barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled))
}

// AnimatedSpinner returns the spinner glyph for a tick count.
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}
