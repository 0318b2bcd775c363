package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Summary is what RenderSummary shows after a run.
type Summary struct {
	RunID       string
	Source      string
	Output      string
	Entries     int
	Skipped     int
	Mappings    int
	Fingerprint string
	Elapsed     time.Duration
}

// RenderSummary draws the run outcome in a rounded box.
func RenderSummary(s Summary) string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("protmapper run complete")
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Width(12)

	rows := [][2]string{
		{"run", s.RunID},
		{"source", s.Source},
		{"output", s.Output},
		{"entries", fmt.Sprint(s.Entries)},
		{"mappings", fmt.Sprint(s.Mappings)},
	}
	if s.Skipped > 0 {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
		rows = append(rows, [2]string{"skipped", warn.Render(fmt.Sprint(s.Skipped))})
	}
	rows = append(rows,
		[2]string{"fingerprint", s.Fingerprint},
		[2]string{"elapsed", s.Elapsed.Round(time.Millisecond).String()},
	)

	var lines []string
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		lines = append(lines, label.Render(row[0])+" "+row[1])
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, head, strings.Join(lines, "\n")))
}
