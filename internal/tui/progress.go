// internal/tui/progress.go
//
// Download progress for interactive runs. It uses bubbletea, which follows
// The Elm Architecture: the fetch goroutine sends progress messages, Update
// folds them into the model, and View renders a bar (known size) or a
// spinner with a byte counter (unknown size).

package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxBarWidth = 60

// ReportFunc receives download progress. total is -1 when unknown.
type ReportFunc func(done, total int64)

type progressMsg struct {
	done  int64
	total int64
}

type finishedMsg struct{}

type downloadModel struct {
	label    string
	bar      progress.Model
	spin     spinner.Model
	done     int64
	total    int64
	finished bool
}

func newDownloadModel(label string) downloadModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	return downloadModel{
		label: label,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spin:  spin,
		total: -1,
	}
}

func (m downloadModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.done, m.total = msg.done, msg.total
		return m, nil
	case finishedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m downloadModel) View() string {
	title := lipgloss.NewStyle().Bold(true).Render(m.label)
	if m.finished {
		return ""
	}
	if m.total > 0 {
		pct := float64(m.done) / float64(m.total)
		return fmt.Sprintf("%s\n%s  %s / %s\n", title, m.bar.ViewAs(pct), HumanBytes(m.done), HumanBytes(m.total))
	}
	return fmt.Sprintf("%s %s  %s\n", m.spin.View(), title, HumanBytes(m.done))
}

// RunDownload runs fn while rendering its progress to out. It returns once
// fn has returned, with fn's error taking precedence over UI errors.
func RunDownload(ctx context.Context, out io.Writer, label string, fn func(ctx context.Context, report ReportFunc) error) error {
	p := tea.NewProgram(newDownloadModel(label),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	errCh := make(chan error, 1)
	go func() {
		err := fn(ctx, func(done, total int64) {
			p.Send(progressMsg{done: done, total: total})
		})
		errCh <- err
		p.Send(finishedMsg{})
	}()
	_, runErr := p.Run()
	if err := <-errCh; err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("tui: %w", runErr)
	}
	return nil
}

// HumanBytes formats n with a binary unit suffix.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
