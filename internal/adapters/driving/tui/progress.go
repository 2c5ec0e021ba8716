// Package tui renders live run progress in the terminal with Bubbletea.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/infosynth/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/infosynth/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/infosynth/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/infosynth/internal/core/domain"
	"github.com/custodia-labs/infosynth/internal/core/ports/driving"
)

const (
	padding  = 2
	maxWidth = 80

	// recentErrors is how many row failures stay on screen.
	recentErrors = 3
)

// RunFunc executes a run, reporting each visited row to onProgress.
type RunFunc func(ctx context.Context, onProgress driving.ProgressFunc) (*domain.RunResult, error)

// ProgressModel shows a progress bar while the pipeline runs.
type ProgressModel struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	bar    progress.Model
	cancel context.CancelFunc

	total    int
	done     int
	current  string
	warnings int
	recent   []string

	stopping bool
	finished bool
	err      error
}

// NewProgressModel creates a model for a run of total rows.
// cancel is called when the user asks to stop.
func NewProgressModel(total int, cancel context.CancelFunc) ProgressModel {
	s := styles.DefaultStyles()
	theme := s.Theme()
	bar := progress.New(progress.WithGradient(string(theme.Primary), string(theme.Secondary)))
	bar.Width = maxWidth - padding*2

	return ProgressModel{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		bar:    bar,
		cancel: cancel,
		total:  total,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-padding*2, maxWidth)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.stopping {
			m.stopping = true
			if m.cancel != nil {
				m.cancel()
			}
		}

	case messages.RowDone:
		m.done = msg.Progress.Done
		if msg.Progress.Total > 0 {
			m.total = msg.Progress.Total
		}
		m.current = msg.Progress.Value
		if msg.Progress.Err != nil {
			m.warnings++
			m.recent = append(m.recent, msg.Progress.Err.Error())
			if len(m.recent) > recentErrors {
				m.recent = m.recent[len(m.recent)-recentErrors:]
			}
		}

	case messages.RunFinished:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder
	pad := strings.Repeat(" ", padding)

	b.WriteString("\n" + pad + m.styles.Title.Render("Enriching rows") + "\n\n")
	b.WriteString(pad + m.bar.ViewAs(m.fraction()) + "\n\n")

	status := fmt.Sprintf("%d/%d rows", m.done, m.total)
	if m.current != "" {
		status += " · " + m.current
	}
	b.WriteString(pad + m.styles.Muted.Render(status) + "\n")

	if m.warnings > 0 {
		b.WriteString(pad + m.styles.Warning.Render(fmt.Sprintf("%d row(s) failed", m.warnings)) + "\n")
		for _, e := range m.recent {
			b.WriteString(pad + "  " + m.styles.Error.Render(e) + "\n")
		}
	}

	switch {
	case m.finished && m.err != nil:
		b.WriteString("\n" + pad + m.styles.Error.Render("Run failed: "+m.err.Error()) + "\n")
	case m.finished:
		b.WriteString("\n" + pad + m.styles.Success.Render("Done") + "\n")
	case m.stopping:
		b.WriteString("\n" + pad + m.styles.Warning.Render("Stopping after the current row...") + "\n")
	default:
		h := m.keys.Cancel.Help()
		b.WriteString("\n" + pad + m.styles.Help.Render(h.Key+" "+h.Desc) + "\n")
	}

	return b.String()
}

// Done returns the number of rows visited so far.
func (m ProgressModel) Done() int {
	return m.done
}

// Stopping reports whether the user asked to stop.
func (m ProgressModel) Stopping() bool {
	return m.stopping
}

func (m ProgressModel) fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

// RunWithProgress executes run while rendering a progress bar to out.
// Stopping from the keyboard cancels run's context; the partial result is
// still returned.
func RunWithProgress(ctx context.Context, in io.Reader, out io.Writer, total int, run RunFunc) (*domain.RunResult, error) {
	if run == nil {
		return nil, ErrMissingRunFunc
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewProgressModel(total, cancel), tea.WithInput(in), tea.WithOutput(out))

	type outcome struct {
		result *domain.RunResult
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := run(ctx, func(p driving.Progress) {
			program.Send(messages.RowDone{Progress: p})
		})
		done <- outcome{result: result, err: err}
		program.Send(messages.RunFinished{Result: result, Err: err})
	}()

	if _, err := program.Run(); err != nil {
		// The display failed; stop the run and keep whatever it produced.
		cancel()
		o := <-done
		if o.err != nil {
			return o.result, o.err
		}
		return o.result, nil
	}

	o := <-done
	return o.result, o.err
}
