package cli

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/openssl-sg-insights/mandos/internal/analysis"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// cellsMsg carries the current cell completion counts.
type cellsMsg struct {
	done  int
	total int
}

// calcDoneMsg carries the finished matrix or the calculation error.
type calcDoneMsg struct {
	matrix *analysis.Matrix
	err    error
}

// calcModel is the bubbletea model for matrix calculation progress.
type calcModel struct {
	progress progress.Model
	theme    Theme
	cancel   context.CancelFunc
	done     int
	total    int
	finished bool
	quitting bool
	matrix   *analysis.Matrix
	err      error
}

func newCalcModel(cancel context.CancelFunc) calcModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return calcModel{
		progress: prog,
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

// Init returns the initial command.
func (m calcModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m calcModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, nil
		}

	case cellsMsg:
		m.done = msg.done
		m.total = msg.total
		return m, nil

	case calcDoneMsg:
		m.finished = true
		m.matrix = msg.matrix
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m calcModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m calcModel) renderContent() string {
	if m.finished {
		return m.finalView()
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render("[calculating]")
	if m.quitting {
		status = m.theme.statusStyle().Render("[cancelling]")
	}
	bar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d cells", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, hint)
}

func (m calcModel) finalView() string {
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Calculation failed: %s\n", m.err))
	}
	return m.theme.completedStyle().Render(
		fmt.Sprintf("✓ %d cells computed for %d compounds\n", m.total, m.matrix.Len()))
}

// runWithProgress runs the matrix calculation behind an interactive
// progress bar. The calc function receives a progress callback safe to
// call from worker goroutines.
func runWithProgress(ctx context.Context, calc func(ctx context.Context, progress func(done, total int)) (*analysis.Matrix, error)) (*analysis.Matrix, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newCalcModel(cancel))

	go func() {
		m, err := calc(ctx, func(done, total int) {
			p.Send(cellsMsg{done: done, total: total})
		})
		p.Send(calcDoneMsg{matrix: m, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(calcModel)
	if !ok {
		return nil, fmt.Errorf("unexpected progress model type")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.matrix, nil
}
