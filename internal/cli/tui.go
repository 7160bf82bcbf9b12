package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wyeh/sketchpipe/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorBright)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
)

// formatDescriptions gives each output format a one-line hint in the picker.
var formatDescriptions = map[render.Format]string{
	render.FormatMermaid: "mermaid flowchart (markdown-friendly)",
	render.FormatDOT:     "Graphviz DOT source",
	render.FormatDrawio:  "draw.io / diagrams.net XML",
	render.FormatSVG:     "standalone SVG image",
}

// =============================================================================
// FormatListModel - Interactive output format selection
// =============================================================================

// FormatListModel is the bubbletea model for interactive format selection.
type FormatListModel struct {
	Formats  []render.Format
	Cursor   int
	Selected *render.Format
}

// NewFormatListModel creates a format list model over all supported formats.
func NewFormatListModel() FormatListModel {
	return FormatListModel{Formats: render.Formats()}
}

func (m FormatListModel) Init() tea.Cmd {
	return nil
}

func (m FormatListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Formats)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = &m.Formats[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m FormatListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Output Format"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, f := range m.Formats {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%-8s  %s", cursor, f, listDimStyle.Render(formatDescriptions[f]))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// pickFormat runs the interactive format picker. It returns false if the
// user quit without selecting.
func pickFormat() (render.Format, bool, error) {
	p := tea.NewProgram(NewFormatListModel(), tea.WithOutput(os.Stderr))
	result, err := p.Run()
	if err != nil {
		return "", false, err
	}
	m, ok := result.(FormatListModel)
	if !ok || m.Selected == nil {
		return "", false, nil
	}
	return *m.Selected, true, nil
}
