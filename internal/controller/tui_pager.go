package controller

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Lines taken by the pager header and footer.
const pagerChrome = 2

var (
	pagerTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)
	pagerInfoStyle = lipgloss.NewStyle().Faint(true)
)

// pagerModel shows long content in a scrollable viewport.
type pagerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

func newPagerModel(title, content string) pagerModel {
	return pagerModel{title: title, content: content}
}

// needsPagination reports whether content is taller than the known terminal.
func (pm pagerModel) needsPagination() bool {
	if pm.height <= 0 {
		return false
	}

	return lineCount(pm.content) > pm.height
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.width = msg.Width
		pm.height = msg.Height

		if !pm.ready {
			pm.viewport = viewport.New(msg.Width, max(msg.Height-pagerChrome, 1))
			pm.viewport.SetContent(pm.content)
			pm.ready = true
		} else {
			pm.viewport.Width = msg.Width
			pm.viewport.Height = max(msg.Height-pagerChrome, 1)
		}

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if !pm.ready {
		return "loading…"
	}

	header := pagerTitleStyle.Render(pm.title)
	footer := pagerInfoStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll  q quit", pm.viewport.ScrollPercent()*100))

	return lipgloss.JoinVertical(lipgloss.Left, header, pm.viewport.View(), footer)
}
