// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"flightframe/internal/align"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// ScreenType defines which screen is currently active.
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// ResultListModel is the Bubble Tea model for browsing the detection
// results of a completed scan.
type ResultListModel struct {
	results       []align.Result
	fileName      string
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	activeScreen  ScreenType
}

// Init initializes the Bubble Tea model. Results are supplied up front, so
// there is nothing asynchronous to start.
func (m ResultListModel) Init() tea.Cmd {
	return nil
}

// Update handles input and updates the model.
func (m ResultListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
			m.viewport.SetContent(m.renderResults())
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case tea.KeyMsg:
		// Keys that work everywhere.
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		if m.activeScreen == ListScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.viewport.SetContent(m.renderResults())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.results)-1 {
					m.selectedIndex++
					m.viewport.SetContent(m.renderResults())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.results) > 0 {
					m.activeScreen = DetailScreen
					m.viewport.SetContent(m.renderResultDetail())
				}
			}
		} else if m.activeScreen == DetailScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
				m.activeScreen = ListScreen
				m.viewport.SetContent(m.renderResults())

			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.viewport.SetContent(m.renderResultDetail())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.results)-1 {
					m.selectedIndex++
					m.viewport.SetContent(m.renderResultDetail())
				}
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m ResultListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var title, help string

	if m.activeScreen == ListScreen {
		title = titleStyle.Render(fmt.Sprintf("Sync Detection Results — %s", m.fileName))
		help = infoStyle.Render("↑/↓: Navigate • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Frame Details")
		help = infoStyle.Render("↑/↓: Prev/Next Frame • Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderResults formats the detection result list.
func (m ResultListModel) renderResults() string {
	var sb strings.Builder

	if len(m.results) == 0 {
		return "No synchronised frames found."
	}

	for i, res := range m.results {
		info := fmt.Sprintf("[%d] frame at byte %d\n", i, res.Offset)
		info += fmt.Sprintf("    %d words per subframe, pattern %s\n", res.WPS, res.Pattern)

		if i == m.selectedIndex {
			info = highlightStyle.Render(info)
		}

		sb.WriteString(info)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderResultDetail formats the single-frame detail screen.
func (m ResultListModel) renderResultDetail() string {
	var sb strings.Builder
	res := m.results[m.selectedIndex]

	frameLen := int64(res.WPS * 8)
	sb.WriteString(fmt.Sprintf("Frame %d of %d\n\n", m.selectedIndex+1, len(m.results)))
	sb.WriteString(fmt.Sprintf("  Byte offset:        %d\n", res.Offset))
	sb.WriteString(fmt.Sprintf("  Frame length:       %d bytes\n", frameLen))
	sb.WriteString(fmt.Sprintf("  Words per subframe: %d\n", res.WPS))
	sb.WriteString(fmt.Sprintf("  Bytes per second:   %d\n", res.WPS*2))
	sb.WriteString(fmt.Sprintf("  Pattern:            %s\n", res.Pattern))

	if m.selectedIndex > 0 {
		prev := m.results[m.selectedIndex-1]
		gap := res.Offset - (prev.Offset + int64(prev.WPS*8))
		if gap > 0 {
			sb.WriteString(fmt.Sprintf("\n  Gap after previous frame: %d bytes (sync lost)\n", gap))
		} else {
			sb.WriteString("\n  Contiguous with previous frame\n")
		}
	}

	return sb.String()
}

// NewResultListModel creates a model over a completed scan's results.
func NewResultListModel(fileName string, results []align.Result) ResultListModel {
	return ResultListModel{
		results:      results,
		fileName:     fileName,
		activeScreen: ListScreen,
	}
}

// StartResultsUI launches the Bubble Tea TUI for browsing results.
func StartResultsUI(fileName string, results []align.Result) error {
	p := tea.NewProgram(
		NewResultListModel(fileName, results),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
