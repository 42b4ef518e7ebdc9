package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"queuewatch/internal/models"
)

// TickMsg triggers a refresh from the sample ring.
type TickMsg time.Time

// CaptureDoneMsg reports that the capture feeding the view has ended.
type CaptureDoneMsg struct {
	Err error
}

type Model struct {
	recent        *Recent
	table         table.Model
	interfaceName string

	latest *models.Sample
	seen   uint64
	done   bool
}

func NewModel(recent *Recent, iface string) Model {
	columns := []table.Column{
		{Title: "Time", Width: 15},
		{Title: "Source", Width: 18},
		{Title: "Destination", Width: 18},
		{Title: "Occupancy", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return Model{
		recent:        recent,
		interfaceName: iface,
		table:         t,
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
