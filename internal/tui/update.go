package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case CaptureDoneMsg:
		// A failed capture ends the program so the error reaches the terminal.
		m.done = true
		if msg.Err != nil {
			return m, tea.Quit
		}
		return m, nil

	case TickMsg:
		samples := m.recent.All()
		m.seen = m.recent.Seen()
		if len(samples) > 0 {
			latest := samples[0]
			m.latest = &latest
		}

		rows := make([]table.Row, len(samples))
		for i, s := range samples {
			rows[i] = table.Row{
				s.Timestamp.Format("15:04:05.000"),
				s.SrcIP,
				s.DstIP,
				strconv.FormatUint(s.Occupancy, 10),
			}
		}
		m.table.SetRows(rows)

		return m, tickCmd()
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
