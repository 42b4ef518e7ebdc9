package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)
)

func (m Model) View() string {
	title := titleStyle.Render(fmt.Sprintf("queuewatch - Monitoring: %s", m.interfaceName))

	current := "Waiting for queue occupancy packets..."
	if m.done {
		current = "Capture finished, no queue occupancy packets seen."
	}
	if m.latest != nil {
		current = fmt.Sprintf("Queue occupancy: %d\nFrom: %s -> %s\nAt: %s",
			m.latest.Occupancy, m.latest.SrcIP, m.latest.DstIP,
			m.latest.Timestamp.Format("15:04:05.000"))
	}
	currentBox := infoStyle.Render(current)
	seenBox := infoStyle.Render(fmt.Sprintf("Packets decoded:\n%d", m.seen))

	recentBox := infoStyle.Render("Recent samples\n" + m.table.View())

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, currentBox, seenBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, recentBox)

	if m.done {
		body += "\nCapture stopped."
	}
	return body + "\nPress q to quit."
}
