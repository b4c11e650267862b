package ui

import "github.com/charmbracelet/lipgloss"

var (
	launcherStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("196")).
			Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	aiLabelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	userTextStyle  = lipgloss.NewStyle().PaddingLeft(2)
)
