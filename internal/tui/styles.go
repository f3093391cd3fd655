package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	currentSpaceStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	otherSpaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	goodDot  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	badDot   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
	mutedDot = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Padding(0, 1)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Padding(0, 1)
)
