package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true).
			Padding(0, 2).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e5e7eb")).
			Background(lipgloss.Color("#1f2937")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d399"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4b5563"))
)
