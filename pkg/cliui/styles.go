package cliui

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles for CLI output.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	KeyStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	IDStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	PreviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	CountStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
