package main

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	okStyle = lipgloss.NewStyle().
		Foreground(colorGreen)

	errStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
