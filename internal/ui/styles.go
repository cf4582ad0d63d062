package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary   = lipgloss.Color("205") // Pink
	ColorSecondary = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("160") // Red
	ColorWarning   = lipgloss.Color("214") // Orange
	ColorText      = lipgloss.Color("252") // White/Gray

	// Base styles
	StyleTitle   = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	// Frame styles for reporter output
	StyleFrameRule = lipgloss.NewStyle().Foreground(ColorSecondary)
	StyleTaskName  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)

	// Per-stage accents for the status table
	StyleStagePending   = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleStageBuilding  = lipgloss.NewStyle().Foreground(ColorPrimary)
	StyleStageCompleted = lipgloss.NewStyle().Foreground(ColorSuccess)
)
