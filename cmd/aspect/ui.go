package main

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7B61FF"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#73F59F"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5C542"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	ratingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5C542"))
)

func primaryText(s string) string { return headerStyle.Render(s) }
func successText(s string) string { return successStyle.Render(s) }
func warningText(s string) string { return warningStyle.Render(s) }
func errorText(s string) string   { return errorStyle.Render(s) }
func infoText(s string) string    { return dimStyle.Render(s) }
