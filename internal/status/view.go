package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors and styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Render renders the status data to a string
func Render(data *Data) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("📦 Version: ") + valueStyle.Render(data.Version))
	b.WriteString("\n\n")

	b.WriteString(renderConfig(data))
	b.WriteString("\n\n")

	b.WriteString(renderProviders(data))
	b.WriteString("\n\n")

	b.WriteString(renderService(data))
	return b.String()
}

func renderConfig(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("📝 Configuration:") + "\n")

	if data.ConfigPath == "" {
		b.WriteString("   " + keyStyle.Render("File: ") + subtleStyle.Render("none (defaults)") + "\n")
	} else {
		b.WriteString("   " + keyStyle.Render("File: ") + valueStyle.Render(data.ConfigPath) + "\n")
	}
	b.WriteString("   " + keyStyle.Render("Log level: ") + valueStyle.Render(data.LogLevel) + "\n")
	b.WriteString("   " + keyStyle.Render("Timeout: ") + valueStyle.Render(data.Timeout.String()) + "\n")

	baseURL := subtleStyle.Render("not set")
	if data.BaseURL != "" {
		baseURL = valueStyle.Render(data.BaseURL)
	}
	b.WriteString("   " + keyStyle.Render("Base URL: ") + baseURL)
	return b.String()
}

func renderProviders(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🔎 Providers:") + "\n")

	for _, p := range data.Providers {
		if p.Err != "" {
			b.WriteString(fmt.Sprintf("   %s %s %s\n",
				keyStyle.Render(p.Name),
				errorStyle.Render("✗"),
				subtleStyle.Render(p.Err)))
			continue
		}
		b.WriteString(fmt.Sprintf("   %s → %s %s\n",
			keyStyle.Render(p.Name),
			valueStyle.Render(p.URL),
			subtleStyle.Render(fmt.Sprintf("(min length %d)", p.MinLength))))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderService(data *Data) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("🌐 Hint service:") + "\n")

	s := data.Service
	switch {
	case s == nil:
		b.WriteString("   " + subtleStyle.Render("Not probed (no base URL)"))
	case s.Healthy:
		b.WriteString("   " + successStyle.Render("✓ Healthy") + " " +
			subtleStyle.Render(fmt.Sprintf("%s in %.1fms", s.HealthURL, float64(s.Latency.Microseconds())/1000)))
	default:
		b.WriteString("   " + errorStyle.Render("✗ Unreachable") + " " + subtleStyle.Render(s.Err))
	}
	return b.String()
}
