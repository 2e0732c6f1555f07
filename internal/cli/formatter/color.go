package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lipohub/tg-planner-bot/internal/chart"
	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// Terminal colors reuse the chart palette so a plan looks the same in the
// terminal and on the PNG.
var (
	ColorGreen  = lipgloss.Color(chart.ColorSport)
	ColorYellow = lipgloss.Color(chart.ColorGoal)
	ColorRed    = lipgloss.Color(chart.ColorLesson)
	ColorBlue   = lipgloss.Color(chart.ColorDefault)
	ColorPurple = lipgloss.Color(chart.ColorMeeting)
	ColorDim    = lipgloss.AdaptiveColor{Light: "#57606a", Dark: "#8b949e"}
	ColorFg     = lipgloss.AdaptiveColor{Light: "#1f2328", Dark: "#e6edf3"}
	ColorHeader = lipgloss.Color(chart.ColorGoal)
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// EventStyle colors an event the way the charts do.
func EventStyle(ev domain.Event) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(chart.ResolveColor(ev)))
}

// SourceBadge marks whether a plan came from the model or the fallback.
func SourceBadge(src domain.Source) string {
	if src == domain.SourceFallback {
		return StyleRed.Render("● FALLBACK")
	}
	return StyleGreen.Render("● GROK")
}

// Header renders a section title over a rule of the same width.
func Header(text string) string {
	title := strings.ToUpper(text)
	rule := strings.Repeat("━", lipgloss.Width(title))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(title), StyleDim.Render(rule))
}

func Dim(text string) string { return StyleDim.Render(text) }

func Bold(text string) string { return StyleBold.Render(text) }
