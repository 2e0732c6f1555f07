package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/lipohub/tg-planner-bot/internal/cli/formatter"
)

func planbotHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	return t
}

func validateNonBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("напиши хоть что-нибудь")
	}
	return nil
}

// huhPrompt asks for multi-line free text.
func huhPrompt(title, placeholder string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(title).
				Placeholder(placeholder).
				CharLimit(4000).
				Value(&value).
				Validate(validateNonBlank),
		),
	).WithTheme(planbotHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
