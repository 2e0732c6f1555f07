package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const eventTimeLayout = "02.01 15:04"

// RenderBox wraps content in a rounded box with an optional title.
func RenderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)
	if title != "" {
		return box.Render(StyleHeader.Render(title) + "\n\n" + content)
	}
	return box.Render(content)
}

// FormatPlan renders a plan record the way the chat reply reads: title,
// advice, materials, then events, reminders and suggested actions.
func FormatPlan(p domain.PlanRecord, src domain.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(p.Title), SourceBadge(src))
	b.WriteString(p.Advice)
	b.WriteString("\n")

	writeList(&b, "Дополнительные материалы", p.Materials, "—")

	if len(p.Events) > 0 {
		b.WriteString("\n" + Header("События") + "\n")
		for _, ev := range p.Events {
			when := Dim("без времени")
			if !ev.Synthetic {
				when = fmt.Sprintf("%s – %s", ev.Start.Format(eventTimeLayout), ev.End.Format("15:04"))
			}
			fmt.Fprintf(&b, "%s %s  %s\n", EventStyle(ev).Render("■"), ev.Title, Dim(when))
		}
	}

	if len(p.Steps) > 0 {
		b.WriteString("\n" + Header("Шаги") + "\n")
		for i, step := range p.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	if p.Deadline != nil {
		fmt.Fprintf(&b, "\nДедлайн: %s\n", StyleYellow.Render(*p.Deadline))
	}
	if p.Geo != nil {
		fmt.Fprintf(&b, "Где: %s\n", StyleBlue.Render(*p.Geo))
	}
	if len(p.Reminders) > 0 {
		writeList(&b, "Напоминания", p.Reminders, "")
	}
	if p.HelpText != "" {
		b.WriteString("\n" + Dim(p.HelpText) + "\n")
	}

	if len(p.Buttons) > 0 {
		labels := make([]string, 0, len(p.Buttons))
		for _, btn := range p.Buttons {
			labels = append(labels, fmt.Sprintf("[%s]", btn.Text))
		}
		b.WriteString("\n" + StylePurple.Render(strings.Join(labels, " ")) + "\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string, empty string) {
	if len(items) == 0 && empty == "" {
		return
	}
	b.WriteString("\n" + Header(title) + "\n")
	if len(items) == 0 {
		fmt.Fprintf(b, "• %s\n", empty)
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "• %s\n", it)
	}
}

// FormatChartSaved reports where a chart image was written.
func FormatChartSaved(res domain.RenderResult, path string) string {
	kind := string(res.GraphType)
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return fmt.Sprintf("%s %s\n", StyleGreen.Render(fmt.Sprintf("График %s готов:", kind)), path)
}
