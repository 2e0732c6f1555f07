package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const historyTimeLayout = "02.01.2006 15:04"

// FormatHistory lists stored requests, most recent first.
func FormatHistory(rows []domain.StoredEvent) string {
	if len(rows) == 0 {
		return Dim("Нет недавних событий. Напиши новое расписание!") + "\n"
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		when := "—"
		if r.StartTime != nil {
			when = r.StartTime.Format(historyTimeLayout)
		}
		table = append(table, []string{
			fmt.Sprintf("%d", r.ID),
			r.CreatedAt.Local().Format(historyTimeLayout),
			string(r.EventType),
			truncate(domain.CoalesceStr(r.Title, r.RawText), 40),
			when,
		})
	}
	return RenderTable([]string{"ID", "Создано", "Тип", "Заголовок", "Начало"}, table)
}

// FormatGraphs lists saved chart files.
func FormatGraphs(rows []domain.GraphRecord) string {
	if len(rows) == 0 {
		return Dim("Графиков пока нет.") + "\n"
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			r.CreatedAt.Local().Format(historyTimeLayout),
			string(r.GraphType),
			truncate(r.Title, 40),
			Dim(r.FilePath),
		})
	}
	return RenderTable([]string{"Создано", "График", "Заголовок", "Файл"}, table)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

// Elapsed renders a duration for status lines, e.g. "1.2s".
func Elapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
