package intelligence

import "github.com/lipohub/tg-planner-bot/internal/domain"

const (
	fallbackTitle    = "Не удалось обработать запрос"
	fallbackAdvice   = "Извини, Grok временно не смог обработать твой текст. Попробуй переформулировать или напиши проще!"
	fallbackHelpText = "Нажми кнопку для повторной попытки"
)

// FallbackPlan builds the record returned when the reasoning call or the
// reply parsing failed. The original text does not influence the result.
func FallbackPlan(originalText string) domain.PlanRecord {
	return domain.PlanRecord{
		Type:     domain.PlanOther,
		Title:    fallbackTitle,
		Advice:   fallbackAdvice,
		Events:   []domain.Event{},
		Buttons:  []domain.Button{domain.RetryButton()},
		HelpText: fallbackHelpText,
	}
}
