package intelligence

import (
	"fmt"
	"strings"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
	"github.com/lipohub/tg-planner-bot/internal/llm"
)

var planTypeHints = map[domain.PlanType]string{
	domain.PlanScheduleDay:      "расписание на день (диаграмма Ганта по часам)",
	domain.PlanScheduleWeek:     "расписание на неделю (тепловая карта)",
	domain.PlanScheduleMonth:    "расписание на месяц (столбцы по дням)",
	domain.PlanScheduleSemester: "семестр (диаграмма Ганта по неделям)",
	domain.PlanScheduleYear:     "год (линия прогресса)",
	domain.PlanGoal:             "пошаговый план достижения цели",
	domain.PlanLessonHelp:       "помощь с уроком или контрольной (физика, математика и т.д.)",
	domain.PlanMeetingHelp:      "помощь с деловой встречей или собеседованием",
	domain.PlanOther:            "всё остальное",
}

const planShapeBlock = `Обязательная структура JSON:

{
  "type": "<один из типов выше>",
  "title": "Краткое название",
  "events": [
    {"title": "Название события", "start": "YYYY-MM-DDTHH:MM:SS", "end": "YYYY-MM-DDTHH:MM:SS", "color": "#RRGGBB"}
  ],
  "advice": "Мотивирующий совет из 3-7 предложений",
  "materials": ["формулы, ссылки, шпаргалки"],
  "reminders": ["напоминания"],
  "geo": "ссылка на карту или null",
  "steps": ["шаги для goal_plan"],
  "deadline": "YYYY-MM-DD или null",
  "buttons": [{"text": "Текст кнопки", "callback": "action_id"}],
  "help_text": "Подсказка к кнопкам"
}`

const planExamplesBlock = `Примеры:

1. Пользователь: "завтра в 10 утра контрольная по физике"
{"type": "lesson_help", "title": "Подготовка к КР по физике",
 "events": [{"title": "Контрольная по физике", "start": "2026-02-27T10:00:00", "end": "2026-02-27T11:30:00", "color": "#FF6B6B"}],
 "advice": "Повтори законы Ньютона и реши пару задач из прошлых работ. Выспись!",
 "materials": ["F=ma", "Ek=mv²/2"],
 "buttons": [{"text": "Шпаргалки", "callback": "materials_physics"}]}

2. Пользователь: "встреча с Ивановым в 14:00 в офисе на Тверской"
{"type": "meeting_help", "title": "Деловая встреча с Ивановым",
 "events": [{"title": "Встреча с Ивановым", "start": "2026-02-27T14:00:00", "end": "2026-02-27T15:30:00", "color": "#4ECDC4"}],
 "advice": "Подготовь вопросы по контракту и приди на 10 минут раньше.",
 "reminders": ["Будильник за 30 минут"],
 "geo": "https://yandex.ru/maps/?text=Тверская",
 "buttons": [{"text": "Поставить будильник", "callback": "set_alarm"}]}

3. Пользователь: "хочу похудеть на 10 кг к лету"
{"type": "goal_plan", "title": "План похудения на 10 кг",
 "events": [{"title": "Неделя 1: дефицит 500 ккал", "start": "2026-03-02T08:00:00", "end": "2026-03-08T20:00:00"}],
 "advice": "Ты справишься! Начни с небольшого дефицита калорий и ежедневных прогулок.",
 "steps": ["Взвеситься и записать старт", "Считать калории", "Три тренировки в неделю"],
 "deadline": "2026-06-01"}`

var planSystemPrompt = buildPlanSystemPrompt()

func buildPlanSystemPrompt() string {
	var b strings.Builder
	b.WriteString("Ты — GrokPlan, персональный планировщик. Проанализируй текст пользователя ")
	b.WriteString("и верни ТОЛЬКО валидный JSON без пояснений и без markdown.\n\n")
	b.WriteString("Типы (выбери ровно один):\n")
	for _, t := range domain.AllPlanTypes() {
		fmt.Fprintf(&b, "- %q — %s\n", string(t), planTypeHints[t])
	}
	b.WriteString("\n")
	b.WriteString(planShapeBlock)
	b.WriteString("\n\n")
	b.WriteString(planExamplesBlock)
	b.WriteString("\n\nИспользуй строгие числа JSON и только перечисленные типы.")
	return b.String()
}

var weekdaysRU = [...]string{
	time.Sunday:    "воскресенье",
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
}

// BuildPlanMessages assembles the system instructions and the user turn.
// The user text is forwarded verbatim.
func BuildPlanMessages(userText string, userID int64) []llm.Message {
	return BuildPlanMessagesAt(userText, userID, time.Time{})
}

// BuildPlanMessagesAt is BuildPlanMessages with a reference date appended
// to the instructions so relative dates resolve. A zero now omits it.
func BuildPlanMessagesAt(userText string, userID int64, now time.Time) []llm.Message {
	system := planSystemPrompt
	if !now.IsZero() {
		system += fmt.Sprintf("\n\nСегодня: %s (%s).", now.Format("2006-01-02"), weekdaysRU[now.Weekday()])
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Пользователь %d (ID: %d):\n%s", userID, userID, userText)},
	}
}
