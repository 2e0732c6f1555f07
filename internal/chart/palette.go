package chart

import (
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

// Category groups events by title keywords for coloring.
type Category string

const (
	CategoryLesson  Category = "lesson"
	CategoryMeeting Category = "meeting"
	CategoryGoal    Category = "goal"
	CategoryDefault Category = "default"
)

const (
	ColorLesson  = "#FF6B6B"
	ColorMeeting = "#4ECDC4"
	ColorGoal    = "#FFD166"
	ColorSport   = "#06D6A0"
	ColorDefault = "#45B7D1"
)

var categoryColors = map[Category]string{
	CategoryLesson:  ColorLesson,
	CategoryMeeting: ColorMeeting,
	CategoryGoal:    ColorGoal,
	CategoryDefault: ColorDefault,
}

// legendOrder is the order categories appear in chart legends.
var legendOrder = []struct {
	cat   Category
	label string
}{
	{CategoryLesson, "Учёба"},
	{CategoryMeeting, "Встречи"},
	{CategoryGoal, "Цели"},
	{CategoryDefault, "Другое"},
}

// Keyword stems matched against title words. Stems shorter than three
// runes must match a whole word so "кр" does not hit "открыть".
var categoryStems = []struct {
	cat   Category
	stems []string
}{
	{CategoryLesson, []string{"физик", "математик", "урок", "кр", "контрольн", "экзамен"}},
	{CategoryMeeting, []string{"встреч", "митинг", "бизнес", "собеседован", "интервью"}},
	{CategoryGoal, []string{"цель", "цели", "план", "похуд", "выучить"}},
}

// Categorize returns the first category whose keyword appears in title.
func Categorize(title string) Category {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, group := range categoryStems {
		for _, stem := range group.stems {
			for _, w := range words {
				if matchesStem(w, stem) {
					return group.cat
				}
			}
		}
	}
	return CategoryDefault
}

func matchesStem(word, stem string) bool {
	if len([]rune(stem)) < 3 {
		return word == stem
	}
	return strings.HasPrefix(word, stem)
}

// ResolveColor picks the fill for an event: an explicit valid hex color
// wins, then the keyword category, then the default.
func ResolveColor(ev domain.Event) string {
	if c := strings.TrimSpace(ev.Color); c != "" {
		if _, err := colorful.Hex(c); err == nil {
			return c
		}
	}
	return categoryColors[Categorize(ev.Title)]
}

// mustHex parses a palette constant.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{R: 0.27, G: 0.72, B: 0.82}
	}
	return c
}

// heatStops approximate a plasma colormap.
var heatStops = []colorful.Color{
	mustHex("#0d0887"),
	mustHex("#7e03a8"),
	mustHex("#cc4778"),
	mustHex("#f89540"),
	mustHex("#f0f921"),
}

// heatColor maps t in [0,1] onto the heatmap gradient.
func heatColor(t float64) colorful.Color {
	switch {
	case t <= 0:
		return heatStops[0]
	case t >= 1:
		return heatStops[len(heatStops)-1]
	}
	pos := t * float64(len(heatStops)-1)
	i := int(pos)
	return heatStops[i].BlendLab(heatStops[i+1], pos-float64(i)).Clamped()
}
