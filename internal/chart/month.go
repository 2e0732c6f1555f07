package chart

import (
	"fmt"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

func (e *Engine) drawMonth(c *canvas, events []domain.Event, _ time.Time) {
	counts := MonthCounts(events)
	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}

	area := rect{X: 120, Y: 110, W: c.w - 180, H: c.h - 240}
	y := axis{lo: 0, hi: float64(peak) + 1, px0: area.bottom(), px1: area.Y}
	c.panel(area)
	yTicks := y.ticks(8)
	c.gridY(area, y, yTicks)
	c.frame(area)
	for _, v := range yTicks {
		c.text(formatTick(v), 16, false, c.theme.Text, area.X-10, y.at(v), 1, 0.5)
	}

	slot := area.W / float64(len(counts))
	barW := slot * 0.8
	fill := mustHex(ColorMeeting)
	for i, n := range counts {
		cx := area.X + slot*float64(i) + slot/2
		c.text(fmt.Sprint(i+1), 15, false, c.theme.Text, cx, area.bottom()+12, 0.5, 1)
		if n == 0 {
			continue
		}
		top := y.at(float64(n))
		c.box(cx-barW/2, top, barW, area.bottom()-top, fill, 1.5)
		c.text(fmt.Sprint(n), 18, true, c.theme.Title, cx, top-6, 0.5, 0)
	}

	c.text("День месяца", 22, false, c.theme.Text, area.X+area.W/2, area.bottom()+70, 0.5, 0.5)
	c.rotatedText("Количество событий", 22, c.theme.Text, area.X-80, area.Y+area.H/2)
}
