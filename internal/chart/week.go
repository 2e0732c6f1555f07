package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

var weekdayNames = [7]string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}

// ColorbarLabel captions the week heatmap scale.
const ColorbarLabel = "Занятость (кол-во событий)"

func (e *Engine) drawWeek(c *canvas, events []domain.Event, _ time.Time) {
	grid := WeekGrid(events)
	peak := 1
	for _, row := range grid {
		for _, n := range row {
			if n > peak {
				peak = n
			}
		}
	}

	area := rect{X: 120, Y: 110, W: c.w - 360, H: c.h - 250}
	cellW := area.W / 7
	cellH := area.H / WeekHours
	for r, row := range grid {
		for d, n := range row {
			x := area.X + float64(d)*cellW
			y := area.Y + float64(r)*cellH
			c.box(x, y, cellW, cellH, heatColor(float64(n)/float64(peak)), 0)
			if n > 0 {
				c.text(fmt.Sprint(n), 16, true, c.theme.Title, x+cellW/2, y+cellH/2, 0.5, 0.5)
			}
		}
	}
	for r := 0; r < WeekHours; r++ {
		label := fmt.Sprintf("%02d:00", WeekFirstHour+r)
		c.text(label, 15, false, c.theme.Text, area.X-10, area.Y+float64(r)*cellH+cellH/2, 1, 0.5)
	}
	for d, name := range weekdayNames {
		c.text(name, 17, false, c.theme.Text, area.X+float64(d)*cellW+cellW/2, area.bottom()+14, 0.5, 1)
	}

	c.colorbar(rect{X: area.right() + 60, Y: area.Y, W: 36, H: area.H}, peak)
}

func (c *canvas) colorbar(r rect, peak int) {
	const steps = 120
	stepH := r.H / steps
	for i := 0; i < steps; i++ {
		t := 1 - float64(i)/float64(steps-1)
		c.box(r.X, r.Y+float64(i)*stepH, r.W, math.Ceil(stepH), heatColor(t), 0)
	}
	c.dc.SetColor(c.theme.Edge)
	c.dc.SetLineWidth(1)
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Stroke()

	scale := axis{lo: 0, hi: float64(peak), px0: r.bottom(), px1: r.Y}
	for _, v := range scale.ticks(6) {
		c.text(formatTick(v), 15, false, c.theme.Text, r.right()+8, scale.at(v), 0, 0.5)
	}
	c.rotatedText(ColorbarLabel, 18, c.theme.Text, r.right()+70, r.Y+r.H/2)
}
