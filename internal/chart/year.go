package chart

import (
	"fmt"
	"math"
	"time"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const (
	colorDone   = "#06D6A0"
	colorRemain = "#FF6B6B"
)

func (e *Engine) drawYear(c *canvas, events []domain.Event, now time.Time) {
	progress := YearProgress(events, now)

	line := rect{X: 110, Y: 150, W: c.w/2 - 170, H: c.h - 290}
	c.text("Линейный прогресс", 24, true, c.theme.Title, line.X+line.W/2, 120, 0.5, 0.5)
	c.progressLine(line, progress)

	final := progress[len(progress)-1]
	cx, cy := c.w*0.75, line.Y+line.H/2
	c.text("Общий прогресс года", 24, true, c.theme.Title, cx, 120, 0.5, 0.5)
	c.donut(cx, cy, math.Min(line.H, c.w/2-120)/2, final)
}

func (c *canvas) progressLine(area rect, progress [12]float64) {
	x := axis{lo: 1, hi: 12, px0: area.X + 20, px1: area.right() - 20}
	y := axis{lo: 0, hi: 100, px0: area.bottom(), px1: area.Y}
	c.panel(area)
	c.gridY(area, y, y.ticks(5))
	c.gridX(area, x, x.ticks(12))
	c.frame(area)
	for _, v := range y.ticks(5) {
		c.text(formatTick(v), 16, false, c.theme.Text, area.X-10, y.at(v), 1, 0.5)
	}
	for m := 1; m <= 12; m++ {
		c.text(fmt.Sprint(m), 16, false, c.theme.Text, x.at(float64(m)), area.bottom()+12, 0.5, 1)
	}

	stroke := mustHex(ColorGoal)
	c.dc.MoveTo(x.at(1), y.at(0))
	for i, v := range progress {
		c.dc.LineTo(x.at(float64(i+1)), y.at(v))
	}
	c.dc.LineTo(x.at(12), y.at(0))
	c.dc.ClosePath()
	c.dc.SetColor(withAlpha(stroke, 0.25))
	c.dc.Fill()

	for i, v := range progress {
		px, py := x.at(float64(i+1)), y.at(v)
		if i == 0 {
			c.dc.MoveTo(px, py)
		} else {
			c.dc.LineTo(px, py)
		}
	}
	c.dc.SetColor(stroke)
	c.dc.SetLineWidth(4)
	c.dc.Stroke()
	for i, v := range progress {
		c.dc.DrawCircle(x.at(float64(i+1)), y.at(v), 7)
	}
	c.dc.Fill()

	c.text("Месяц", 20, false, c.theme.Text, area.X+area.W/2, area.bottom()+60, 0.5, 0.5)
	c.rotatedText("Выполнено %", 20, c.theme.Text, area.X-70, area.Y+area.H/2)
}

// donut draws percent done as a ring starting at twelve o'clock.
func (c *canvas) donut(cx, cy, radius, percent float64) {
	ring := radius * 0.45
	mid := radius - ring/2
	start := -math.Pi / 2
	split := start + 2*math.Pi*percent/100

	c.dc.SetLineWidth(ring)
	if percent > 0 {
		c.dc.NewSubPath()
		c.dc.DrawArc(cx, cy, mid, start, split)
		c.dc.SetColor(mustHex(colorDone))
		c.dc.Stroke()
	}
	if percent < 100 {
		c.dc.NewSubPath()
		c.dc.DrawArc(cx, cy, mid, split, start+2*math.Pi)
		c.dc.SetColor(mustHex(colorRemain))
		c.dc.Stroke()
	}
	c.dc.SetLineWidth(2)
	c.dc.SetColor(c.theme.Edge)
	c.dc.DrawCircle(cx, cy, radius)
	c.dc.Stroke()
	c.dc.DrawCircle(cx, cy, radius-ring)
	c.dc.Stroke()

	c.text(fmt.Sprintf("%d%%", int(math.Round(percent))), 56, true, c.theme.Title, cx, cy, 0.5, 0.5)

	legendY := cy + radius + 40
	c.box(cx-150, legendY-10, 24, 20, mustHex(colorDone), 0)
	c.text("Выполнено", 18, false, c.theme.Text, cx-116, legendY, 0, 0.5)
	c.box(cx+30, legendY-10, 24, 20, mustHex(colorRemain), 0)
	c.text("Осталось", 18, false, c.theme.Text, cx+64, legendY, 0, 0.5)
}
