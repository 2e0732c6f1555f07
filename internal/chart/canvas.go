package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"
)

type rect struct {
	X, Y, W, H float64
}

func (r rect) right() float64  { return r.X + r.W }
func (r rect) bottom() float64 { return r.Y + r.H }

// axis maps data values in [lo, hi] onto pixels in [px0, px1].
type axis struct {
	lo, hi   float64
	px0, px1 float64
}

func (a axis) at(v float64) float64 {
	if a.hi == a.lo {
		return a.px0
	}
	return a.px0 + (v-a.lo)/(a.hi-a.lo)*(a.px1-a.px0)
}

// ticks returns values from lo to hi spaced by a readable step, aiming
// for at most max ticks.
func (a axis) ticks(max int) []float64 {
	step := niceStep((a.hi - a.lo) / float64(max))
	var out []float64
	for v := math.Ceil(a.lo/step) * step; v <= a.hi+1e-9; v += step {
		out = append(out, v)
	}
	return out
}

func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			return math.Max(m*mag, 1)
		}
	}
	return 10 * mag
}

// canvas wraps a gg context with the theme's drawing conventions.
type canvas struct {
	dc    *gg.Context
	theme Theme
	w, h  float64
}

func newCanvas(width, height int, theme Theme) *canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(theme.Background)
	dc.Clear()
	return &canvas{dc: dc, theme: theme, w: float64(width), h: float64(height)}
}

func (c *canvas) text(s string, size float64, bold bool, col color.Color, x, y, ax, ay float64) {
	c.dc.SetFontFace(face(size, bold))
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, x, y, ax, ay)
}

// rotatedText draws s turned 90° counter-clockwise, centered on (x, y).
func (c *canvas) rotatedText(s string, size float64, col color.Color, x, y float64) {
	c.dc.Push()
	c.dc.RotateAbout(gg.Radians(-90), x, y)
	c.text(s, size, false, col, x, y, 0.5, 0.5)
	c.dc.Pop()
}

func (c *canvas) title(s string) {
	c.text(truncateRunes(s, 70), 34, true, c.theme.Title, c.w/2, 52, 0.5, 0.5)
}

func (c *canvas) panel(r rect) {
	c.dc.SetColor(c.theme.Panel)
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Fill()
}

// frame draws the left and bottom spines of a plot area.
func (c *canvas) frame(r rect) {
	c.dc.SetColor(c.theme.Edge)
	c.dc.SetLineWidth(1.5)
	c.dc.DrawLine(r.X, r.Y, r.X, r.bottom())
	c.dc.DrawLine(r.X, r.bottom(), r.right(), r.bottom())
	c.dc.Stroke()
}

func (c *canvas) gridX(r rect, x axis, values []float64) {
	c.dc.SetColor(c.theme.Grid)
	c.dc.SetLineWidth(1)
	c.dc.SetDash(6, 4)
	for _, v := range values {
		px := x.at(v)
		c.dc.DrawLine(px, r.Y, px, r.bottom())
	}
	c.dc.Stroke()
	c.dc.SetDash()
}

func (c *canvas) gridY(r rect, y axis, values []float64) {
	c.dc.SetColor(c.theme.Grid)
	c.dc.SetLineWidth(1)
	c.dc.SetDash(6, 4)
	for _, v := range values {
		py := y.at(v)
		c.dc.DrawLine(r.X, py, r.right(), py)
	}
	c.dc.Stroke()
	c.dc.SetDash()
}

// box fills a rectangle and outlines it with the edge color.
func (c *canvas) box(x, y, w, h float64, fill color.Color, edgeWidth float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.SetColor(fill)
	c.dc.Fill()
	if edgeWidth > 0 {
		c.dc.DrawRectangle(x, y, w, h)
		c.dc.SetColor(c.theme.Edge)
		c.dc.SetLineWidth(edgeWidth)
		c.dc.Stroke()
	}
}

func (c *canvas) legend(x, y float64) {
	const row = 30.0
	width := 170.0
	height := row*float64(len(legendOrder)) + 16
	c.dc.DrawRectangle(x-width, y, width, height)
	c.dc.SetColor(c.theme.Panel)
	c.dc.FillPreserve()
	c.dc.SetColor(c.theme.Edge)
	c.dc.SetLineWidth(1)
	c.dc.Stroke()
	for i, item := range legendOrder {
		cy := y + 8 + row*float64(i) + row/2
		c.box(x-width+12, cy-9, 28, 18, mustHex(categoryColors[item.cat]), 0)
		c.text(item.label, 17, false, c.theme.Text, x-width+52, cy, 0, 0.5)
	}
}

func (c *canvas) watermark() {
	if c.theme.Watermark == "" {
		return
	}
	c.text(c.theme.Watermark, 22, true, withAlpha(color.White, c.theme.WatermarkAlpha), c.w-24, c.h-18, 1, 0)
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
