package chart

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Watermark is stamped on every chart.
const Watermark = "GrokPlan v2.1"

// Theme holds the colors shared by all renderers.
type Theme struct {
	Background     color.Color
	Panel          color.Color
	Text           color.Color
	Title          color.Color
	Grid           color.Color
	Edge           color.Color
	Watermark      string
	WatermarkAlpha float64
}

// DarkTheme is the default theme.
func DarkTheme() Theme {
	return Theme{
		Background:     mustHex("#0f0f0f"),
		Panel:          mustHex("#1a1a1a"),
		Text:           mustHex("#e0e0e0"),
		Title:          mustHex("#ffffff"),
		Grid:           color.NRGBA{R: 255, G: 255, B: 255, A: 56},
		Edge:           color.White,
		Watermark:      Watermark,
		WatermarkAlpha: 0.18,
	}
}

func withAlpha(c color.Color, alpha float64) color.Color {
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	r, g, b := cc.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}
