package chart

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

var emptyMessages = map[domain.GraphType]string{
	domain.GraphDay:      "На сегодня событий нет\nНапиши мне что-нибудь!",
	domain.GraphWeek:     "На этой неделе событий нет\nНапиши мне что-нибудь!",
	domain.GraphMonth:    "В этом месяце событий нет\nНапиши мне что-нибудь!",
	domain.GraphSemester: "Семестр пустой\nДобавь занятия или дедлайны!",
	domain.GraphYear:     "Пока нечего считать\nДобавь цель или шаги плана!",
}

// placeholder draws a centered caption on the themed background.
func (e *Engine) placeholder(title, message string) (img []byte) {
	defer func() {
		if r := recover(); r != nil {
			img = minimalPNG()
		}
	}()

	c := newCanvas(e.width, e.height, e.theme)
	if title != "" {
		c.title(title)
	}
	lines := strings.Split(message, "\n")
	lineHeight := 56.0
	y := c.h/2 - lineHeight*float64(len(lines)-1)/2
	for i, line := range lines {
		size, bold := 30.0, false
		if i == 0 {
			size, bold = 40, true
		}
		c.text(line, size, bold, c.theme.Title, c.w/2, y+float64(i)*lineHeight, 0.5, 0.5)
	}
	c.watermark()

	out, err := c.encode()
	if err != nil {
		return minimalPNG()
	}
	return out
}

var (
	minimalOnce sync.Once
	minimalImg  []byte
)

// minimalPNG is a tiny dark image used when even the placeholder fails.
func minimalPNG() []byte {
	minimalOnce.Do(func() {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0x1a, 0x1a, 0x1a, 0xff
		}
		var buf bytes.Buffer
		_ = png.Encode(&buf, img)
		minimalImg = buf.Bytes()
	})
	return minimalImg
}
