package chart

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func loadFonts() {
	if f, err := truetype.Parse(goregular.TTF); err == nil {
		regularFont = f
	}
	if f, err := truetype.Parse(gobold.TTF); err == nil {
		boldFont = f
	}
}

// face returns a new face per call; faces cache glyphs and are not safe
// for concurrent use, the parsed fonts are.
func face(size float64, bold bool) font.Face {
	fontsOnce.Do(loadFonts)
	f := regularFont
	if bold && boldFont != nil {
		f = boldFont
	}
	if f == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, Hinting: font.HintingFull})
}
