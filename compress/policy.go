package compress

import (
	"image/color"
)

// Policy fixes how much a GIF is reduced. The service always runs DefaultPolicy;
// the type exists so the decode/encode core never hardcodes the numbers itself.
type Policy struct {
	ScaleDivisor int           // both dimensions are divided by this, nearest-neighbour
	Palette      color.Palette // global colour table of the output
	LoopCount    int           // gif.GIF semantics: 0 loops forever
}

// DefaultPolicy halves both dimensions and maps every pixel to black or white.
func DefaultPolicy() Policy {
	return Policy{
		ScaleDivisor: 2,
		Palette: color.Palette{
			color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff},
			color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		},
		LoopCount: 0,
	}
}

func (p Policy) scaled(width, height int) (int, int) {
	div := p.ScaleDivisor
	if div < 1 {
		div = 1
	}
	return max(1, width/div), max(1, height/div)
}
