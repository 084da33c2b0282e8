package compress

import (
	"errors"
	"image"
	"image/gif"

	"golang.org/x/image/draw"
)

// renderFrames composites every frame of g onto the logical screen, so each returned
// buffer is the full picture a viewer shows at that point of the animation.
func renderFrames(g *gif.GIF) ([]*image.RGBA, error) {
	if len(g.Image) == 0 {
		return nil, errors.New("gif has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, frame := range g.Image {
			bounds = bounds.Union(frame.Bounds())
		}
	}
	if bounds.Empty() {
		return nil, errors.New("gif has empty dimensions")
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]*image.RGBA, 0, len(g.Image))
	for i, frame := range g.Image {
		if frame == nil {
			return nil, errors.New("gif frame is nil")
		}
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, cloneRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return frames, nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

// downsample scales src to width x height with nearest-neighbour sampling.
func downsample(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// quantize maps every pixel of src to its nearest palette entry, without dithering.
func quantize(src *image.RGBA, policy Policy) *image.Paletted {
	dst := image.NewPaletted(src.Bounds(), policy.Palette)
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
