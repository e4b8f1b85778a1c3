package effects

import (
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
)

// party cycles the hue. Text pixels take the frame's hue outright; image
// pixels are tinted toward it by TintAlpha. Alpha never changes.
func party(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	c0 := raster.Center(base, s.Size)
	text := c0.IsText()
	t := uint32(s.TintAlpha)
	seq := frames(s, s.FrameCount, func(i int) raster.Canvas {
		hue := raster.HSV(PartyHue(i, s.FrameCount, s.Cycles, s.BaseHue), 1, 1)
		c := c0.Clone()
		pix := c.Img.Pix
		for p := 0; p < len(pix); p += 4 {
			if pix[p+3] == 0 {
				continue
			}
			if text {
				pix[p], pix[p+1], pix[p+2] = hue.R, hue.G, hue.B
				continue
			}
			pix[p] = mix(pix[p], hue.R, t)
			pix[p+1] = mix(pix[p+1], hue.G, t)
			pix[p+2] = mix(pix[p+2], hue.B, t)
		}
		return c
	})
	return []raster.Sequence{seq}, nil
}

// mix blends a toward b by t/255.
func mix(a, b uint8, t uint32) uint8 {
	return uint8((uint32(a)*(255-t) + uint32(b)*t + 127) / 255)
}
