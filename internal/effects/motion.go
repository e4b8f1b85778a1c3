package effects

import (
	"image"
	"math"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
	"golang.org/x/image/draw"
)

// scroll pans the text through one viewport. Long texts are cut into
// several sequences of at most MaxFrames frames.
func scroll(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	b := base.Bounds()
	n := ScrollFrames(s.Size, b.Dx(), s.StepPx)
	y := (s.Size - b.Dy()) / 2
	seq := frames(s, n, func(i int) raster.Canvas {
		c := raster.NewCanvas(s.Size, s.Size, base.Background)
		raster.Paste(c.Img, base.Img, image.Pt(ScrollX(i, s.Size, b.Dx(), n), y))
		return c
	})
	return Segment(seq, s.MaxFrames), nil
}

// marquee pans the text across Tiles viewports laid side by side. Tile k
// shows columns [k·Size, (k+1)·Size) of the shared animation.
func marquee(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	b := base.Bounds()
	wide := s.Tiles * s.Size
	y := (s.Size - b.Dy()) / 2
	out := make([]raster.Sequence, s.Tiles)
	for k := range s.Tiles {
		out[k] = frames(s, s.FrameCount, func(i int) raster.Canvas {
			c := raster.NewCanvas(s.Size, s.Size, base.Background)
			x := ScrollX(i, wide, b.Dx(), s.FrameCount) - k*s.Size
			raster.Paste(c.Img, base.Img, image.Pt(x, y))
			return c
		})
	}
	return out, nil
}

// shake moves the content sideways along a sine.
func shake(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	c0 := raster.Center(base, s.Size)
	seq := frames(s, s.FrameCount, func(i int) raster.Canvas {
		c := c0.Blank()
		raster.Paste(c.Img, c0.Img, image.Pt(ShakeOffset(i, s.Amplitude, s.Period), 0))
		return c
	})
	return []raster.Sequence{seq}, nil
}

// wave offsets each glyph (text) or each pixel column (image) vertically
// along a traveling sine.
func wave(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	c0 := raster.Center(base, s.Size)
	amp := float64(s.Amplitude)

	var frame func(i int) raster.Canvas
	if c0.IsText() {
		frame = func(i int) raster.Canvas {
			c := c0.Blank()
			raster.DrawGlyphs(c.Img, c0.Glyphs, func(k int) image.Point {
				dy := WaveOffset(i, s.Period, amp, float64(k)*s.GlyphPhase)
				return image.Pt(0, int(math.Round(dy)))
			})
			return c
		}
	} else {
		frame = func(i int) raster.Canvas {
			c := c0.Blank()
			for x := 0; x < s.Size; x++ {
				phase := 2 * math.Pi * float64(x) / float64(s.Wavelength)
				dy := int(math.Round(WaveOffset(i, s.Period, amp, phase)))
				draw.Draw(c.Img, image.Rect(x, dy, x+1, s.Size+dy), c0.Img, image.Pt(x, 0), draw.Src)
			}
			return c
		}
	}
	return []raster.Sequence{frames(s, s.FrameCount, frame)}, nil
}
