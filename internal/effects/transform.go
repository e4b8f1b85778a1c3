package effects

import (
	"math"

	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/raster"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// rotate turns the content about the canvas center. Frame 0 is the
// unrotated content; pixels outside it stay transparent so the background
// policy applies.
func rotate(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	c0 := raster.Center(base, s.Size)
	c := float64(s.Size) / 2
	seq := frames(s, s.FrameCount, func(i int) raster.Canvas {
		if i == 0 {
			return c0.Clone()
		}
		rad := RotateAngle(i, s.FrameCount) * math.Pi / 180
		sin, cos := math.Sincos(rad)
		return transformed(c0, f64.Aff3{
			cos, -sin, c - cos*c + sin*c,
			sin, cos, c - sin*c - cos*c,
		})
	})
	return []raster.Sequence{seq}, nil
}

// grow scales the content about the canvas center.
func grow(base raster.Canvas, s Spec) ([]raster.Sequence, error) {
	c0 := raster.Center(base, s.Size)
	c := float64(s.Size) / 2
	seq := frames(s, s.FrameCount, func(i int) raster.Canvas {
		k := GrowScale(i, s.FrameCount, s.MinScale, s.Grow)
		if math.Abs(k-1) < 1e-9 {
			return c0.Clone()
		}
		return transformed(c0, f64.Aff3{
			k, 0, c - k*c,
			0, k, c - k*c,
		})
	})
	return []raster.Sequence{seq}, nil
}

// transformed resamples src through the source-to-destination matrix s2d
// with a Catmull-Rom kernel.
func transformed(src raster.Canvas, s2d f64.Aff3) raster.Canvas {
	c := src.Blank()
	draw.CatmullRom.Transform(c.Img, s2d, src.Img, src.Bounds(), draw.Src, nil)
	return c
}
